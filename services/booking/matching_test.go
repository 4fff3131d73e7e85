package booking

import (
	"context"
	"testing"

	"homeserve/models"
	"homeserve/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingIDs(bookings []models.Booking) []string {
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestListBookingsForProvider_MatchesProfession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plumbing := f.create(t, "h1", "Plumbing")
	cleaning := f.create(t, "h2", "Cleaning")

	got, err := f.matching.ListBookingsForProvider(ctx, "plumber")
	require.NoError(t, err)
	assert.Equal(t, []string{plumbing.ID}, bookingIDs(got))

	got, err = f.matching.ListBookingsForProvider(ctx, "handyman")
	require.NoError(t, err)
	assert.Equal(t, []string{plumbing.ID}, bookingIDs(got))

	got, err = f.matching.ListBookingsForProvider(ctx, "cleaner")
	require.NoError(t, err)
	assert.Equal(t, []string{cleaning.ID}, bookingIDs(got))
}

func TestListBookingsForProvider_ClaimedStayVisibleToOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)

	got, err := f.matching.ListBookingsForProvider(ctx, "plumber")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, bookingIDs(got))

	got, err = f.matching.ListBookingsForProvider(ctx, "handyman")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Completed bookings stay on the owner's list through bookingIds.
	_, err = f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionComplete})
	require.NoError(t, err)
	got, err = f.matching.ListBookingsForProvider(ctx, "plumber")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, bookingIDs(got))
}

func TestListBookingsForProvider_SkipsCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)

	got, err := f.matching.ListBookingsForProvider(ctx, "plumber")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListBookingsForProvider_UnknownProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.matching.ListBookingsForProvider(context.Background(), "ghost")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestMergeBookingsDedups(t *testing.T) {
	a := []models.Booking{{ID: "1"}, {ID: "2"}}
	b := []models.Booking{{ID: "2"}, {ID: "3"}}
	assert.ElementsMatch(t, []string{"1", "2", "3"}, bookingIDs(mergeBookings(a, b)))
}
