package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"homeserve/database/repository"
	bookingRepo "homeserve/database/repository/booking"
	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/ledger"
	"homeserve/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repos    repository.Repositories
	svc      *DefaultBookingService
	matching *DefaultMatchingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()

	_, err := repos.Catalog.SeedDefaults(ctx, []models.Service{
		{Name: "Cleaning", Price: 50},
		{Name: "Plumbing", Price: 100},
	})
	require.NoError(t, err)

	for id, professions := range map[string][]string{
		"plumber":  {"Plumbing"},
		"cleaner":  {" cleaning "},
		"handyman": {"PLUMBING", "Painting"},
	} {
		require.NoError(t, repos.Providers.Create(ctx, &models.Provider{ID: id, Professions: professions}))
	}

	fixed := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc := &DefaultBookingService{
		Bookings:   repos.Bookings,
		Providers:  repos.Providers,
		Homeowners: repos.Homeowners,
		Catalog:    &catalog.RepoCatalog{Repo: repos.Catalog},
		Ledger: &ledger.DefaultEarningsLedger{
			Bookings:  repos.Bookings,
			Providers: repos.Providers,
			Share:     0.90,
		},
		Now: func() time.Time { return fixed },
	}
	return &fixture{
		repos:    repos,
		svc:      svc,
		matching: &DefaultMatchingService{Providers: repos.Providers, Bookings: repos.Bookings},
	}
}

func (f *fixture) create(t *testing.T, homeownerID, serviceType string) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), models.BookingInput{
		HomeownerID: homeownerID,
		ServiceType: serviceType,
		Date:        "2024-01-01",
		Time:        "10:00",
		Address:     "123 Main St",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) provider(t *testing.T, id string) *models.Provider {
	t.Helper()
	p, err := f.repos.Providers.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestCreateBooking_ResolvesCatalogPrice(t *testing.T) {
	f := newFixture(t)

	b := f.create(t, "h1", "Cleaning")
	assert.Equal(t, 50.0, b.ServiceAmount)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.False(t, b.IsBooked)
	assert.False(t, b.IsCancelled)
	assert.Empty(t, b.ProviderID)
	assert.NotEmpty(t, b.ID)

	h, err := f.repos.Homeowners.GetByID(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, h.BookingIDs)
}

func TestCreateBooking_Amounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := models.BookingInput{HomeownerID: "h1", Date: "2024-01-01", Time: "10:00", Address: "1 Elm St"}

	explicit := base
	explicit.ServiceType = "Cleaning"
	explicit.Amount = 120
	b, err := f.svc.CreateBooking(ctx, explicit)
	require.NoError(t, err)
	assert.Equal(t, 120.0, b.ServiceAmount)

	unknown := base
	unknown.ServiceType = "Roofing"
	b, err = f.svc.CreateBooking(ctx, unknown)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.ServiceAmount)
}

func TestCreateBooking_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), models.BookingInput{HomeownerID: "h1", ServiceType: "Cleaning"})
	require.ErrorIs(t, err, utils.ErrValidation)
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "address")
}

type stubConfirmer map[string]bool

func (s stubConfirmer) IsPaid(_ context.Context, ref string) (bool, error) {
	return s[ref], nil
}

func TestCreateBooking_RequiresConfirmedPayment(t *testing.T) {
	f := newFixture(t)
	f.svc.RequirePayment = true
	f.svc.Payments = stubConfirmer{"pi_paid": true, "pi_open": false}
	ctx := context.Background()
	in := models.BookingInput{HomeownerID: "h1", ServiceType: "Cleaning", Date: "2024-01-01", Time: "10:00", Address: "1 Elm St"}

	_, err := f.svc.CreateBooking(ctx, in)
	assert.ErrorIs(t, err, utils.ErrValidation)

	in.PaymentRef = "pi_open"
	_, err = f.svc.CreateBooking(ctx, in)
	assert.ErrorIs(t, err, utils.ErrValidation)

	in.PaymentRef = "pi_paid"
	b, err := f.svc.CreateBooking(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "pi_paid", b.PaymentRef)
}

func TestAcceptBooking_ExactlyOneConcurrentWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")

	const n = 8
	for i := 0; i < n; i++ {
		require.NoError(t, f.repos.Providers.Create(ctx, &models.Provider{ID: fmt.Sprintf("racer-%d", i), Professions: []string{"plumbing"}}))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(providerID string) {
			defer wg.Done()
			_, err := f.svc.AcceptBooking(ctx, b.ID, providerID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, providerID)
				return
			}
			if assert.ErrorIs(t, err, utils.ErrConflict) {
				conflicts++
			}
		}(fmt.Sprintf("racer-%d", i))
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, n-1, conflicts)

	stored, err := f.repos.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], stored.ProviderID)
	assert.True(t, stored.IsBooked)
	assert.Equal(t, models.StatusAccepted, stored.Status)
	assert.Equal(t, 1, f.provider(t, winners[0]).TotalAppointments)
}

func TestAcceptBooking_SameProviderIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")

	first, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)
	require.NotNil(t, first.AcceptedAt)

	second, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)
	assert.Equal(t, first.AcceptedAt, second.AcceptedAt)

	p := f.provider(t, "plumber")
	assert.Equal(t, 1, p.TotalAppointments)
	assert.Equal(t, 1, p.TotalClients)

	_, err = f.svc.AcceptBooking(ctx, b.ID, "handyman")
	assert.ErrorIs(t, err, utils.ErrConflict)
	assert.Contains(t, err.Error(), "already accepted by another provider")
}

func TestAcceptBooking_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")

	_, err := f.svc.AcceptBooking(ctx, "missing", "plumber")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.svc.AcceptBooking(ctx, b.ID, "ghost")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestAcceptBooking_DedupsClients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.create(t, "h1", "Plumbing")
	b2 := f.create(t, "h1", "Plumbing")

	_, err := f.svc.AcceptBooking(ctx, b1.ID, "plumber")
	require.NoError(t, err)
	_, err = f.svc.AcceptBooking(ctx, b2.ID, "plumber")
	require.NoError(t, err)

	p := f.provider(t, "plumber")
	assert.Equal(t, 2, p.TotalAppointments)
	assert.Equal(t, 1, p.TotalClients)
	assert.ElementsMatch(t, []string{b1.ID, b2.ID}, p.BookingIDs)
}

func TestCompleteBooking_AppliesEarningOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)

	done, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionComplete})
	require.NoError(t, err)
	require.NotNil(t, done.ProviderEarning)
	assert.Equal(t, 90.00, *done.ProviderEarning)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.False(t, done.IsBooked)
	assert.Equal(t, "plumber", done.ProviderID)

	again, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionComplete})
	require.NoError(t, err)
	assert.Equal(t, 90.00, *again.ProviderEarning)
	assert.Equal(t, 90.00, f.provider(t, "plumber").Earnings)
}

func TestCompleteBooking_RequiresClaim(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, "h1", "Plumbing")

	_, err := f.svc.UpdateStatus(context.Background(), b.ID, StatusRequest{Transition: TransitionComplete})
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestConfirmThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Cleaning")

	_, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionConfirm})
	assert.ErrorIs(t, err, utils.ErrConflict, "pending bookings cannot be confirmed")

	_, err = f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionAccept, ProviderID: "cleaner"})
	require.NoError(t, err)

	confirmed, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionConfirm})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, err = f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionConfirm})
	require.NoError(t, err)

	done, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionComplete})
	require.NoError(t, err)
	assert.Equal(t, 45.00, *done.ProviderEarning)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.create(t, "h1", "Cleaning")
	cancelled, err := f.svc.CancelBooking(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.IsCancelled)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.CancelBooking(ctx, open.ID)
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = f.svc.CancelBooking(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCancelBooking_CompletedIsFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)
	done, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionComplete})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionCancel})
	assert.ErrorIs(t, err, utils.ErrConflict)

	after, err := f.repos.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, done, after)
}

func TestDeclineBooking_ReleasesClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionDecline, ProviderID: "handyman"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	declined, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionDecline, ProviderID: "plumber"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, declined.Status)
	assert.False(t, declined.IsBooked)
	assert.Empty(t, declined.ProviderID)
	assert.Nil(t, declined.AcceptedAt)
	assert.NotContains(t, f.provider(t, "plumber").BookingIDs, b.ID)

	// Back in the pool for anyone qualified.
	_, err = f.svc.AcceptBooking(ctx, b.ID, "handyman")
	require.NoError(t, err)
}

// racingBookings runs interleave once, right after the first booking read, to stand in
// for a request that commits between a service's read and its conditional write.
type racingBookings struct {
	repository.BookingRepository
	interleave func()
	fired      bool
}

func (r *racingBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, err := r.BookingRepository.GetByID(ctx, id)
	if err == nil && !r.fired {
		r.fired = true
		r.interleave()
	}
	return b, err
}

func TestDeclineBooking_StaleHolderCannotReleaseNewClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)

	// Between the decline's read and its write, plumber's claim is released and the
	// handyman claims the booking.
	f.svc.Bookings = &racingBookings{BookingRepository: f.repos.Bookings, interleave: func() {
		_, err := f.repos.Bookings.Transition(ctx, b.ID, bookingRepo.StatusUpdate{
			From:    []models.BookingStatus{models.StatusAccepted},
			To:      models.StatusPending,
			Release: true,
			At:      time.Now(),
		})
		require.NoError(t, err)
		_, err = f.svc.AcceptBooking(ctx, b.ID, "handyman")
		require.NoError(t, err)
	}}

	_, err = f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionDecline, ProviderID: "plumber"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	after, err := f.repos.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, after.Status)
	assert.True(t, after.IsBooked)
	assert.Equal(t, "handyman", after.ProviderID)
	assert.Contains(t, f.provider(t, "handyman").BookingIDs, b.ID)
}

func TestCompleteBooking_OverlappingCompletionsSucceed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)

	// Another completion commits after this one has read the booking as accepted.
	f.svc.Bookings = &racingBookings{BookingRepository: f.repos.Bookings, interleave: func() {
		_, err := f.repos.Bookings.Transition(ctx, b.ID, bookingRepo.StatusUpdate{
			From:   []models.BookingStatus{models.StatusAccepted, models.StatusConfirmed},
			To:     models.StatusCompleted,
			Unbook: true,
			At:     time.Now(),
		})
		require.NoError(t, err)
	}}

	done, err := f.svc.UpdateStatus(ctx, b.ID, StatusRequest{Transition: TransitionComplete})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.ProviderEarning)
	assert.Equal(t, 90.0, *done.ProviderEarning)
	assert.Equal(t, 90.0, f.provider(t, "plumber").Earnings)
}

func TestParseTransition(t *testing.T) {
	tests := []struct {
		in      string
		want    Transition
		wantErr bool
	}{
		{"accept", TransitionAccept, false},
		{"Completed", TransitionComplete, false},
		{" declined ", TransitionDecline, false},
		{"confirmed", TransitionConfirm, false},
		{"CANCELLED", TransitionCancel, false},
		{"archived", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransition(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, utils.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateStatus_UnknownTransition(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, "h1", "Cleaning")

	_, err := f.svc.UpdateStatus(context.Background(), b.ID, StatusRequest{Transition: "archive"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestDeleteBooking_DetachesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "h1", "Plumbing")
	_, err := f.svc.AcceptBooking(ctx, b.ID, "plumber")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBooking(ctx, b.ID))

	_, err = f.svc.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	h, err := f.repos.Homeowners.GetByID(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, h.BookingIDs)
	assert.Empty(t, f.provider(t, "plumber").BookingIDs)

	assert.ErrorIs(t, f.svc.DeleteBooking(ctx, b.ID), utils.ErrNotFound)
}

func TestListBookingsForHomeowner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.ListBookingsForHomeowner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	f.create(t, "h1", "Cleaning")
	f.create(t, "h1", "Plumbing")
	f.create(t, "h2", "Plumbing")

	list, err := f.svc.ListBookingsForHomeowner(ctx, "h1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
