package bookingRepo

import (
	"context"
	"time"

	"homeserve/models"
)

// OpenQuery selects the bookings a provider may see outside its own back-references.
type OpenQuery struct {
	// ServiceKeys are normalized professions; unclaimed bookings must match one.
	ServiceKeys []string
	// ProviderID also selects live bookings already claimed by this provider.
	ProviderID string
}

// StatusUpdate is a conditional status change. It applies only while the booking
// is not cancelled and its status is one of From.
type StatusUpdate struct {
	From []models.BookingStatus
	To   models.BookingStatus
	// ExpectProvider, when set, also requires the booking to be held by this provider.
	ExpectProvider string
	// Release detaches the provider: isBooked=false, providerId and acceptedAt cleared.
	Release bool
	// Unbook clears isBooked but keeps providerId for attribution.
	Unbook bool
	// Cancel marks the booking cancelled at At.
	Cancel bool
	At     time.Time
}

// BookingRepository is the persistence contract for booking documents.
// Conditional operations return a ConflictError when their precondition does not hold
// and a NotFoundError when the booking is absent.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetByIDs returns the bookings that exist among ids; missing ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]models.Booking, error)
	ListByHomeowner(ctx context.Context, homeownerID string) ([]models.Booking, error)
	ListOpen(ctx context.Context, q OpenQuery) ([]models.Booking, error)
	// ListUnpaidCompleted returns completed bookings whose provider earning was never recorded.
	ListUnpaidCompleted(ctx context.Context, limit int) ([]models.Booking, error)

	// Claim attaches providerID to a pending, unclaimed booking (compare-and-swap on isBooked).
	// claimed is false when the booking was already held by the same provider.
	Claim(ctx context.Context, id, providerID string, at time.Time) (booking *models.Booking, claimed bool, err error)
	Transition(ctx context.Context, id string, upd StatusUpdate) (*models.Booking, error)
	SetProviderEarning(ctx context.Context, id string, earning float64) (*models.Booking, error)
	SetRating(ctx context.Context, id string, rating int) (*models.Booking, error)

	// Delete removes the booking and returns it as it was.
	Delete(ctx context.Context, id string) (*models.Booking, error)
}

// statusStrings converts statuses for store filters.
func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func containsStatus(statuses []models.BookingStatus, s models.BookingStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
