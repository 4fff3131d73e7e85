package providerRepo

import (
	"context"

	"homeserve/models"
)

// RatingResult is the provider's rating state after ApplyRating.
type RatingResult struct {
	Average float64
	Count   int
	// Rating is the value counted for the booking. When Applied is false it is the value
	// an earlier call counted, or 0 if that was not recorded.
	Rating int
	// Applied is false when the booking had already been counted.
	Applied bool
}

// CreditResult reports a CreditEarning call.
type CreditResult struct {
	// Amount is what the booking contributed to earnings; on a repeat, the earlier amount.
	Amount  float64
	Applied bool
}

// ProviderRepository defines methods for provider data access. The statistic writers
// are each guarded per booking so a retried call never counts twice.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// Create inserts a new provider record.
	Create(ctx context.Context, provider *models.Provider) error

	// RecordAppointment adds bookingID to the provider's claimed set and bumps
	// totalAppointments, then adds homeownerID to servedClients and bumps totalClients
	// if the homeowner is new. newClient reports the second increment.
	RecordAppointment(ctx context.Context, providerID, bookingID, homeownerID string) (newClient bool, err error)
	// DetachBooking removes bookingID from the provider's claimed set.
	DetachBooking(ctx context.Context, providerID, bookingID string) error
	// CreditEarning adds amount to earnings unless bookingID was already credited.
	CreditEarning(ctx context.Context, providerID, bookingID string, amount float64) (CreditResult, error)
	// ApplyRating folds rating into the running mean unless bookingID was already rated.
	ApplyRating(ctx context.Context, providerID, bookingID string, rating int) (RatingResult, error)
}
