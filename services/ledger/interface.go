package ledger

import (
	"context"

	"homeserve/database"
	"homeserve/database/repository"
	"homeserve/models"

	"go.uber.org/zap"
)

// EarningsLedger credits providers for completed bookings.
type EarningsLedger interface {
	// ApplyEarning credits the provider share of a completed booking exactly once and
	// returns the recorded earning.
	ApplyEarning(ctx context.Context, bookingID string) (float64, error)
	// AddEarning records a manually entered earning; it is mutually exclusive with ApplyEarning.
	AddEarning(ctx context.Context, in models.EarningInput) (*models.Booking, error)
	// Reconcile resumes completed bookings whose earning was never recorded.
	Reconcile(ctx context.Context, limit int) (int, error)
}

// RatingAggregator maintains the provider rating mean.
type RatingAggregator interface {
	RateBooking(ctx context.Context, in models.RatingInput) (*RatingSummary, error)
}

// RatingSummary is the provider's rating state after a rating was applied.
type RatingSummary struct {
	BookingID     string  `json:"bookingId"`
	ProviderID    string  `json:"providerId"`
	Rating        int     `json:"rating"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}

// DefaultEarningsLedger implements EarningsLedger.
type DefaultEarningsLedger struct {
	Bookings  repository.BookingRepository
	Providers repository.ProviderRepository
	Tx        database.TxRunner
	// Share is the provider's fraction of the service amount.
	Share  float64
	Logger *zap.Logger
}

// DefaultRatingAggregator implements RatingAggregator.
type DefaultRatingAggregator struct {
	Bookings  repository.BookingRepository
	Providers repository.ProviderRepository
	Tx        database.TxRunner
	Logger    *zap.Logger
}

func txOrDirect(tx database.TxRunner) database.TxRunner {
	if tx == nil {
		return database.DirectRunner{}
	}
	return tx
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
