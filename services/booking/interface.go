package booking

import (
	"context"
	"time"

	"homeserve/database"
	"homeserve/database/repository"
	"homeserve/models"
	"homeserve/services/catalog"
	"homeserve/services/payment"

	"go.uber.org/zap"
)

// BookingService drives the booking lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookingsForHomeowner(ctx context.Context, homeownerID string) ([]models.Booking, error)
	AcceptBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID string, req StatusRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID string) error
}

// EarningsApplier is the part of the earnings ledger completion depends on.
type EarningsApplier interface {
	ApplyEarning(ctx context.Context, bookingID string) (float64, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings   repository.BookingRepository
	Providers  repository.ProviderRepository
	Homeowners repository.HomeownerRepository
	Catalog    catalog.Catalog
	// Payments gates creation when RequirePayment is set.
	Payments       payment.PaymentConfirmer
	RequirePayment bool
	Ledger         EarningsApplier
	Tx             database.TxRunner
	Logger         *zap.Logger
	// Now is overridable in tests.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) tx() database.TxRunner {
	if s.Tx == nil {
		return database.DirectRunner{}
	}
	return s.Tx
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
