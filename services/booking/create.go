package booking

import (
	"context"
	"strings"

	"homeserve/models"
	"homeserve/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking persists a pending, unclaimed booking and links it to the homeowner.
// The amount is the explicit one when positive, otherwise the catalogue price.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	if err := requireFields(
		[2]string{"homeownerId", in.HomeownerID},
		[2]string{"serviceType", in.ServiceType},
		[2]string{"date", in.Date},
		[2]string{"time", in.Time},
		[2]string{"address", in.Address},
	); err != nil {
		return nil, err
	}

	if err := s.checkPayment(ctx, in.PaymentRef); err != nil {
		return nil, err
	}

	amount, err := s.resolveAmount(ctx, in)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		HomeownerID:   strings.TrimSpace(in.HomeownerID),
		ServiceType:   strings.TrimSpace(in.ServiceType),
		ServiceKey:    utils.NormalizeKey(in.ServiceType),
		PaymentRef:    strings.TrimSpace(in.PaymentRef),
		ServiceAmount: amount,
		Date:          in.Date,
		Time:          in.Time,
		Address:       in.Address,
		Notes:         in.Notes,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}

	err = s.tx().RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Bookings.Create(ctx, booking); err != nil {
			return err
		}
		return s.Homeowners.AddBookingRef(ctx, booking.HomeownerID, booking.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("Booking created",
		zap.String("bookingId", booking.ID),
		zap.String("homeownerId", booking.HomeownerID),
		zap.String("serviceType", booking.ServiceType),
		zap.Float64("serviceAmount", booking.ServiceAmount))
	return booking, nil
}

func (s *DefaultBookingService) resolveAmount(ctx context.Context, in models.BookingInput) (float64, error) {
	if in.Amount > 0 {
		return utils.RoundCurrency(in.Amount), nil
	}
	if s.Catalog == nil {
		return 0, nil
	}
	price, err := s.Catalog.PriceFor(ctx, in.ServiceType)
	if err != nil {
		return 0, err
	}
	return price, nil
}

func (s *DefaultBookingService) checkPayment(ctx context.Context, ref string) error {
	if !s.RequirePayment || s.Payments == nil {
		return nil
	}
	if strings.TrimSpace(ref) == "" {
		return utils.ValidationError("paymentRef is required")
	}
	paid, err := s.Payments.IsPaid(ctx, ref)
	if err != nil {
		return utils.StoreError(err, "failed to confirm payment %s", ref)
	}
	if !paid {
		return utils.ValidationError("payment %s is not confirmed", ref)
	}
	return nil
}
