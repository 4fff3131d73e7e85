package booking

import (
	"context"

	"homeserve/models"

	"go.uber.org/zap"
)

// AcceptBooking claims a pending booking for providerID. Exactly one of several
// concurrent providers wins; a repeat by the winner is a successful no-op on the booking
// and re-runs the idempotent provider bookkeeping.
func (s *DefaultBookingService) AcceptBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	if err := requireFields([2]string{"bookingId", bookingID}, [2]string{"providerId", providerID}); err != nil {
		return nil, err
	}
	if _, err := s.Providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}

	var (
		booking   *models.Booking
		claimed   bool
		newClient bool
	)
	err := s.tx().RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		booking, claimed, err = s.Bookings.Claim(ctx, bookingID, providerID, s.now())
		if err != nil {
			return err
		}
		newClient, err = s.Providers.RecordAppointment(ctx, providerID, booking.ID, booking.HomeownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("Booking accepted",
		zap.String("bookingId", booking.ID),
		zap.String("providerId", providerID),
		zap.Bool("claimed", claimed),
		zap.Bool("newClient", newClient))
	return booking, nil
}
