package booking

import (
	"context"
	"errors"
	"strings"

	"homeserve/models"
	"homeserve/utils"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, utils.ValidationError("bookingId is required")
	}
	return s.Bookings.GetByID(ctx, bookingID)
}

// ListBookingsForHomeowner returns an empty slice, not an error, when there are none.
func (s *DefaultBookingService) ListBookingsForHomeowner(ctx context.Context, homeownerID string) ([]models.Booking, error) {
	if strings.TrimSpace(homeownerID) == "" {
		return nil, utils.ValidationError("homeownerId is required")
	}
	return s.Bookings.ListByHomeowner(ctx, homeownerID)
}

// DeleteBooking hard-deletes a booking and detaches it from the homeowner and provider
// that reference it. Detach failures are logged; the booking is already gone.
func (s *DefaultBookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	if strings.TrimSpace(bookingID) == "" {
		return utils.ValidationError("bookingId is required")
	}
	removed, err := s.Bookings.Delete(ctx, bookingID)
	if err != nil {
		return err
	}

	logger := s.logger().With(zap.String("bookingId", bookingID))
	if err := s.Homeowners.RemoveBookingRef(ctx, removed.HomeownerID, bookingID); err != nil {
		logger.Warn("Failed to detach deleted booking from homeowner", zap.String("homeownerId", removed.HomeownerID), zap.Error(err))
	}
	if removed.ProviderID != "" {
		if err := s.Providers.DetachBooking(ctx, removed.ProviderID, bookingID); err != nil && !errors.Is(err, utils.ErrNotFound) {
			logger.Warn("Failed to detach deleted booking from provider", zap.String("providerId", removed.ProviderID), zap.Error(err))
		}
	}
	logger.Info("Booking deleted")
	return nil
}
