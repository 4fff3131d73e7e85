package booking

import (
	"context"
	"errors"
	"strings"

	bookingRepo "homeserve/database/repository/booking"
	"homeserve/models"
	"homeserve/utils"

	"go.uber.org/zap"
)

// Transition is an explicit lifecycle operation.
type Transition string

const (
	TransitionAccept   Transition = "accept"
	TransitionDecline  Transition = "decline"
	TransitionConfirm  Transition = "confirm"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
)

var transitionAliases = map[string]Transition{
	"accept":    TransitionAccept,
	"accepted":  TransitionAccept,
	"decline":   TransitionDecline,
	"declined":  TransitionDecline,
	"confirm":   TransitionConfirm,
	"confirmed": TransitionConfirm,
	"complete":  TransitionComplete,
	"completed": TransitionComplete,
	"cancel":    TransitionCancel,
	"cancelled": TransitionCancel,
	"canceled":  TransitionCancel,
}

// ParseTransition accepts an operation name or the status it leads to, case-insensitively.
func ParseTransition(s string) (Transition, error) {
	t, ok := transitionAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", utils.ValidationError("unsupported status %q", s)
	}
	return t, nil
}

// StatusRequest is a tagged transition. ProviderID is required for accept and, when
// set, restricts decline to the provider holding the booking.
type StatusRequest struct {
	Transition Transition
	ProviderID string
}

// UpdateStatus dispatches a transition to its handler.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, bookingID string, req StatusRequest) (*models.Booking, error) {
	switch req.Transition {
	case TransitionAccept:
		return s.AcceptBooking(ctx, bookingID, req.ProviderID)
	case TransitionDecline:
		return s.declineBooking(ctx, bookingID, req.ProviderID)
	case TransitionConfirm:
		return s.confirmBooking(ctx, bookingID)
	case TransitionComplete:
		return s.completeBooking(ctx, bookingID)
	case TransitionCancel:
		return s.CancelBooking(ctx, bookingID)
	default:
		return nil, utils.ValidationError("unsupported status %q", req.Transition)
	}
}

// declineBooking releases a claim and returns the booking to the open pool. Declining
// an unclaimed booking records nothing.
func (s *DefaultBookingService) declineBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.IsTerminal() {
		return nil, utils.ConflictError("booking %s is %s and cannot be declined", bookingID, current.Status)
	}
	if !current.IsBooked {
		return current, nil
	}
	if providerID != "" && current.ProviderID != providerID {
		return nil, utils.ConflictError("booking %s is held by another provider", bookingID)
	}

	// The holder read above must still hold it when the release lands.
	updated, err := s.Bookings.Transition(ctx, bookingID, bookingRepo.StatusUpdate{
		From:           []models.BookingStatus{models.StatusAccepted, models.StatusConfirmed},
		To:             models.StatusPending,
		ExpectProvider: current.ProviderID,
		Release:        true,
		At:             s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.Providers.DetachBooking(ctx, current.ProviderID, bookingID); err != nil {
		s.logger().Warn("Failed to detach declined booking from provider",
			zap.String("bookingId", bookingID), zap.String("providerId", current.ProviderID), zap.Error(err))
	}
	s.logger().Info("Booking declined",
		zap.String("bookingId", bookingID),
		zap.String("providerId", current.ProviderID),
		zap.String("from", string(current.Status)))
	return updated, nil
}

func (s *DefaultBookingService) confirmBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusConfirmed && !current.IsCancelled {
		return current, nil
	}

	updated, err := s.Bookings.Transition(ctx, bookingID, bookingRepo.StatusUpdate{
		From: []models.BookingStatus{models.StatusAccepted},
		To:   models.StatusConfirmed,
		At:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("Booking confirmed", zap.String("bookingId", bookingID), zap.String("providerId", updated.ProviderID))
	return updated, nil
}

// completeBooking finishes a claimed booking and applies the provider earning. A retry on
// a completed booking only resumes a missing earning.
func (s *DefaultBookingService) completeBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case current.Status == models.StatusCompleted:
		if current.EarningApplied() {
			return current, nil
		}
	case current.IsCancelled:
		return nil, utils.ConflictError("booking %s is cancelled", bookingID)
	case current.Status != models.StatusAccepted && current.Status != models.StatusConfirmed:
		return nil, utils.ConflictError("booking %s is %s and must be accepted before completion", bookingID, current.Status)
	default:
		_, err := s.Bookings.Transition(ctx, bookingID, bookingRepo.StatusUpdate{
			From:   []models.BookingStatus{models.StatusAccepted, models.StatusConfirmed},
			To:     models.StatusCompleted,
			Unbook: true,
			At:     s.now(),
		})
		switch {
		case err == nil:
			s.logger().Info("Booking completed",
				zap.String("bookingId", bookingID),
				zap.String("providerId", current.ProviderID),
				zap.String("from", string(current.Status)))
		case errors.Is(err, utils.ErrConflict):
			// A concurrent completion may have won; that is the same outcome.
			latest, getErr := s.Bookings.GetByID(ctx, bookingID)
			if getErr != nil {
				return nil, getErr
			}
			if latest.Status != models.StatusCompleted {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	if s.Ledger != nil {
		if _, err := s.Ledger.ApplyEarning(ctx, bookingID); err != nil {
			return nil, err
		}
	}
	return s.Bookings.GetByID(ctx, bookingID)
}

// CancelBooking marks a live booking cancelled. Completed and cancelled bookings are final.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, utils.ValidationError("bookingId is required")
	}
	updated, err := s.Bookings.Transition(ctx, bookingID, bookingRepo.StatusUpdate{
		From: []models.BookingStatus{
			models.StatusPending,
			models.StatusAccepted,
			models.StatusConfirmed,
			models.StatusDeclined,
		},
		To:     models.StatusCancelled,
		Cancel: true,
		At:     s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("Booking cancelled", zap.String("bookingId", bookingID), zap.String("providerId", updated.ProviderID))
	return updated, nil
}
