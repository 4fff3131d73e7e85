package ledger

import (
	"context"
	"errors"
	"math"

	"homeserve/models"
	"homeserve/utils"

	"go.uber.org/zap"
)

// ProviderShare returns the configured share, falling back to the platform default
// when it is not within (0, 1].
func (l *DefaultEarningsLedger) ProviderShare() float64 {
	if l.Share <= 0 || l.Share > 1 || math.IsNaN(l.Share) {
		return utils.DefaultProviderShare
	}
	return l.Share
}

// EarningFor computes the provider's cut of amount, rounded to cents.
func (l *DefaultEarningsLedger) EarningFor(amount float64) float64 {
	return utils.RoundCurrency(amount * l.ProviderShare())
}

// ApplyEarning credits the provider first and records the booking earning second. If the
// second write is lost, the provider-side guard lets a later call finish the job without
// crediting again.
func (l *DefaultEarningsLedger) ApplyEarning(ctx context.Context, bookingID string) (float64, error) {
	logger := loggerOrNop(l.Logger)

	booking, err := l.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if booking.ProviderEarning != nil {
		return *booking.ProviderEarning, nil
	}
	if booking.Status != models.StatusCompleted {
		return 0, utils.ConflictError("booking %s is %s, earnings apply only to completed bookings", bookingID, booking.Status)
	}
	if booking.ProviderID == "" || booking.ServiceAmount <= 0 {
		logger.Info("No earning to apply",
			zap.String("bookingId", bookingID),
			zap.String("providerId", booking.ProviderID),
			zap.Float64("serviceAmount", booking.ServiceAmount))
		return 0, nil
	}

	earning := l.EarningFor(booking.ServiceAmount)
	err = txOrDirect(l.Tx).RunInTransaction(ctx, func(ctx context.Context) error {
		credit, err := l.Providers.CreditEarning(ctx, booking.ProviderID, bookingID, earning)
		if err != nil {
			return err
		}
		if !credit.Applied {
			// Record what the provider was actually credited, which may be a manual amount.
			if credit.Amount > 0 {
				earning = credit.Amount
			}
			logger.Info("Provider already credited, recording booking earning",
				zap.String("bookingId", bookingID),
				zap.String("providerId", booking.ProviderID),
				zap.Float64("earning", earning))
		}
		_, err = l.Bookings.SetProviderEarning(ctx, bookingID, earning)
		return err
	})
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			// A concurrent completion recorded it first.
			if current, getErr := l.Bookings.GetByID(ctx, bookingID); getErr == nil && current.ProviderEarning != nil {
				return *current.ProviderEarning, nil
			}
		}
		return 0, err
	}

	logger.Info("Earning applied",
		zap.String("bookingId", bookingID),
		zap.String("providerId", booking.ProviderID),
		zap.Float64("earning", earning))
	return earning, nil
}

// AddEarning is the administrator path for out-of-band earnings.
func (l *DefaultEarningsLedger) AddEarning(ctx context.Context, in models.EarningInput) (*models.Booking, error) {
	if in.BookingID == "" || in.ProviderID == "" {
		return nil, utils.ValidationError("bookingId and providerId are required")
	}
	if in.Earning == nil {
		return nil, utils.ValidationError("earning is required")
	}
	if *in.Earning < 0 || math.IsNaN(*in.Earning) || math.IsInf(*in.Earning, 0) {
		return nil, utils.ValidationError("earning must be a non-negative amount")
	}
	earning := utils.RoundCurrency(*in.Earning)

	booking, err := l.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ProviderEarning != nil {
		return nil, utils.ConflictError("earning already recorded for booking %s", in.BookingID)
	}
	if booking.Status != models.StatusCompleted {
		return nil, utils.ConflictError("booking %s is %s, earnings apply only to completed bookings", in.BookingID, booking.Status)
	}
	if booking.ProviderID != "" && booking.ProviderID != in.ProviderID {
		return nil, utils.ValidationError("booking %s belongs to a different provider", in.BookingID)
	}

	var updated *models.Booking
	err = txOrDirect(l.Tx).RunInTransaction(ctx, func(ctx context.Context) error {
		credit, err := l.Providers.CreditEarning(ctx, in.ProviderID, in.BookingID, earning)
		if err != nil {
			return err
		}
		if !credit.Applied {
			return utils.ConflictError("provider %s was already credited for booking %s", in.ProviderID, in.BookingID)
		}
		updated, err = l.Bookings.SetProviderEarning(ctx, in.BookingID, earning)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerOrNop(l.Logger).Info("Manual earning recorded",
		zap.String("bookingId", in.BookingID),
		zap.String("providerId", in.ProviderID),
		zap.Float64("earning", earning))
	return updated, nil
}

// Reconcile re-runs ApplyEarning for completed bookings still missing an earning.
// Failures are logged and skipped so one bad booking does not stall the batch.
func (l *DefaultEarningsLedger) Reconcile(ctx context.Context, limit int) (int, error) {
	logger := loggerOrNop(l.Logger)

	pending, err := l.Bookings.ListUnpaidCompleted(ctx, limit)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for _, b := range pending {
		if err := ctx.Err(); err != nil {
			return resumed, err
		}
		if _, err := l.ApplyEarning(ctx, b.ID); err != nil {
			logger.Warn("Reconcile: could not apply earning", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		resumed++
	}
	if len(pending) > 0 {
		logger.Info("Reconcile finished", zap.Int("candidates", len(pending)), zap.Int("resumed", resumed))
	}
	return resumed, nil
}
