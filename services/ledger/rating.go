package ledger

import (
	"context"

	providerRepo "homeserve/database/repository/provider"
	"homeserve/models"
	"homeserve/utils"

	"go.uber.org/zap"
)

// RateBooking folds a homeowner rating into the provider's running mean, then marks the
// booking rated. Both steps are guarded per booking.
func (a *DefaultRatingAggregator) RateBooking(ctx context.Context, in models.RatingInput) (*RatingSummary, error) {
	if in.BookingID == "" || in.ProviderID == "" {
		return nil, utils.ValidationError("bookingId and providerId are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, utils.ValidationError("rating must be between 1 and 5")
	}

	booking, err := a.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Rating != nil {
		return nil, utils.ConflictError("booking %s is already rated", in.BookingID)
	}
	if booking.Status != models.StatusCompleted {
		return nil, utils.ConflictError("booking %s is %s, only completed bookings can be rated", in.BookingID, booking.Status)
	}
	if booking.ProviderID != in.ProviderID {
		return nil, utils.ValidationError("booking %s was not served by provider %s", in.BookingID, in.ProviderID)
	}

	var result providerRepo.RatingResult
	err = txOrDirect(a.Tx).RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = a.Providers.ApplyRating(ctx, in.ProviderID, in.BookingID, in.Rating)
		if err != nil {
			return err
		}
		if !result.Applied {
			// The provider counted this booking but the booking write was lost. Finish it
			// with the value that went into the mean.
			if result.Rating == 0 {
				result.Rating = in.Rating
			}
			loggerOrNop(a.Logger).Info("Provider already counted rating, recording it on the booking",
				zap.String("bookingId", in.BookingID),
				zap.String("providerId", in.ProviderID),
				zap.Int("rating", result.Rating))
		}
		_, err = a.Bookings.SetRating(ctx, in.BookingID, result.Rating)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerOrNop(a.Logger).Info("Booking rated",
		zap.String("bookingId", in.BookingID),
		zap.String("providerId", in.ProviderID),
		zap.Int("rating", result.Rating),
		zap.Float64("averageRating", result.Average))

	return &RatingSummary{
		BookingID:     in.BookingID,
		ProviderID:    in.ProviderID,
		Rating:        result.Rating,
		AverageRating: result.Average,
		RatingCount:   result.Count,
	}, nil
}
