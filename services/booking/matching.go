package booking

import (
	"context"
	"sort"
	"strings"
	"sync"

	"homeserve/database/repository"
	bookingRepo "homeserve/database/repository/booking"
	"homeserve/models"
	"homeserve/utils"

	"go.uber.org/zap"
)

// MatchingService surfaces bookings to providers.
type MatchingService interface {
	ListBookingsForProvider(ctx context.Context, providerID string) ([]models.Booking, error)
}

// DefaultMatchingService implements MatchingService. Eligibility is computed at read
// time from the provider's professions.
type DefaultMatchingService struct {
	Providers repository.ProviderRepository
	Bookings  repository.BookingRepository
	Logger    *zap.Logger
}

// ListBookingsForProvider returns the provider's own bookings together with every live,
// unclaimed pending booking whose service matches one of its professions.
func (s *DefaultMatchingService) ListBookingsForProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, utils.ValidationError("providerId is required")
	}
	provider, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	query := bookingRepo.OpenQuery{
		ServiceKeys: utils.NormalizeKeys(provider.Professions),
		ProviderID:  providerID,
	}

	var (
		wg                sync.WaitGroup
		owned, open       []models.Booking
		ownedErr, openErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		owned, ownedErr = s.Bookings.GetByIDs(ctx, provider.BookingIDs)
	}()
	go func() {
		defer wg.Done()
		open, openErr = s.Bookings.ListOpen(ctx, query)
	}()
	wg.Wait()

	if ownedErr != nil {
		return nil, ownedErr
	}
	if openErr != nil {
		return nil, openErr
	}

	merged := mergeBookings(owned, open)
	if s.Logger != nil {
		s.Logger.Debug("Bookings matched for provider",
			zap.String("providerId", providerID),
			zap.Strings("professions", query.ServiceKeys),
			zap.Int("owned", len(owned)),
			zap.Int("open", len(open)),
			zap.Int("total", len(merged)))
	}
	return merged, nil
}

// mergeBookings unions by id, newest first.
func mergeBookings(sets ...[]models.Booking) []models.Booking {
	seen := make(map[string]struct{})
	out := []models.Booking{}
	for _, set := range sets {
		for _, b := range set {
			if _, ok := seen[b.ID]; ok {
				continue
			}
			seen[b.ID] = struct{}{}
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
