package providerRepo

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"homeserve/models"
	"homeserve/utils"
)

// MemoryProviderRepo is an in-process ProviderRepository with the same per-booking guards
// as the Mongo implementation.
type MemoryProviderRepo struct {
	mu        sync.Mutex
	providers map[string]*models.Provider
}

func NewMemoryProviderRepo() *MemoryProviderRepo {
	return &MemoryProviderRepo{providers: make(map[string]*models.Provider)}
}

func cloneProvider(p *models.Provider) *models.Provider {
	c := *p
	c.Professions = slices.Clone(p.Professions)
	c.BookingIDs = slices.Clone(p.BookingIDs)
	c.ServedClients = slices.Clone(p.ServedClients)
	c.EarnedBookingIDs = slices.Clone(p.EarnedBookingIDs)
	c.RatedBookingIDs = slices.Clone(p.RatedBookingIDs)
	c.EarnedAmounts = maps.Clone(p.EarnedAmounts)
	c.BookingRatings = maps.Clone(p.BookingRatings)
	return &c
}

func (r *MemoryProviderRepo) GetByID(_ context.Context, id string) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, utils.NotFoundError("provider %s not found", id)
	}
	return cloneProvider(p), nil
}

func (r *MemoryProviderRepo) Create(_ context.Context, provider *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[provider.ID]; exists {
		return utils.ConflictError("provider %s already exists", provider.ID)
	}
	normalizeForInsert(provider)
	r.providers[provider.ID] = cloneProvider(provider)
	return nil
}

func (r *MemoryProviderRepo) RecordAppointment(_ context.Context, providerID, bookingID, homeownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[providerID]
	if !ok {
		return false, utils.NotFoundError("provider %s not found", providerID)
	}
	if !slices.Contains(p.BookingIDs, bookingID) {
		p.BookingIDs = append(p.BookingIDs, bookingID)
		p.TotalAppointments++
	}
	newClient := false
	if !slices.Contains(p.ServedClients, homeownerID) {
		p.ServedClients = append(p.ServedClients, homeownerID)
		p.TotalClients++
		newClient = true
	}
	p.UpdatedAt = time.Now().UTC()
	return newClient, nil
}

func (r *MemoryProviderRepo) DetachBooking(_ context.Context, providerID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[providerID]
	if !ok {
		return utils.NotFoundError("provider %s not found", providerID)
	}
	p.BookingIDs = slices.DeleteFunc(p.BookingIDs, func(id string) bool { return id == bookingID })
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryProviderRepo) CreditEarning(_ context.Context, providerID, bookingID string, amount float64) (CreditResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[providerID]
	if !ok {
		return CreditResult{}, utils.NotFoundError("provider %s not found", providerID)
	}
	if slices.Contains(p.EarnedBookingIDs, bookingID) {
		return CreditResult{Amount: p.EarnedAmounts[bookingID]}, nil
	}
	p.Earnings = utils.RoundCurrency(p.Earnings + amount)
	p.EarnedBookingIDs = append(p.EarnedBookingIDs, bookingID)
	if p.EarnedAmounts == nil {
		p.EarnedAmounts = map[string]float64{}
	}
	p.EarnedAmounts[bookingID] = amount
	p.UpdatedAt = time.Now().UTC()
	return CreditResult{Amount: amount, Applied: true}, nil
}

func (r *MemoryProviderRepo) ApplyRating(_ context.Context, providerID, bookingID string, rating int) (RatingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[providerID]
	if !ok {
		return RatingResult{}, utils.NotFoundError("provider %s not found", providerID)
	}
	if slices.Contains(p.RatedBookingIDs, bookingID) {
		return RatingResult{Average: p.AverageRating, Count: p.RatingCount, Rating: p.BookingRatings[bookingID]}, nil
	}
	prev := float64(p.RatingCount)
	p.AverageRating = (p.AverageRating*prev + float64(rating)) / (prev + 1)
	p.RatingCount++
	p.RatedBookingIDs = append(p.RatedBookingIDs, bookingID)
	if p.BookingRatings == nil {
		p.BookingRatings = map[string]int{}
	}
	p.BookingRatings[bookingID] = rating
	p.UpdatedAt = time.Now().UTC()
	return RatingResult{Average: p.AverageRating, Count: p.RatingCount, Rating: rating, Applied: true}, nil
}
