package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"homeserve/models"
	"homeserve/utils"
)

// MemoryBookingRepo is an in-process BookingRepository. Every method holds the mutex for
// its whole read-check-write, which gives the same compare-and-swap semantics as the
// conditional Mongo updates.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]*models.Booking)}
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	if b.ProviderEarning != nil {
		v := *b.ProviderEarning
		c.ProviderEarning = &v
	}
	if b.Rating != nil {
		v := *b.Rating
		c.Rating = &v
	}
	if b.AcceptedAt != nil {
		t := *b.AcceptedAt
		c.AcceptedAt = &t
	}
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		c.CompletedAt = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

func (r *MemoryBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.ID]; exists {
		return utils.ConflictError("booking %s already exists", booking.ID)
	}
	r.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, utils.NotFoundError("booking %s not found", id)
	}
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) GetByIDs(_ context.Context, ids []string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, id := range ids {
		if b, ok := r.bookings[id]; ok {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (r *MemoryBookingRepo) ListByHomeowner(_ context.Context, homeownerID string) ([]models.Booking, error) {
	out := r.filter(func(b *models.Booking) bool { return b.HomeownerID == homeownerID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryBookingRepo) ListOpen(_ context.Context, q OpenQuery) ([]models.Booking, error) {
	keys := make(map[string]struct{}, len(q.ServiceKeys))
	for _, k := range q.ServiceKeys {
		keys[k] = struct{}{}
	}
	return r.filter(func(b *models.Booking) bool {
		if b.IsCancelled {
			return false
		}
		if !b.IsBooked && b.Status == models.StatusPending {
			_, ok := keys[b.ServiceKey]
			return ok
		}
		return q.ProviderID != "" && b.IsBooked && b.ProviderID == q.ProviderID
	}), nil
}

func (r *MemoryBookingRepo) ListUnpaidCompleted(_ context.Context, limit int) ([]models.Booking, error) {
	out := r.filter(func(b *models.Booking) bool {
		return b.Status == models.StatusCompleted && b.ProviderEarning == nil &&
			b.ProviderID != "" && b.ServiceAmount > 0
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedAt == nil || out[j].CompletedAt == nil {
			return out[i].CompletedAt != nil
		}
		return out[i].CompletedAt.Before(*out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryBookingRepo) Claim(_ context.Context, id, providerID string, at time.Time) (*models.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, false, utils.NotFoundError("booking %s not found", id)
	}
	if b.IsBooked || b.IsCancelled || b.Status != models.StatusPending {
		return resolveClaimConflict(cloneBooking(b), providerID)
	}
	b.IsBooked = true
	b.ProviderID = providerID
	b.Status = models.StatusAccepted
	accepted := at
	b.AcceptedAt = &accepted
	return cloneBooking(b), true, nil
}

func (r *MemoryBookingRepo) Transition(_ context.Context, id string, upd StatusUpdate) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, utils.NotFoundError("booking %s not found", id)
	}
	if b.IsCancelled || !containsStatus(upd.From, b.Status) ||
		(upd.ExpectProvider != "" && b.ProviderID != upd.ExpectProvider) {
		return nil, transitionConflict(b, upd)
	}

	b.Status = upd.To
	if upd.Release {
		b.IsBooked = false
		b.ProviderID = ""
		b.AcceptedAt = nil
	}
	if upd.Unbook {
		b.IsBooked = false
	}
	at := upd.At
	if upd.To == models.StatusCompleted {
		b.CompletedAt = &at
	}
	if upd.Cancel {
		b.IsCancelled = true
		b.CancelledAt = &at
	}
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) SetProviderEarning(_ context.Context, id string, earning float64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, utils.NotFoundError("booking %s not found", id)
	}
	if b.Status != models.StatusCompleted || b.ProviderEarning != nil {
		return nil, conflictFor(b)
	}
	b.ProviderEarning = &earning
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) SetRating(_ context.Context, id string, rating int) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, utils.NotFoundError("booking %s not found", id)
	}
	if b.Status != models.StatusCompleted || b.Rating != nil {
		return nil, conflictFor(b)
	}
	b.Rating = &rating
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) Delete(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, utils.NotFoundError("booking %s not found", id)
	}
	delete(r.bookings, id)
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) filter(keep func(*models.Booking) bool) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *cloneBooking(b))
		}
	}
	return out
}
