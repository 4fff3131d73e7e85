package homeownerRepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"homeserve/models"
	"homeserve/utils"
)

type MemoryHomeownerRepo struct {
	mu         sync.Mutex
	homeowners map[string]*models.Homeowner
}

func NewMemoryHomeownerRepo() *MemoryHomeownerRepo {
	return &MemoryHomeownerRepo{homeowners: make(map[string]*models.Homeowner)}
}

func (r *MemoryHomeownerRepo) GetByID(_ context.Context, id string) (*models.Homeowner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.homeowners[id]
	if !ok {
		return nil, utils.NotFoundError("homeowner %s not found", id)
	}
	c := *h
	c.BookingIDs = slices.Clone(h.BookingIDs)
	return &c, nil
}

func (r *MemoryHomeownerRepo) AddBookingRef(_ context.Context, homeownerID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.homeowners[homeownerID]
	if !ok {
		h = &models.Homeowner{ID: homeownerID, BookingIDs: []string{}}
		r.homeowners[homeownerID] = h
	}
	if !slices.Contains(h.BookingIDs, bookingID) {
		h.BookingIDs = append(h.BookingIDs, bookingID)
	}
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryHomeownerRepo) RemoveBookingRef(_ context.Context, homeownerID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.homeowners[homeownerID]; ok {
		h.BookingIDs = slices.DeleteFunc(h.BookingIDs, func(id string) bool { return id == bookingID })
		h.UpdatedAt = time.Now().UTC()
	}
	return nil
}
