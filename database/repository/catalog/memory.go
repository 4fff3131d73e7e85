package catalogRepo

import (
	"context"
	"sort"
	"sync"

	"homeserve/models"
	"homeserve/utils"
)

type MemoryCatalogRepo struct {
	mu       sync.RWMutex
	services map[string]models.Service
}

func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{services: make(map[string]models.Service)}
}

func (r *MemoryCatalogRepo) FindByKey(_ context.Context, key string) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[key]
	if !ok {
		return nil, utils.NotFoundError("service %q not found", key)
	}
	return &svc, nil
}

func (r *MemoryCatalogRepo) List(_ context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Service, 0, len(r.services))
	for _, svc := range r.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryCatalogRepo) SeedDefaults(_ context.Context, services []models.Service) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.services) > 0 {
		return 0, nil
	}
	for _, svc := range services {
		svc = prepareService(svc)
		r.services[svc.Key] = svc
	}
	return len(services), nil
}
