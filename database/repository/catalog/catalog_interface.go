package catalogRepo

import (
	"context"

	"homeserve/models"
)

// CatalogRepository reads the service catalogue.
type CatalogRepository interface {
	// FindByKey looks a service up by its normalized name.
	FindByKey(ctx context.Context, key string) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	// SeedDefaults inserts services only when the catalogue is empty and reports how
	// many were written.
	SeedDefaults(ctx context.Context, services []models.Service) (int, error)
}
