package catalog

import (
	"context"
	"errors"

	"homeserve/database/repository"
	"homeserve/models"
	"homeserve/utils"
)

// Catalog resolves prices for service types. It is read-only.
type Catalog interface {
	// PriceFor returns the catalogue price for serviceType, or 0 when the service is unknown.
	PriceFor(ctx context.Context, serviceType string) (float64, error)
	List(ctx context.Context) ([]models.Service, error)
}

// RepoCatalog reads prices straight from the catalogue repository.
type RepoCatalog struct {
	Repo repository.CatalogRepository
}

func (c *RepoCatalog) PriceFor(ctx context.Context, serviceType string) (float64, error) {
	key := utils.NormalizeKey(serviceType)
	if key == "" {
		return 0, nil
	}
	svc, err := c.Repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return utils.RoundCurrency(svc.Price), nil
}

func (c *RepoCatalog) List(ctx context.Context) ([]models.Service, error) {
	return c.Repo.List(ctx)
}
