package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homeserve/models"
	"homeserve/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedCatalog fronts another Catalog with Redis. Unknown services are cached as a
// zero price so repeated misses do not reach the store. Redis failures fall through to
// the wrapped catalogue.
type CachedCatalog struct {
	Next   Catalog
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func NewCachedCatalog(next Catalog, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = utils.DefaultCatalogCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{Next: next, Client: client, TTL: ttl, Logger: logger}
}

type cachedPrice struct {
	Price float64 `json:"price"`
}

func priceKey(key string) string {
	return fmt.Sprintf("%s%s", utils.CatalogCachePrefix, key)
}

func (c *CachedCatalog) PriceFor(ctx context.Context, serviceType string) (float64, error) {
	key := utils.NormalizeKey(serviceType)
	if key == "" || c.Client == nil {
		return c.Next.PriceFor(ctx, serviceType)
	}

	val, err := c.Client.Get(ctx, priceKey(key)).Result()
	switch {
	case err == nil:
		var cp cachedPrice
		if jsonErr := json.Unmarshal([]byte(val), &cp); jsonErr == nil {
			return cp.Price, nil
		}
		c.Logger.Warn("Discarding corrupt catalogue cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.Logger.Warn("Catalogue cache read failed", zap.String("key", key), zap.Error(err))
	}

	price, err := c.Next.PriceFor(ctx, serviceType)
	if err != nil {
		return 0, err
	}
	data, _ := json.Marshal(cachedPrice{Price: price})
	if err := c.Client.Set(ctx, priceKey(key), data, c.TTL).Err(); err != nil {
		c.Logger.Warn("Catalogue cache write failed", zap.String("key", key), zap.Error(err))
	}
	return price, nil
}

func (c *CachedCatalog) List(ctx context.Context) ([]models.Service, error) {
	return c.Next.List(ctx)
}

// Invalidate drops the cached price for serviceType.
func (c *CachedCatalog) Invalidate(ctx context.Context, serviceType string) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, priceKey(utils.NormalizeKey(serviceType))).Err()
}
