package utils

import "time"

// CatalogCachePrefix is the prefix used for Redis catalogue price keys.
const CatalogCachePrefix = "catalog:price:"

// DefaultCatalogCacheTTL applies when no TTL is configured.
const DefaultCatalogCacheTTL = 10 * time.Minute

// DefaultProviderShare is the fraction of a service amount paid to the provider.
const DefaultProviderShare = 0.90
