package providers

import (
	"github.com/samber/do/v2"

	"github.com/grantoesterling/rymtag-server/internal/catalog"
	"github.com/grantoesterling/rymtag-server/internal/config"
	"github.com/grantoesterling/rymtag-server/internal/logger"
)

// ProvideCatalogLoader provides the catalog loader with its client and cache.
func ProvideCatalogLoader(i do.Injector) (*catalog.Loader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := catalog.NewClient(cfg.Catalog.URL, log.Logger)
	cache := catalog.NewCache(cfg.Catalog.CacheFile, cfg.Catalog.CacheDuration)

	return catalog.NewLoader(client, cache, log.Logger), nil
}
