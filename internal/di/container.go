// Package di provides dependency injection configuration for rymtag.
package di

import (
	"github.com/samber/do/v2"

	"github.com/grantoesterling/rymtag-server/internal/config"
	"github.com/grantoesterling/rymtag-server/internal/di/providers"
	"github.com/grantoesterling/rymtag-server/internal/logger"
	"github.com/grantoesterling/rymtag-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalogLoader)

	// Pipeline collaborators
	do.Provide(injector, providers.ProvideMatcher)
	do.Provide(injector, providers.ProvideScanner)
	do.Provide(injector, providers.ProvideTagWriter)
	do.Provide(injector, providers.ProvideValidator)

	// Business services
	do.Provide(injector, providers.ProvideTaggingService)

	return injector
}

// Bootstrap initializes the core services eagerly so configuration problems
// surface at startup instead of mid-run.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*service.TaggingService](injector)
	return nil
}
