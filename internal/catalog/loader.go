package catalog

import (
	"context"
	"log/slog"
	"time"
)

// Loader combines the remote client and the file cache into the catalog load
// policy: serve a fresh cached snapshot if one exists, otherwise fetch and
// cache. Fetch failures degrade to an empty catalog so matching simply finds
// nothing rather than aborting the run.
type Loader struct {
	client *Client
	cache  *Cache
	logger *slog.Logger

	snapshot Catalog // loaded once per process, refreshed only via explicit Load
	loaded   bool
}

// NewLoader creates a loader over the given client and cache.
func NewLoader(client *Client, cache *Cache, logger *slog.Logger) *Loader {
	return &Loader{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Load returns the current catalog snapshot, loading it on first call.
// The snapshot is process-wide state; a later call re-checks cache freshness
// only if the first load came up empty.
func (l *Loader) Load(ctx context.Context) Catalog {
	if l.loaded && len(l.snapshot) > 0 {
		return l.snapshot
	}

	l.snapshot = l.load(ctx)
	l.loaded = true
	return l.snapshot
}

func (l *Loader) load(ctx context.Context) Catalog {
	now := time.Now()

	if cat, age, ok := l.cache.Load(now); ok {
		l.logger.Info("loaded catalog from cache",
			"artists", len(cat),
			"releases", cat.Releases(),
			"age", age.Round(time.Second),
		)
		return cat
	}

	cat, err := l.client.Fetch(ctx)
	if err != nil {
		l.logger.Error("failed to load catalog, matching disabled for this run", "error", err)
		return Catalog{}
	}

	if err := l.cache.Save(cat, now); err != nil {
		l.logger.Warn("failed to cache catalog", "error", err)
	}
	return cat
}
