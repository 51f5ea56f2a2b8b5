package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// cacheDocument is the on-disk shape of a cached catalog snapshot.
type cacheDocument struct {
	Timestamp int64   `json:"timestamp"` // epoch seconds
	Data      Catalog `json:"data"`
}

// Cache persists catalog snapshots to a single JSON file with a freshness
// timestamp.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a cache at the given file path with the given TTL.
func NewCache(path string, ttl time.Duration) *Cache {
	return &Cache{path: path, ttl: ttl}
}

// Load returns the cached catalog and its age if the snapshot exists and is
// still fresh. The ok result is false for a missing, malformed, or expired
// snapshot.
func (c *Cache) Load(now time.Time) (cat Catalog, age time.Duration, ok bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, 0, false
	}

	var doc cacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, false
	}

	age = now.Sub(time.Unix(doc.Timestamp, 0))
	if age < 0 || age >= c.ttl {
		return nil, age, false
	}
	return doc.Data, age, true
}

// Save writes a catalog snapshot stamped with the given time.
func (c *Cache) Save(cat Catalog, now time.Time) error {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	doc := cacheDocument{
		Timestamp: now.Unix(),
		Data:      cat,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
