package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for missing-match records.
const missingMatchPrefix = "missing_match:"

// MissingMatch records a library release that had no catalog match, so the
// scraped dataset can be extended later.
type MissingMatch struct {
	Artist    string    `json:"artist"`
	Title     string    `json:"title"`
	Path      string    `json:"path,omitempty"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	SeenCount int       `json:"seenCount"`
}

func missingMatchKey(artist, title string) []byte {
	return []byte(missingMatchPrefix + strings.ToLower(artist) + keySeparator + strings.ToLower(title))
}

// LogMissingMatch records a release without a catalog match. Repeated sightings
// of the same release bump the counter instead of duplicating the record.
func (s *Store) LogMissingMatch(ctx context.Context, artist, title, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := missingMatchKey(artist, title)

	return s.db.Update(func(txn *badger.Txn) error {
		var mm MissingMatch
		now := time.Now()

		item, err := txn.Get(key)
		switch {
		case err == nil:
			// Exists - update.
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &mm)
			})
			if err != nil {
				return err
			}
			mm.SeenCount++
			mm.LastSeen = now
			if path != "" {
				mm.Path = path
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			mm = MissingMatch{
				Artist:    artist,
				Title:     title,
				Path:      path,
				FirstSeen: now,
				LastSeen:  now,
				SeenCount: 1,
			}
		default:
			return err
		}

		data, err := json.Marshal(mm)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// ListMissingMatches returns all recorded missing matches, most-seen first.
func (s *Store) ListMissingMatches(ctx context.Context) ([]*MissingMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var missing []*MissingMatch
	prefix := []byte(missingMatchPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var mm MissingMatch
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &mm)
			})
			if err != nil {
				continue
			}
			missing = append(missing, &mm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(missing, func(a, b *MissingMatch) int {
		if a.SeenCount != b.SeenCount {
			return b.SeenCount - a.SeenCount
		}
		return strings.Compare(a.Artist, b.Artist)
	})

	return missing, nil
}

// ClearMissingMatch removes the record for a release, typically after the
// catalog gains an entry for it.
func (s *Store) ClearMissingMatch(ctx context.Context, artist, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete(missingMatchKey(artist, title))
}
