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

// Key prefixes for release tag storage.
const (
	releaseTagsPrefix = "release_tags:"
	// keySeparator keeps artist and title unambiguous in composite keys.
	keySeparator = "\x1f"
)

// Release tag errors.
var (
	ErrReleaseTagsNotFound = errors.New("release tags not found")
)

// ReleaseTags is the persisted record of tags applied to a release.
type ReleaseTags struct {
	Artist          string    `json:"artist"`
	Title           string    `json:"title"`
	MatchedArtist   string    `json:"matchedArtist"`
	MatchedTitle    string    `json:"matchedTitle"`
	Score           float64   `json:"score"`
	Genres          []string  `json:"genres,omitempty"`
	SecondaryGenres []string  `json:"secondaryGenres,omitempty"`
	Descriptors     []string  `json:"descriptors,omitempty"`
	Groupings       []string  `json:"groupings,omitempty"`
	RunID           string    `json:"runId"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// releaseTagsKey builds the composite key for a release, case-insensitively.
func releaseTagsKey(artist, title string) []byte {
	return []byte(releaseTagsPrefix + strings.ToLower(artist) + keySeparator + strings.ToLower(title))
}

// SaveReleaseTags stores the tags applied to a release, replacing any
// previous record.
func (s *Store) SaveReleaseTags(ctx context.Context, rt *ReleaseTags) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rt.UpdatedAt = time.Now()
	return s.set(releaseTagsKey(rt.Artist, rt.Title), rt)
}

// GetReleaseTags retrieves the stored tags for a release.
func (s *Store) GetReleaseTags(ctx context.Context, artist, title string) (*ReleaseTags, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rt ReleaseTags
	err := s.get(releaseTagsKey(artist, title), &rt)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrReleaseTagsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// HasReleaseTags reports whether a record exists for the release.
func (s *Store) HasReleaseTags(ctx context.Context, artist, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists(releaseTagsKey(artist, title))
}

// ListReleaseTags returns all stored release tag records, sorted by artist
// then title.
func (s *Store) ListReleaseTags(ctx context.Context) ([]*ReleaseTags, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []*ReleaseTags
	prefix := []byte(releaseTagsPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rt ReleaseTags
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rt)
			})
			if err != nil {
				continue
			}
			records = append(records, &rt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b *ReleaseTags) int {
		if c := strings.Compare(a.Artist, b.Artist); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})

	return records, nil
}

// DeleteReleaseTags removes the stored record for a release.
func (s *Store) DeleteReleaseTags(ctx context.Context, artist, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete(releaseTagsKey(artist, title))
}
