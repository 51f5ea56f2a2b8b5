// Package tags turns a matched catalog record into the final tag set for a
// release: truncated genre/descriptor lists plus the derived parent-genre
// groupings computed from the taxonomy index.
package tags

import (
	"sort"

	"github.com/grantoesterling/rymtag-server/internal/catalog"
	"github.com/grantoesterling/rymtag-server/internal/hierarchy"
)

// Limits caps each output list. A limit of zero or below suppresses the field
// entirely rather than truncating it to nothing.
type Limits struct {
	MaxGenres          int
	MaxSecondaryGenres int
	MaxDescriptors     int
	MaxGroupings       int
}

// Resolved is the complete tag set for one release. Lists stay ordered string
// slices throughout; any delimited or array encoding is the writer's concern.
type Resolved struct {
	Genres          []string
	SecondaryGenres []string
	Descriptors     []string
	Groupings       []string
}

// Empty reports whether no field carries any value.
func (r Resolved) Empty() bool {
	return len(r.Genres) == 0 && len(r.SecondaryGenres) == 0 &&
		len(r.Descriptors) == 0 && len(r.Groupings) == 0
}

// Resolve computes the tag set for a matched record. The index may be nil or
// empty when the hierarchy feature is disabled or its load failed; groupings
// are then always empty. Resolution is pure: the same record, index, and
// limits always yield the same result.
func Resolve(rec *catalog.Record, ix *hierarchy.Index, limits Limits) Resolved {
	if rec == nil {
		return Resolved{}
	}

	return Resolved{
		Genres:          truncate(rec.Genres, limits.MaxGenres),
		SecondaryGenres: truncate(rec.SecondaryGenres, limits.MaxSecondaryGenres),
		Descriptors:     truncate(rec.Descriptors, limits.MaxDescriptors),
		Groupings:       groupings(rec.Genres, ix, limits.MaxGroupings),
	}
}

// groupings derives the parent-genre tags from the untruncated primary genres:
// ancestors of every genre that has them, the genre itself when it is already
// top-level, minus anything present verbatim in the input, minus excluded
// meta-genres. Sorted for stable output, then capped.
func groupings(genres []string, ix *hierarchy.Index, max int) []string {
	// An empty index means no taxonomy is available, not that every genre is
	// top-level.
	if max <= 0 || ix == nil || ix.Size() == 0 || len(genres) == 0 {
		return nil
	}

	parents := make(map[string]bool)
	topLevel := make(map[string]bool)

	for _, genre := range genres {
		found := ix.AllParents(genre)
		if len(found) == 0 {
			topLevel[genre] = true
			continue
		}
		for parent := range found {
			parents[parent] = true
		}
	}

	// Drop parents that duplicate an input genre, then fold the top-level
	// genres back in.
	for _, genre := range genres {
		delete(parents, genre)
	}
	for genre := range topLevel {
		parents[genre] = true
	}

	out := make([]string, 0, len(parents))
	for genre := range parents {
		if ix.IsExcluded(genre) {
			continue
		}
		out = append(out, genre)
	}
	sort.Strings(out)

	if len(out) > max {
		out = out[:max]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// truncate caps a list at max, suppressing the field entirely for max <= 0.
func truncate(list []string, max int) []string {
	if max <= 0 || len(list) == 0 {
		return nil
	}
	if len(list) > max {
		list = list[:max]
	}
	return append([]string(nil), list...)
}
