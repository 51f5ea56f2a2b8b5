// Package hierarchy provides the genre taxonomy index used for hierarchical tagging.
//
// The taxonomy is a rooted forest of genre nodes. A genre may appear under more
// than one parent, so every genre owns a set of ancestor paths rather than a
// single chain. The index is built once and never mutated afterward, which makes
// it safe to share across callers.
package hierarchy

import (
	"sort"
	"strings"
)

// Node is one genre in the taxonomy forest.
type Node struct {
	Name     string `json:"name"`
	Children []Node `json:"children,omitempty"`
}

// Index maps genre names to their ancestor paths and carries the set of
// excluded meta-genres. The zero value is not usable; call New.
type Index struct {
	known    map[string]bool
	paths    map[string][][]string // genre -> ancestor paths, each root-first, excluding the genre itself
	excluded map[string]bool
}

// New builds an index from a taxonomy forest and a list of excluded meta-genres.
// A nil or empty forest yields an empty index whose lookups all degrade to
// no-ops, never errors.
func New(forest []Node, excluded []string) *Index {
	ix := &Index{
		known:    make(map[string]bool),
		paths:    make(map[string][][]string),
		excluded: make(map[string]bool, len(excluded)),
	}
	for _, name := range excluded {
		ix.excluded[name] = true
	}

	seen := make(map[string]map[string]bool) // genre -> path key, dedupes multi-parent routes
	ix.walk(forest, nil, seen)
	return ix
}

// walk registers every node reached via the accumulated ancestor prefix.
// For a node reached via prefix [p1..pk], every non-empty prefix of that
// prefix is one ancestor path of the node, so ancestors at every depth along
// every route are captured.
func (ix *Index) walk(nodes []Node, prefix []string, seen map[string]map[string]bool) {
	for _, node := range nodes {
		ix.known[node.Name] = true

		if seen[node.Name] == nil {
			seen[node.Name] = make(map[string]bool)
		}
		for i := 1; i <= len(prefix); i++ {
			path := prefix[:i]
			key := strings.Join(path, "\x1f")
			if seen[node.Name][key] {
				continue
			}
			seen[node.Name][key] = true
			ix.paths[node.Name] = append(ix.paths[node.Name], append([]string(nil), path...))
		}

		if len(node.Children) > 0 {
			next := make([]string, 0, len(prefix)+1)
			next = append(next, prefix...)
			next = append(next, node.Name)
			ix.walk(node.Children, next, seen)
		}
	}
}

// AllParents returns the union of all names appearing in any ancestor path of
// the genre. The result is empty for unknown or top-level genres.
func (ix *Index) AllParents(genre string) map[string]bool {
	parents := make(map[string]bool)
	for _, path := range ix.paths[genre] {
		for _, name := range path {
			parents[name] = true
		}
	}
	return parents
}

// ExpandHierarchically expands a list of genres to include all their ancestors,
// minus excluded meta-genres. Genres unknown to the index pass through as-is,
// still subject to the exclusion check. The result is an unordered set;
// consumers sort before rendering.
func (ix *Index) ExpandHierarchically(genres []string) map[string]bool {
	expanded := make(map[string]bool)

	for _, genre := range genres {
		if !ix.known[genre] {
			// Not in the taxonomy - pass through for backward compatibility.
			if !ix.excluded[genre] {
				expanded[genre] = true
			}
			continue
		}
		if !ix.excluded[genre] {
			expanded[genre] = true
		}
		for parent := range ix.AllParents(genre) {
			if !ix.excluded[parent] {
				expanded[parent] = true
			}
		}
	}

	return expanded
}

// IsValid reports whether the genre exists in the taxonomy.
func (ix *Index) IsValid(genre string) bool {
	return ix.known[genre]
}

// IsExcluded reports whether the genre is an excluded meta-genre.
func (ix *Index) IsExcluded(genre string) bool {
	return ix.excluded[genre]
}

// Excluded returns the excluded meta-genre names, sorted.
func (ix *Index) Excluded() []string {
	names := make([]string, 0, len(ix.excluded))
	for name := range ix.excluded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns every full root-to-genre chain for the genre, including the
// genre itself as the final element. Used for diagnostics.
func (ix *Index) Paths(genre string) [][]string {
	stored := ix.paths[genre]
	if len(stored) == 0 {
		return nil
	}
	chains := make([][]string, 0, len(stored))
	for _, path := range stored {
		chain := make([]string, 0, len(path)+1)
		chain = append(chain, path...)
		chain = append(chain, genre)
		chains = append(chains, chain)
	}
	return chains
}

// Size returns the number of known genres.
func (ix *Index) Size() int {
	return len(ix.known)
}

// MultiParentCount returns how many genres are reachable via more than one path.
func (ix *Index) MultiParentCount() int {
	n := 0
	for _, paths := range ix.paths {
		if len(paths) > 1 {
			n++
		}
	}
	return n
}
