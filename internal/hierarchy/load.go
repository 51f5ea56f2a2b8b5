package hierarchy

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// treeDocument is the on-disk shape of the taxonomy file.
type treeDocument struct {
	GenreHierarchy []Node `json:"genreHierarchy"`
}

// excludedDocument is the on-disk shape of the excluded meta-genres file.
type excludedDocument struct {
	ExcludedMetaGenres []string `json:"excluded_meta_genres"`
	Description        string   `json:"description,omitempty"`
}

// defaultExcluded seeds the exclusion file on first run so the set is stable
// across runs and users have something concrete to edit.
var defaultExcluded = excludedDocument{
	ExcludedMetaGenres: []string{"Regional Music"},
	Description: "Meta-genres that are too broad to be useful as tags. " +
		"These will be excluded from hierarchical expansion.",
}

// Load reads the taxonomy and exclusion documents and builds an index.
//
// Failures degrade rather than abort: a missing or malformed taxonomy yields an
// empty index so every dependent operation becomes a no-op. A missing exclusion
// document is materialized with the default contents before reading.
func Load(treePath, excludedPath string, log *slog.Logger) *Index {
	excluded := loadExcluded(excludedPath, log)

	data, err := os.ReadFile(treePath)
	if err != nil {
		log.Warn("genre tree file not readable, hierarchy disabled",
			"path", treePath,
			"error", err,
		)
		return New(nil, excluded)
	}

	var doc treeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("genre tree file malformed, hierarchy disabled",
			"path", treePath,
			"error", err,
		)
		return New(nil, excluded)
	}

	ix := New(doc.GenreHierarchy, excluded)
	log.Info("loaded genre hierarchy",
		"genres", ix.Size(),
		"multi_parent", ix.MultiParentCount(),
		"excluded", len(excluded),
	)
	logTaxonomyDetail(ix, log)
	return ix
}

// logTaxonomyDetail debug-logs the exclusion set and the full ancestor chains
// of every multi-parent genre, the usual suspects when a grouping comes out
// wrong.
func logTaxonomyDetail(ix *Index, log *slog.Logger) {
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	log.Debug("excluded meta-genres", "genres", ix.Excluded())
	for genre, paths := range ix.paths {
		if len(paths) < 2 {
			continue
		}
		routes := make([]string, 0, len(paths))
		for _, chain := range ix.Paths(genre) {
			routes = append(routes, strings.Join(chain, " > "))
		}
		log.Debug("multi-parent genre", "genre", genre, "routes", routes)
	}
}

// loadExcluded reads the excluded meta-genres document, creating the default
// document first if none exists. Read failures degrade to an empty set.
func loadExcluded(path string, log *slog.Logger) []string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaultExcluded(path); err != nil {
			log.Warn("could not create default excluded genres file",
				"path", path,
				"error", err,
			)
		} else {
			log.Info("created default excluded genres file", "path", path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("excluded genres file not readable", "path", path, "error", err)
		return nil
	}

	var doc excludedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("excluded genres file malformed", "path", path, "error", err)
		return nil
	}

	return doc.ExcludedMetaGenres
}

func writeDefaultExcluded(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(defaultExcluded, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
