package hierarchy

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullDocuments(t *testing.T) {
	dir := t.TempDir()
	tree := writeFile(t, dir, "rym-genre-tree.json", `{
		"genreHierarchy": [
			{"name": "Electronic", "children": [
				{"name": "Ambient", "children": [{"name": "Black Ambient"}]}
			]}
		]
	}`)
	excluded := writeFile(t, dir, "excluded-meta-genres.json", `{
		"excluded_meta_genres": ["Regional Music"]
	}`)

	ix := Load(tree, excluded, testLogger())

	assert.Equal(t, 3, ix.Size())
	assert.Equal(t, map[string]bool{"Electronic": true, "Ambient": true}, ix.AllParents("Black Ambient"))
	assert.True(t, ix.IsExcluded("Regional Music"))
}

func TestLoad_MissingTreeDegradesToEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	excluded := writeFile(t, dir, "excluded.json", `{"excluded_meta_genres": ["Regional Music"]}`)

	ix := Load(filepath.Join(dir, "nope.json"), excluded, testLogger())

	assert.Equal(t, 0, ix.Size())
	// Exclusions still apply even without a taxonomy.
	assert.True(t, ix.IsExcluded("Regional Music"))
}

func TestLoad_MalformedTreeDegradesToEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	tree := writeFile(t, dir, "tree.json", `{"genreHierarchy": [{"name": `)
	excluded := writeFile(t, dir, "excluded.json", `{"excluded_meta_genres": []}`)

	ix := Load(tree, excluded, testLogger())
	assert.Equal(t, 0, ix.Size())
}

func TestLoad_MaterializesDefaultExclusions(t *testing.T) {
	dir := t.TempDir()
	tree := writeFile(t, dir, "tree.json", `{"genreHierarchy": []}`)
	excludedPath := filepath.Join(dir, "data", "excluded-meta-genres.json")

	ix := Load(tree, excludedPath, testLogger())

	// Default document was written and its seed exclusion applied.
	data, err := os.ReadFile(excludedPath)
	require.NoError(t, err)

	var doc excludedDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"Regional Music"}, doc.ExcludedMetaGenres)
	assert.True(t, ix.IsExcluded("Regional Music"))
}

func TestLoad_DebugLogsMultiParentRoutes(t *testing.T) {
	dir := t.TempDir()
	tree := writeFile(t, dir, "tree.json", `{
		"genreHierarchy": [
			{"name": "Electronic", "children": [{"name": "Ambient", "children": [{"name": "Black Ambient"}]}]},
			{"name": "Metal", "children": [{"name": "Black Ambient"}]}
		]
	}`)
	excluded := writeFile(t, dir, "excluded.json", `{"excluded_meta_genres": ["Regional Music"]}`)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ix := Load(tree, excluded, log)

	require.GreaterOrEqual(t, ix.MultiParentCount(), 1)
	out := buf.String()
	assert.Contains(t, out, "multi-parent genre")
	assert.Contains(t, out, "Electronic > Ambient > Black Ambient")
	assert.Contains(t, out, "excluded meta-genres")
	assert.Contains(t, out, "Regional Music")
}

func TestLoad_MalformedExclusionsDegradeToEmptySet(t *testing.T) {
	dir := t.TempDir()
	tree := writeFile(t, dir, "tree.json", `{"genreHierarchy": [{"name": "Jazz"}]}`)
	excluded := writeFile(t, dir, "excluded.json", `not json`)

	ix := Load(tree, excluded, testLogger())

	assert.True(t, ix.IsValid("Jazz"))
	assert.Empty(t, ix.Excluded())
}
