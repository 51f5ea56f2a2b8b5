package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testForest mirrors a slice of the RYM taxonomy with one multi-parent genre.
func testForest() []Node {
	return []Node{
		{
			Name: "Electronic",
			Children: []Node{
				{
					Name: "Ambient",
					Children: []Node{
						{Name: "Black Ambient"},
						{Name: "Dark Ambient"},
					},
				},
				{Name: "Techno"},
			},
		},
		{
			Name: "Metal",
			Children: []Node{
				{
					Name: "Black Metal",
					Children: []Node{
						{Name: "Black Ambient"}, // also under Electronic > Ambient
					},
				},
			},
		},
		{
			Name: "Regional Music",
			Children: []Node{
				{Name: "Gagaku"},
			},
		},
	}
}

func newTestIndex() *Index {
	return New(testForest(), []string{"Regional Music"})
}

func TestAllParents_DeepGenre(t *testing.T) {
	ix := newTestIndex()

	parents := ix.AllParents("Dark Ambient")
	assert.Equal(t, map[string]bool{"Electronic": true, "Ambient": true}, parents)
}

func TestAllParents_TopLevel(t *testing.T) {
	ix := newTestIndex()
	assert.Empty(t, ix.AllParents("Electronic"))
}

func TestAllParents_Unknown(t *testing.T) {
	ix := newTestIndex()
	assert.Empty(t, ix.AllParents("Vaporwave"))
}

func TestAllParents_MultiParent(t *testing.T) {
	ix := newTestIndex()

	// Black Ambient is reachable via Electronic > Ambient and Metal > Black Metal,
	// so its parents are the union over both routes.
	parents := ix.AllParents("Black Ambient")
	assert.Equal(t, map[string]bool{
		"Electronic":  true,
		"Ambient":     true,
		"Metal":       true,
		"Black Metal": true,
	}, parents)

	assert.GreaterOrEqual(t, len(ix.Paths("Black Ambient")), 2)
}

func TestExpandHierarchically_IncludesAllAncestors(t *testing.T) {
	ix := New([]Node{
		{Name: "Electronic", Children: []Node{
			{Name: "Ambient", Children: []Node{
				{Name: "Black Ambient"},
			}},
		}},
	}, []string{"Regional Music"})

	expanded := ix.ExpandHierarchically([]string{"Black Ambient"})
	assert.Equal(t, map[string]bool{
		"Black Ambient": true,
		"Ambient":       true,
		"Electronic":    true,
	}, expanded)
}

func TestExpandHierarchically_ExcludedGenreDropped(t *testing.T) {
	ix := newTestIndex()

	// Gagaku sits under the excluded Regional Music meta-genre: the genre itself
	// survives but the excluded ancestor never appears.
	expanded := ix.ExpandHierarchically([]string{"Gagaku"})
	assert.True(t, expanded["Gagaku"])
	assert.False(t, expanded["Regional Music"])
}

func TestExpandHierarchically_ExcludedInputKeepsAncestors(t *testing.T) {
	forest := []Node{
		{Name: "Electronic", Children: []Node{
			{Name: "Downtempo"},
		}},
	}
	ix := New(forest, []string{"Downtempo"})

	expanded := ix.ExpandHierarchically([]string{"Downtempo"})
	assert.False(t, expanded["Downtempo"])
	assert.True(t, expanded["Electronic"])
}

func TestExpandHierarchically_UnknownPassesThrough(t *testing.T) {
	ix := newTestIndex()

	expanded := ix.ExpandHierarchically([]string{"Chiptune"})
	assert.Equal(t, map[string]bool{"Chiptune": true}, expanded)
}

func TestExpandHierarchically_UnknownExcludedDropped(t *testing.T) {
	ix := New(nil, []string{"Music"})

	expanded := ix.ExpandHierarchically([]string{"Music"})
	assert.Empty(t, expanded)
}

func TestExpandHierarchically_AncestorsNeverExcluded(t *testing.T) {
	ix := newTestIndex()

	for _, genre := range []string{"Black Ambient", "Dark Ambient", "Gagaku", "Techno"} {
		for name := range ix.ExpandHierarchically([]string{genre}) {
			assert.False(t, ix.IsExcluded(name), "excluded genre %q leaked into expansion of %q", name, genre)
		}
	}
}

func TestIsValidIsExcluded(t *testing.T) {
	ix := newTestIndex()

	assert.True(t, ix.IsValid("Techno"))
	assert.True(t, ix.IsValid("Regional Music"))
	assert.False(t, ix.IsValid("Chiptune"))

	assert.True(t, ix.IsExcluded("Regional Music"))
	assert.False(t, ix.IsExcluded("Techno"))
}

func TestEmptyIndex_Degrades(t *testing.T) {
	ix := New(nil, nil)

	assert.Equal(t, 0, ix.Size())
	assert.Empty(t, ix.AllParents("anything"))
	assert.False(t, ix.IsValid("anything"))
	assert.False(t, ix.IsExcluded("anything"))
	assert.Equal(t, map[string]bool{"anything": true}, ix.ExpandHierarchically([]string{"anything"}))
}

func TestPaths(t *testing.T) {
	ix := newTestIndex()

	paths := ix.Paths("Dark Ambient")
	require.Len(t, paths, 2)
	assert.Contains(t, paths, []string{"Electronic", "Dark Ambient"})
	assert.Contains(t, paths, []string{"Electronic", "Ambient", "Dark Ambient"})

	assert.Nil(t, ix.Paths("Electronic"))
}

func TestMultiParentCount(t *testing.T) {
	ix := newTestIndex()
	assert.GreaterOrEqual(t, ix.MultiParentCount(), 1)
}
