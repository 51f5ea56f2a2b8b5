package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertCleanVariations(t *testing.T, vars []string) {
	t.Helper()
	seen := make(map[string]bool)
	for _, v := range vars {
		assert.Equal(t, strings.TrimSpace(v), v, "variation not trimmed: %q", v)
		assert.NotEmpty(t, v)
		assert.False(t, seen[v], "duplicate variation: %q", v)
		seen[v] = true
	}
}

func TestArtistVariations_Plain(t *testing.T) {
	vars := ArtistVariations("Burial")
	assert.Equal(t, []string{"Burial"}, vars)
}

func TestArtistVariations_BracketedAlias(t *testing.T) {
	vars := ArtistVariations("Kyoko Takada [高田恭子]")

	assert.Contains(t, vars, "Kyoko Takada [高田恭子]")
	assert.Contains(t, vars, "Kyoko Takada")
	assert.Contains(t, vars, "高田恭子")
	assert.Equal(t, "Kyoko Takada [高田恭子]", vars[0], "original comes first")
	assertCleanVariations(t, vars)
}

func TestArtistVariations_Parenthesized(t *testing.T) {
	vars := ArtistVariations("Mirror (GR)")

	assert.Contains(t, vars, "Mirror")
	assert.Contains(t, vars, "GR")
	assertCleanVariations(t, vars)
}

func TestArtistVariations_Decomposed(t *testing.T) {
	// Precomposed input gains a decomposed variant.
	vars := ArtistVariations("Sigur Rós")
	assert.Contains(t, vars, "Sigur Rós")
	assertCleanVariations(t, vars)
}

func TestTitleVariations_ParenRemoval(t *testing.T) {
	vars := TitleVariations("Title (Remaster)")

	assert.Contains(t, vars, "Title (Remaster)")
	assert.Contains(t, vars, "Title")
	assertCleanVariations(t, vars)
}

func TestTitleVariations_BracketRemovalAndContent(t *testing.T) {
	vars := TitleVariations("Album [Deluxe Edition]")

	assert.Contains(t, vars, "Album")
	assert.Contains(t, vars, "Deluxe Edition")
	assertCleanVariations(t, vars)
}

func TestTitleVariations_EthiopianColon(t *testing.T) {
	vars := TitleVariations("Series፡Part Two")
	assert.Contains(t, vars, "Series: Part Two")
	assertCleanVariations(t, vars)
}

func TestTitleVariations_ColonSpacing(t *testing.T) {
	vars := TitleVariations("Series :  Part Two")
	assert.Contains(t, vars, "Series: Part Two")
	assertCleanVariations(t, vars)
}

func TestTitleVariations_VolumePrefix(t *testing.T) {
	vars := TitleVariations("Series 14: Title")
	assert.Contains(t, vars, "Series : Title")
	assertCleanVariations(t, vars)
}

func TestTitleVariations_MinimalPunctuation(t *testing.T) {
	vars := TitleVariations("R+7=Loops!")
	assert.Contains(t, vars, "R 7 Loops")
	assertCleanVariations(t, vars)
}

func TestVariations_NeverEmptyOrDuplicate(t *testing.T) {
	inputs := []string{
		"Artist [Alt Name]",
		"   spaced   ",
		"()",
		"[]",
		"Plain",
		"A (B) [C]",
		"Title: Sub: Title",
	}
	for _, in := range inputs {
		assertCleanVariations(t, ArtistVariations(in))
		assertCleanVariations(t, TitleVariations(in))
	}
}
