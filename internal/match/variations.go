package match

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Catalog naming is inconsistent: bracketed native-script aliases, stray
// parentheticals, punctuation variants, volume prefixes. Variation generation
// widens each side of a comparison so one cheap exact-ish form can line up.
var (
	bracketSegment = regexp.MustCompile(`\s*\[[^\]]*\]\s*`)
	parenSegment   = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	bracketContent = regexp.MustCompile(`\[([^\]]*)\]`)
	parenContent   = regexp.MustCompile(`\(([^)]*)\)`)

	ethiopianColon = regexp.MustCompile(`፡`)
	colonSpacing   = regexp.MustCompile(`\s*:\s*`)
	volumePrefix   = regexp.MustCompile(`\b\d+\s*:\s*`)
	punctuation    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// variationSet accumulates variants in first-occurrence order, trimming
// whitespace and dropping empties and duplicates.
type variationSet struct {
	seen  map[string]bool
	order []string
}

func newVariationSet() *variationSet {
	return &variationSet{seen: make(map[string]bool)}
}

// add records the variant. addNormalized also records its composed Unicode
// form when composition changes the string.
func (vs *variationSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" || vs.seen[v] {
		return
	}
	vs.seen[v] = true
	vs.order = append(vs.order, v)
}

func (vs *variationSet) addNormalized(v string) {
	vs.add(v)
	if composed := norm.NFKC.String(v); composed != v {
		vs.add(composed)
	}
}

// ArtistVariations generates matching candidates for an artist name: the
// original, its composed Unicode form, bracket/parenthetical segments removed,
// the first bracketed or parenthesized content as an alternate name (handles
// "Primary Name [Native-Script Alias]"), and a decomposed Unicode variant.
func ArtistVariations(name string) []string {
	vs := newVariationSet()
	vs.addNormalized(name)

	if cleaned := bracketSegment.ReplaceAllString(name, " "); cleaned != name {
		vs.addNormalized(cleaned)
	}
	if cleaned := parenSegment.ReplaceAllString(name, " "); cleaned != name {
		vs.addNormalized(cleaned)
	}

	if m := bracketContent.FindStringSubmatch(name); m != nil {
		vs.addNormalized(m[1])
	}
	if m := parenContent.FindStringSubmatch(name); m != nil {
		vs.addNormalized(m[1])
	}

	addDecomposed(vs, name)
	return vs.order
}

// TitleVariations generates matching candidates for a release title. On top of
// the artist rules it normalizes punctuation (non-ASCII colons, colon spacing,
// whitespace runs), strips volume/number prefixes ("Series 14: Title"), and
// adds a minimal-punctuation form.
func TitleVariations(title string) []string {
	vs := newVariationSet()
	vs.addNormalized(title)

	if cleaned := parenSegment.ReplaceAllString(title, " "); cleaned != title {
		vs.addNormalized(cleaned)
	}
	if cleaned := bracketSegment.ReplaceAllString(title, " "); cleaned != title {
		vs.addNormalized(cleaned)
	}

	if m := bracketContent.FindStringSubmatch(title); m != nil {
		vs.addNormalized(m[1])
	}

	punct := ethiopianColon.ReplaceAllString(title, ":")
	punct = colonSpacing.ReplaceAllString(punct, ": ")
	punct = strings.TrimSpace(whitespaceRun.ReplaceAllString(punct, " "))
	if punct != title {
		vs.addNormalized(punct)
	}

	if unvolumed := volumePrefix.ReplaceAllString(title, ": "); unvolumed != title {
		vs.addNormalized(unvolumed)
	}

	minimal := punctuation.ReplaceAllString(title, " ")
	minimal = strings.TrimSpace(whitespaceRun.ReplaceAllString(minimal, " "))
	if minimal != "" && minimal != title {
		vs.addNormalized(minimal)
	}

	addDecomposed(vs, title)
	return vs.order
}

// addDecomposed includes the NFD form only when it differs from both the
// original and the composed form, covering text that mixes precomposed and
// combining-character representations.
func addDecomposed(vs *variationSet, s string) {
	decomposed := norm.NFD.String(s)
	if decomposed != s && decomposed != norm.NFKC.String(s) {
		vs.add(decomposed)
	}
}
