// Package match implements fuzzy cross-referencing of local releases against
// the scraped RYM catalog: string similarity, name variation generation, and
// the best-match scan.
package match

import (
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/unicode/norm"
)

// Similarity scores two strings in [0,1]. Both inputs are case-folded and
// NFKC-normalized first so differing code-point representations of visually
// identical text do not register as mismatches. The score is a normalized
// Levenshtein ratio: symmetric, and 1.0 for identical inputs.
func Similarity(a, b string) float64 {
	an := norm.NFKC.String(strings.ToLower(a))
	bn := norm.NFKC.String(strings.ToLower(b))

	if an == bn {
		return 1.0
	}

	score, err := edlib.StringsSimilarity(an, bn, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(score)
}
