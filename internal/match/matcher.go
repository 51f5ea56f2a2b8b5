package match

import (
	"log/slog"

	"github.com/grantoesterling/rymtag-server/internal/catalog"
)

// Options configures the matcher. Zero values are not useful; use the
// configured defaults from internal/config.
type Options struct {
	// Threshold is the minimum combined artist+title score for a primary match.
	Threshold float64
	// FlexibleArtist admits near-exact title matches whose artist score fails
	// the threshold, which happens with aliases and collaboration credits.
	FlexibleArtist bool
	// TitleThreshold is the minimum title score for the flexible path.
	TitleThreshold float64
}

// Result is the outcome of a catalog scan. Record is nil when nothing reached
// the primary or flexible bar.
type Result struct {
	Record *catalog.Record
	Score  float64
}

// Matcher scores catalog records against a queried release.
type Matcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a matcher.
func New(opts Options, logger *slog.Logger) *Matcher {
	return &Matcher{opts: opts, logger: logger}
}

// FindBestMatch scans every record in the catalog and returns the one with the
// highest combined artist+title similarity, subject to the acceptance rules.
// The scan is exhaustive; cost is proportional to catalog size times the
// square of the variation count.
//
// Catalog map iteration order is unspecified, so exact score ties are broken
// lexicographically by (artistName, releaseTitle) to keep results
// deterministic.
func (m *Matcher) FindBestMatch(artist, title string, cat catalog.Catalog) Result {
	artistVars := ArtistVariations(artist)
	titleVars := TitleVariations(title)

	var (
		best      *catalog.Record
		bestKey   string
		bestScore float64
	)

	for _, releases := range cat {
		for _, rec := range releases {
			if rec.ArtistName == "" || rec.ReleaseTitle == "" {
				continue
			}

			artistScore := bestPairScore(artistVars, ArtistVariations(rec.ArtistName))
			titleScore := bestPairScore(titleVars, TitleVariations(rec.ReleaseTitle))
			combined := (artistScore + titleScore) / 2

			if titleScore > 0.9 && artistScore < 0.3 {
				m.logger.Debug("high title match with low artist match",
					"query_artist", artist,
					"record_artist", rec.ArtistName,
					"query_title", title,
					"record_title", rec.ReleaseTitle,
					"artist_score", artistScore,
					"title_score", titleScore,
				)
			}

			switch {
			case combined >= m.opts.Threshold:
				// Primary acceptance.
				if better(combined, rec, bestScore, best, bestKey) {
					best, bestKey, bestScore = cloneRecord(rec), tieKey(rec), combined
					m.logger.Debug("match candidate",
						"artist", rec.ArtistName,
						"title", rec.ReleaseTitle,
						"score", combined,
					)
				}
			case m.opts.FlexibleArtist && titleScore >= m.opts.TitleThreshold && artistScore < m.opts.Threshold:
				// Flexible acceptance: likely alias or collaboration credit.
				// Competes in the same best-score race, no separate tier.
				m.logger.Info("flexible matching: high title similarity",
					"query_title", title,
					"record_title", rec.ReleaseTitle,
					"title_score", titleScore,
					"artist_score", artistScore,
				)
				if better(combined, rec, bestScore, best, bestKey) {
					best, bestKey, bestScore = cloneRecord(rec), tieKey(rec), combined
					m.logger.Info("adopted via flexible artist matching",
						"artist", rec.ArtistName,
						"title", rec.ReleaseTitle,
						"score", combined,
					)
				}
			}
		}
	}

	if best != nil {
		m.logger.Debug("best match",
			"query", artist+" - "+title,
			"artist", best.ArtistName,
			"title", best.ReleaseTitle,
			"score", bestScore,
		)
	} else {
		m.logger.Debug("no match above threshold",
			"query", artist+" - "+title,
			"threshold", m.opts.Threshold,
		)
	}

	return Result{Record: best, Score: bestScore}
}

// bestPairScore returns the maximum similarity over the cross-product of two
// variation lists.
func bestPairScore(as, bs []string) float64 {
	best := 0.0
	for _, a := range as {
		for _, b := range bs {
			if s := Similarity(a, b); s > best {
				best = s
			}
		}
	}
	return best
}

// better reports whether a candidate at the given score should replace the
// current best: strictly higher score wins, equal score goes to the smaller
// tie key.
func better(score float64, rec catalog.Record, bestScore float64, best *catalog.Record, bestKey string) bool {
	if best == nil || score > bestScore {
		return true
	}
	return score == bestScore && tieKey(rec) < bestKey
}

// tieKey orders records for deterministic tie-breaking.
func tieKey(rec catalog.Record) string {
	return rec.ArtistName + "\x00" + rec.ReleaseTitle
}

func cloneRecord(rec catalog.Record) *catalog.Record {
	clone := rec
	return &clone
}
