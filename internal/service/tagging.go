// Package service orchestrates the tagging pipeline: scan the library, match
// each release against the catalog, resolve its tag set, and write the
// results to files and the store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/grantoesterling/rymtag-server/internal/catalog"
	"github.com/grantoesterling/rymtag-server/internal/config"
	domainerrors "github.com/grantoesterling/rymtag-server/internal/errors"
	"github.com/grantoesterling/rymtag-server/internal/hierarchy"
	"github.com/grantoesterling/rymtag-server/internal/id"
	"github.com/grantoesterling/rymtag-server/internal/library"
	"github.com/grantoesterling/rymtag-server/internal/match"
	"github.com/grantoesterling/rymtag-server/internal/store"
	"github.com/grantoesterling/rymtag-server/internal/tags"
	"github.com/grantoesterling/rymtag-server/internal/tagwriter"
	"github.com/grantoesterling/rymtag-server/internal/validation"
)

// Summary reports the outcome of a tagging run.
type Summary struct {
	RunID     string
	Processed int
	Updated   int
	Skipped   int
	Missing   int
	Errors    int
}

// LookupRequest asks for the resolved tags of a single release without
// touching any files.
type LookupRequest struct {
	Artist string `json:"artist" validate:"required"`
	Title  string `json:"title" validate:"required"`
}

// LookupResult is the outcome of a single-release lookup.
type LookupResult struct {
	MatchedArtist string
	MatchedTitle  string
	Score         float64
	Tags          tags.Resolved
}

// TaggingService runs the match-resolve-write pipeline.
type TaggingService struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	loader    *catalog.Loader
	matcher   *match.Matcher
	scanner   *library.Scanner
	writer    *tagwriter.Writer
	validator *validation.Validator

	hierarchyOnce sync.Once
	index         *hierarchy.Index
}

// NewTaggingService creates the service over its collaborators.
func NewTaggingService(
	cfg *config.Config,
	logger *slog.Logger,
	st *store.Store,
	loader *catalog.Loader,
	matcher *match.Matcher,
	scanner *library.Scanner,
	writer *tagwriter.Writer,
	validator *validation.Validator,
) *TaggingService {
	return &TaggingService{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		loader:    loader,
		matcher:   matcher,
		scanner:   scanner,
		writer:    writer,
		validator: validator,
	}
}

// hierarchyIndex loads the taxonomy on first use. Disabled or failed loads
// yield nil, which downstream resolution treats as "no groupings".
func (s *TaggingService) hierarchyIndex() *hierarchy.Index {
	s.hierarchyOnce.Do(func() {
		if !s.cfg.Hierarchy.Enabled {
			s.logger.Debug("hierarchical genre tagging disabled")
			return
		}
		s.index = hierarchy.Load(s.cfg.Hierarchy.TreeFile, s.cfg.Hierarchy.ExcludedFile, s.logger)
	})
	return s.index
}

func (s *TaggingService) limits() tags.Limits {
	return tags.Limits{
		MaxGenres:          s.cfg.Tags.MaxGenres,
		MaxSecondaryGenres: s.cfg.Tags.MaxSecondaryGenres,
		MaxDescriptors:     s.cfg.Tags.MaxDescriptors,
		MaxGroupings:       s.cfg.Tags.MaxGroupings,
	}
}

// Lookup matches a single release and returns its resolved tags without
// writing anything.
func (s *TaggingService) Lookup(ctx context.Context, req LookupRequest) (*LookupResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	cat := s.loader.Load(ctx)
	result := s.matcher.FindBestMatch(req.Artist, req.Title, cat)
	if result.Record == nil {
		return nil, domainerrors.NoMatchf("no catalog match for %s - %s", req.Artist, req.Title)
	}

	return &LookupResult{
		MatchedArtist: result.Record.ArtistName,
		MatchedTitle:  result.Record.ReleaseTitle,
		Score:         result.Score,
		Tags:          tags.Resolve(result.Record, s.hierarchyIndex(), s.limits()),
	}, nil
}

// TagLibrary scans root (the configured library path when root is empty),
// tags every release found, and returns a summary. Per-release failures are
// counted, logged, and do not abort the run.
func (s *TaggingService) TagLibrary(ctx context.Context, root string, force bool) (*Summary, error) {
	if root == "" {
		root = s.cfg.Library.Path
	}
	if root == "" {
		return nil, domainerrors.Validation("no library path configured")
	}

	releases, err := s.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	cat := s.loader.Load(ctx)

	summary := &Summary{RunID: id.MustGenerate("run")}
	log := s.logger.With("run_id", summary.RunID)
	log.Info("starting tagging run",
		"root", root,
		"releases", len(releases),
		"catalog_artists", len(cat),
		"force", force,
	)

	for i := range releases {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Processed++
		status, err := s.tagRelease(ctx, &releases[i], cat, force, summary.RunID)
		if err != nil {
			summary.Errors++
			log.Error("failed to tag release",
				"artist", releases[i].Artist,
				"title", releases[i].Title,
				"error", err,
			)
			continue
		}

		switch status {
		case statusUpdated:
			summary.Updated++
		case statusSkipped:
			summary.Skipped++
		case statusMissing:
			summary.Missing++
		}
	}

	log.Info("tagging run complete",
		"processed", summary.Processed,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"missing", summary.Missing,
		"errors", summary.Errors,
	)
	return summary, nil
}

// TagRelease tags the releases found in a single directory, for flows that
// process one album folder at a time.
func (s *TaggingService) TagRelease(ctx context.Context, dir string, force bool) (*Summary, error) {
	if dir == "" {
		return nil, domainerrors.Validation("no release directory given")
	}
	return s.TagLibrary(ctx, dir, force)
}

type tagStatus int

const (
	statusUpdated tagStatus = iota
	statusSkipped
	statusMissing
)

// tagRelease runs the pipeline for one release.
func (s *TaggingService) tagRelease(ctx context.Context, rel *library.Release, cat catalog.Catalog, force bool, runID string) (tagStatus, error) {
	result := s.matcher.FindBestMatch(rel.Artist, rel.Title, cat)
	if result.Record == nil {
		return s.handleMissing(ctx, rel)
	}

	resolved := tags.Resolve(result.Record, s.hierarchyIndex(), s.limits())
	if resolved.Empty() {
		s.logger.Warn("catalog matched but no tags available",
			"artist", rel.Artist,
			"title", rel.Title,
		)
		return statusSkipped, nil
	}

	if !force && s.unchanged(ctx, rel, resolved) {
		s.logger.Debug("tags already up to date",
			"artist", rel.Artist,
			"title", rel.Title,
		)
		return statusSkipped, nil
	}

	// Write files first so the store never claims tags that are not on disk.
	var writeErrs []error
	for _, f := range rel.Files {
		err := s.writer.Write(f.Path, resolved)
		if domainerrors.Is(err, domainerrors.ErrUnsupported) {
			s.logger.Debug("skipping file with unsupported format", "path", f.Path)
			continue
		}
		if err != nil {
			writeErrs = append(writeErrs, err)
		}
	}
	if len(writeErrs) > 0 {
		return 0, domainerrors.Wrapf(errors.Join(writeErrs...), domainerrors.CodeInternal,
			"failed to write tags for %d of %d files", len(writeErrs), len(rel.Files))
	}

	err := s.store.SaveReleaseTags(ctx, &store.ReleaseTags{
		Artist:          rel.Artist,
		Title:           rel.Title,
		MatchedArtist:   result.Record.ArtistName,
		MatchedTitle:    result.Record.ReleaseTitle,
		Score:           result.Score,
		Genres:          resolved.Genres,
		SecondaryGenres: resolved.SecondaryGenres,
		Descriptors:     resolved.Descriptors,
		Groupings:       resolved.Groupings,
		RunID:           runID,
	})
	if err != nil {
		return 0, err
	}

	// A fresh match supersedes any earlier missing-match record.
	if err := s.store.ClearMissingMatch(ctx, rel.Artist, rel.Title); err != nil {
		s.logger.Warn("failed to clear missing-match record", "error", err)
	}

	s.logger.Info("applied tags",
		"artist", rel.Artist,
		"title", rel.Title,
		"matched", result.Record.ArtistName+" - "+result.Record.ReleaseTitle,
		"score", result.Score,
		"genres", len(resolved.Genres),
		"groupings", len(resolved.Groupings),
	)
	return statusUpdated, nil
}

// handleMissing records a release with no catalog match.
func (s *TaggingService) handleMissing(ctx context.Context, rel *library.Release) (tagStatus, error) {
	s.logger.Warn("no catalog match", "artist", rel.Artist, "title", rel.Title)

	if s.cfg.Library.LogMissingMatches {
		var path string
		if len(rel.Files) > 0 {
			path = rel.Files[0].Path
		}
		if err := s.store.LogMissingMatch(ctx, rel.Artist, rel.Title, path); err != nil {
			return 0, err
		}
	}

	if s.cfg.Library.RequireMatch {
		return 0, domainerrors.NoMatchf("no catalog match for %s - %s", rel.Artist, rel.Title)
	}
	return statusMissing, nil
}

// unchanged reports whether the stored record already carries exactly the
// resolved tag set.
func (s *TaggingService) unchanged(ctx context.Context, rel *library.Release, resolved tags.Resolved) bool {
	stored, err := s.store.GetReleaseTags(ctx, rel.Artist, rel.Title)
	if err != nil {
		return false
	}
	return slices.Equal(stored.Genres, resolved.Genres) &&
		slices.Equal(stored.SecondaryGenres, resolved.SecondaryGenres) &&
		slices.Equal(stored.Descriptors, resolved.Descriptors) &&
		slices.Equal(stored.Groupings, resolved.Groupings)
}

// MissingMatches lists releases recorded without a catalog match.
func (s *TaggingService) MissingMatches(ctx context.Context) ([]*store.MissingMatch, error) {
	return s.store.ListMissingMatches(ctx)
}
