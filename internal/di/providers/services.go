package providers

import (
	"github.com/samber/do/v2"

	"github.com/grantoesterling/rymtag-server/internal/catalog"
	"github.com/grantoesterling/rymtag-server/internal/config"
	"github.com/grantoesterling/rymtag-server/internal/library"
	"github.com/grantoesterling/rymtag-server/internal/logger"
	"github.com/grantoesterling/rymtag-server/internal/match"
	"github.com/grantoesterling/rymtag-server/internal/service"
	"github.com/grantoesterling/rymtag-server/internal/tagwriter"
	"github.com/grantoesterling/rymtag-server/internal/validation"
)

// ProvideMatcher provides the release matcher.
func ProvideMatcher(i do.Injector) (*match.Matcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return match.New(match.Options{
		Threshold:      cfg.Match.SimilarityThreshold,
		FlexibleArtist: cfg.Match.FlexibleArtistMatching,
		TitleThreshold: cfg.Match.TitleMatchThreshold,
	}, log.Logger), nil
}

// ProvideScanner provides the library scanner.
func ProvideScanner(i do.Injector) (*library.Scanner, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return library.NewScanner(log.Logger), nil
}

// ProvideTagWriter provides the audio file tag writer.
func ProvideTagWriter(i do.Injector) (*tagwriter.Writer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return tagwriter.New(log.Logger), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideTaggingService provides the tagging orchestrator.
func ProvideTaggingService(i do.Injector) (*service.TaggingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	loader := do.MustInvoke[*catalog.Loader](i)
	matcher := do.MustInvoke[*match.Matcher](i)
	scanner := do.MustInvoke[*library.Scanner](i)
	writer := do.MustInvoke[*tagwriter.Writer](i)
	validator := do.MustInvoke[*validation.Validator](i)

	return service.NewTaggingService(
		cfg, log.Logger, storeHandle.Store, loader, matcher, scanner, writer, validator,
	), nil
}
