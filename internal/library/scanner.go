package library

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	domainerrors "github.com/grantoesterling/rymtag-server/internal/errors"
)

// supportedExtensions are the audio formats we can read metadata from.
var supportedExtensions = map[string]bool{
	".flac": true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
}

// Scanner traverses a library directory and groups audio files into releases.
type Scanner struct {
	logger *slog.Logger
}

// NewScanner creates a new scanner.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{
		logger: logger,
	}
}

// Scan walks root recursively and returns the releases found, sorted by
// artist then title. Files that cannot be read are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Release, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domainerrors.NotFoundf("library path %s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, domainerrors.Validationf("library path %s is not a directory", root)
	}

	groups := make(map[string]*Release)

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		// Check context cancellation.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Handle walk errors.
		if err != nil {
			s.logger.Error("walk error", "path", path, "error", err)
			// Continue walking despite errors.
			return nil
		}

		// Skip hidden files/directories.
		if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtensions[ext] {
			return nil
		}

		file, err := s.readFile(path, ext)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}

		s.addToGroup(groups, file)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sortedReleases(groups), nil
}

// ScanRelease reads a single release directory and returns the releases found
// there. The walk is the same recursive one Scan uses, so disc subdirectories
// (CD1/CD2) group into their parent release by tag, not by directory.
func (s *Scanner) ScanRelease(ctx context.Context, dir string) ([]Release, error) {
	return s.Scan(ctx, dir)
}

// readFile opens an audio file and extracts the tags needed for grouping.
func (s *Scanner) readFile(path, ext string) (File, error) {
	f, err := os.Open(path) //#nosec G304 -- Paths come from walking the configured library root
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return File{}, err
	}

	title := meta.Title()
	if title == "" {
		title = filepath.Base(path)
	}

	track, _ := meta.Track()

	return File{
		Path:        path,
		Format:      strings.TrimPrefix(ext, "."),
		Artist:      strings.TrimSpace(meta.Artist()),
		AlbumArtist: strings.TrimSpace(meta.AlbumArtist()),
		Album:       strings.TrimSpace(meta.Album()),
		Title:       title,
		Track:       track,
	}, nil
}

// addToGroup places a file into its release group. Files without enough
// metadata to identify a release are logged and dropped.
func (s *Scanner) addToGroup(groups map[string]*Release, file File) {
	artist := file.AlbumArtist
	if artist == "" {
		artist = file.Artist
	}
	if artist == "" || file.Album == "" {
		s.logger.Warn("file missing artist or album tags", "path", file.Path)
		return
	}

	rel := &Release{Artist: artist, Title: file.Album}
	key := rel.groupKey()

	existing, ok := groups[key]
	if !ok {
		groups[key] = rel
		existing = rel
	}
	existing.Files = append(existing.Files, file)
}

// sortedReleases flattens the group map into a deterministic slice.
func sortedReleases(groups map[string]*Release) []Release {
	releases := make([]Release, 0, len(groups))
	for _, rel := range groups {
		sort.Slice(rel.Files, func(i, j int) bool {
			if rel.Files[i].Track != rel.Files[j].Track {
				return rel.Files[i].Track < rel.Files[j].Track
			}
			return rel.Files[i].Path < rel.Files[j].Path
		})
		releases = append(releases, *rel)
	}
	sort.Slice(releases, func(i, j int) bool {
		if releases[i].Artist != releases[j].Artist {
			return releases[i].Artist < releases[j].Artist
		}
		return releases[i].Title < releases[j].Title
	})
	return releases
}
