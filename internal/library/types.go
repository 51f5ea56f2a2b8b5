// Package library discovers releases in a local music library by walking
// the filesystem and reading embedded metadata tags.
package library

import "fmt"

// File is a single audio file with the metadata needed for grouping.
type File struct {
	Path        string
	Format      string // lowercase extension without the dot, e.g. "flac"
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	Track       int
}

// Release is a group of files sharing an artist and album title.
type Release struct {
	// Artist is the album artist when present, otherwise the track artist.
	Artist string
	// Title is the album title.
	Title string
	Files []File
}

// String returns a formatted representation of the release.
func (r *Release) String() string {
	return fmt.Sprintf("%s - %s (%d files)", r.Artist, r.Title, len(r.Files))
}

// groupKey identifies a release within a scan.
func (r *Release) groupKey() string {
	return r.Artist + "\x1f" + r.Title
}
