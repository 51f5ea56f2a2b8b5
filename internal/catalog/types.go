// Package catalog provides access to the scraped RYM release catalog: its wire
// types, the remote fetch client, and the on-disk snapshot cache.
package catalog

// Record is one release entry scraped from RYM. Field names match the upstream
// document.
type Record struct {
	ArtistName      string   `json:"artistName"`
	ReleaseTitle    string   `json:"releaseTitle"`
	Genres          []string `json:"genres,omitempty"`
	SecondaryGenres []string `json:"secondaryGenres,omitempty"`
	Descriptors     []string `json:"descriptors,omitempty"`
}

// Catalog is the full scraped dataset: opaque artist key -> opaque release
// key -> record. The keys carry no meaning here; matching scans all values.
type Catalog map[string]map[string]Record

// Releases returns the total number of records across all artists.
func (c Catalog) Releases() int {
	n := 0
	for _, releases := range c {
		n += len(releases)
	}
	return n
}
