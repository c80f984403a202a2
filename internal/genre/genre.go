// Package genre resolves genre tags for artists through a rate-limited tag
// source, remembering every answer in a persistent cache.
package genre

import (
	"errors"
	"sort"
)

// MaxTags is the number of tags kept per artist.
const MaxTags = 5

var (
	// ErrCorruptCache means persisted cache state exists but can't be read.
	// A run must stop before fetching anything rather than overwrite it.
	ErrCorruptCache = errors.New("genre cache is corrupt")

	// ErrPersist means the updated cache could not be written.
	ErrPersist = errors.New("saving genre cache failed")
)

// Genres maps an artist name to its genre tags, most relevant first. A
// present key with an empty list means the artist was looked up and has no
// genres; an absent key means it was never looked up.
type Genres map[string][]string

// Clone returns a copy of g that shares no slices with it.
func (g Genres) Clone() Genres {
	out := make(Genres, len(g))
	for name, tags := range g {
		out[name] = append([]string{}, tags...)
	}
	return out
}

// Store loads and saves the whole genre cache.
type Store interface {
	// Load returns the persisted cache, or an empty one if nothing has been
	// saved yet.
	Load() (Genres, error)

	// Save replaces the persisted cache with g.
	Save(g Genres) error
}

// Tag is a genre tag with the relevance count reported by the tag source.
type Tag struct {
	Name  string
	Count int
}

// TopTags returns the names of the n most relevant tags. Tags with equal
// counts keep the source's order. The result is never nil.
func TopTags(tags []Tag, n int) []string {
	sorted := append([]Tag{}, tags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	names := make([]string, 0, len(sorted))
	for _, t := range sorted {
		names = append(names, t.Name)
	}
	return names
}
