// Package ranking orders aggregated listening statistics and rolls artist
// statistics up into genres.
package ranking

import (
	"sort"
	"strings"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/stats"
)

// Row is one ranked entity. Rank starts at 1.
type Row[T any] struct {
	Rank int
	Item T
}

// Rank sorts items by key, highest first. Items with equal keys keep their
// input order.
func Rank[T any](items []T, key func(T) int64) []Row[T] {
	sorted := append([]T{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	rows := make([]Row[T], len(sorted))
	for i, item := range sorted {
		rows[i] = Row[T]{Rank: i + 1, Item: item}
	}
	return rows
}

// Top returns at most the first n rows. A non-positive n returns all rows.
func Top[T any](rows []Row[T], n int) []Row[T] {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// Tracks ranks tracks by play count.
func Tracks(t *stats.Tracks) []Row[*stats.TrackStat] {
	return Rank(t.All(), func(s *stats.TrackStat) int64 { return s.PlayCount })
}

// Artists ranks artists by play count.
func Artists(a *stats.Artists) []Row[*stats.ArtistStat] {
	return Rank(a.All(), func(s *stats.ArtistStat) int64 { return s.PlayCount })
}

// ArtistNames returns the artist names of rows, in rank order.
func ArtistNames(rows []Row[*stats.ArtistStat]) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Item.Name
	}
	return names
}

// TrackURIs returns the track URIs of rows, in rank order.
func TrackURIs(rows []Row[*stats.TrackStat]) []string {
	uris := make([]string, len(rows))
	for i, r := range rows {
		uris[i] = r.Item.URI
	}
	return uris
}

// GenreStat is the listening attributed to one genre tag.
type GenreStat struct {
	Name          string
	PlayCount     int64
	TotalMsPlayed int64
}

// Genres credits every artist's full totals to each of its genres and ranks
// the genres by listening time. Artists without genres contribute nothing.
func Genres(a *stats.Artists, genres genre.Genres) []Row[*GenreStat] {
	byName := make(map[string]*GenreStat)
	var order []*GenreStat
	for _, artist := range a.All() {
		for _, tag := range genres[artist.Name] {
			g, ok := byName[tag]
			if !ok {
				g = &GenreStat{Name: tag}
				byName[tag] = g
				order = append(order, g)
			}
			g.PlayCount += artist.PlayCount
			g.TotalMsPlayed += artist.TotalMsPlayed
		}
	}
	return Rank(order, func(g *GenreStat) int64 { return g.TotalMsPlayed })
}

// GenreTracks ranks the tracks whose artist has a genre containing
// genreName, ignoring case. Artists listed in exclude are left out even when
// tagged with the genre.
func GenreTracks(t *stats.Tracks, genres genre.Genres, genreName string, exclude []string) []Row[*stats.TrackStat] {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}
	want := strings.ToLower(genreName)

	matches := make(map[string]bool)
	for artist, tags := range genres {
		if excluded[artist] {
			continue
		}
		for _, tag := range tags {
			if strings.Contains(strings.ToLower(tag), want) {
				matches[artist] = true
				break
			}
		}
	}

	var selected []*stats.TrackStat
	for _, track := range t.All() {
		if matches[track.ArtistName] {
			selected = append(selected, track)
		}
	}
	return Rank(selected, func(s *stats.TrackStat) int64 { return s.PlayCount })
}
