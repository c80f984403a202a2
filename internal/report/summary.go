package report

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the YAML form of a run's results.
type Summary struct {
	Metadata   Metadata        `yaml:"profile_metadata"`
	TopTracks  []TrackSummary  `yaml:"top_tracks"`
	TopArtists []ArtistSummary `yaml:"top_artists"`
	TopGenres  []GenreSummary  `yaml:"top_genres"`
}

type Metadata struct {
	GeneratedDate string  `yaml:"generated_date"`
	TotalListens  int64   `yaml:"total_listens"`
	TotalTracks   int     `yaml:"total_tracks"`
	TotalArtists  int     `yaml:"total_artists"`
	HoursListened float64 `yaml:"hours_listened"`
}

type TrackSummary struct {
	Rank   int      `yaml:"rank"`
	Name   string   `yaml:"name"`
	Artist string   `yaml:"artist"`
	Album  string   `yaml:"album,omitempty"`
	Plays  int64    `yaml:"plays"`
	Hours  float64  `yaml:"hours"`
	URI    string   `yaml:"uri"`
	Genres []string `yaml:"genres,omitempty"`
}

type ArtistSummary struct {
	Rank         int      `yaml:"rank"`
	Name         string   `yaml:"name"`
	Plays        int64    `yaml:"plays"`
	Hours        float64  `yaml:"hours"`
	UniqueTracks int      `yaml:"unique_tracks"`
	Genres       []string `yaml:"genres"`
}

type GenreSummary struct {
	Rank  int     `yaml:"rank"`
	Genre string  `yaml:"genre"`
	Plays int64   `yaml:"plays"`
	Hours float64 `yaml:"hours"`
}

// NewSummary builds a Summary from r, keeping at most the given number of
// rows per section.
func NewSummary(r Results, limits Limits, now time.Time) Summary {
	s := Summary{}
	s.Metadata.GeneratedDate = now.Format("2006-01-02")
	s.Metadata.TotalTracks = len(r.Tracks)
	s.Metadata.TotalArtists = len(r.Artists)

	var totalMs int64
	for _, row := range r.Tracks {
		s.Metadata.TotalListens += row.Item.PlayCount
		totalMs += row.Item.TotalMsPlayed
	}
	s.Metadata.HoursListened = Hours(totalMs)

	for i, row := range r.Tracks {
		if i >= limits.Tracks {
			break
		}
		t := row.Item
		s.TopTracks = append(s.TopTracks, TrackSummary{
			Rank:   row.Rank,
			Name:   t.TrackName,
			Artist: t.ArtistName,
			Album:  t.AlbumName,
			Plays:  t.PlayCount,
			Hours:  Hours(t.TotalMsPlayed),
			URI:    t.URI,
			Genres: r.ArtistGenres[t.ArtistName],
		})
	}
	for i, row := range r.Artists {
		if i >= limits.Artists {
			break
		}
		a := row.Item
		genres := r.ArtistGenres[a.Name]
		if genres == nil {
			genres = []string{}
		}
		s.TopArtists = append(s.TopArtists, ArtistSummary{
			Rank:         row.Rank,
			Name:         a.Name,
			Plays:        a.PlayCount,
			Hours:        Hours(a.TotalMsPlayed),
			UniqueTracks: a.UniqueTracks(),
			Genres:       genres,
		})
	}
	for i, row := range r.Genres {
		if i >= limits.Genres {
			break
		}
		g := row.Item
		s.TopGenres = append(s.TopGenres, GenreSummary{
			Rank:  row.Rank,
			Genre: g.Name,
			Plays: g.PlayCount,
			Hours: Hours(g.TotalMsPlayed),
		})
	}
	return s
}

// WriteYAML encodes s to out.
func WriteYAML(out io.Writer, s Summary) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return encoder.Close()
}
