package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const genreSeparator = "; "

// WriteTracksCSV writes one line per track row.
func WriteTracksCSV(w io.Writer, r Results, limit int) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"rank", "track_name", "artist_name", "album_name", "play_count",
		"hours_listened", "genres", "spotify_uri"})
	for i, row := range r.Tracks {
		if limit > 0 && i >= limit {
			break
		}
		t := row.Item
		cw.Write([]string{
			strconv.Itoa(row.Rank),
			t.TrackName,
			t.ArtistName,
			t.AlbumName,
			strconv.FormatInt(t.PlayCount, 10),
			formatHours(t.TotalMsPlayed),
			strings.Join(r.ArtistGenres[t.ArtistName], genreSeparator),
			t.URI,
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteArtistsCSV writes one line per artist row.
func WriteArtistsCSV(w io.Writer, r Results, limit int) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"rank", "artist_name", "play_count", "hours_listened", "unique_tracks", "genres"})
	for i, row := range r.Artists {
		if limit > 0 && i >= limit {
			break
		}
		a := row.Item
		cw.Write([]string{
			strconv.Itoa(row.Rank),
			a.Name,
			strconv.FormatInt(a.PlayCount, 10),
			formatHours(a.TotalMsPlayed),
			strconv.Itoa(a.UniqueTracks()),
			strings.Join(r.ArtistGenres[a.Name], genreSeparator),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteGenresCSV writes every genre row.
func WriteGenresCSV(w io.Writer, r Results) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"rank", "genre", "hours_listened", "play_count"})
	for _, row := range r.Genres {
		g := row.Item
		cw.Write([]string{
			strconv.Itoa(row.Rank),
			g.Name,
			formatHours(g.TotalMsPlayed),
			strconv.FormatInt(g.PlayCount, 10),
		})
	}
	cw.Flush()
	return cw.Error()
}

// ExportLimits caps how many track and artist rows are exported. Genres are
// always exported in full.
type ExportLimits struct {
	Tracks  int
	Artists int
}

// Export writes top_tracks.csv, top_artists.csv and top_genres.csv into dir
// and returns their paths.
func Export(dir string, r Results, limits ExportLimits) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"top_tracks.csv", func(w io.Writer) error { return WriteTracksCSV(w, r, limits.Tracks) }},
		{"top_artists.csv", func(w io.Writer) error { return WriteArtistsCSV(w, r, limits.Artists) }},
		{"top_genres.csv", func(w io.Writer) error { return WriteGenresCSV(w, r) }},
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		out, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("creating %s: %w", path, err)
		}
		if err := f.write(out); err != nil {
			out.Close()
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return paths, fmt.Errorf("closing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
