package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// Limits caps how many rows of each table are printed.
type Limits struct {
	Tracks  int
	Artists int
	Genres  int
}

func render(out io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

// WriteTables prints the top tracks, artists and genres.
func WriteTables(out io.Writer, r Results, limits Limits) error {
	fmt.Fprintf(out, "TOP %d TRACKS (by play count)\n", min(limits.Tracks, len(r.Tracks)))
	var rows [][]string
	for i, row := range r.Tracks {
		if i >= limits.Tracks {
			break
		}
		t := row.Item
		rows = append(rows, []string{
			strconv.Itoa(row.Rank),
			t.TrackName,
			t.ArtistName,
			humanize.Comma(t.PlayCount),
			formatHours(t.TotalMsPlayed),
			GenreLabel(r.ArtistGenres[t.ArtistName]),
		})
	}
	if err := render(out, []string{"#", "Track", "Artist", "Plays", "Hours", "Genres"}, rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTOP %d ARTISTS (by play count)\n", min(limits.Artists, len(r.Artists)))
	rows = nil
	for i, row := range r.Artists {
		if i >= limits.Artists {
			break
		}
		a := row.Item
		rows = append(rows, []string{
			strconv.Itoa(row.Rank),
			a.Name,
			humanize.Comma(a.PlayCount),
			formatHours(a.TotalMsPlayed),
			strconv.Itoa(a.UniqueTracks()),
			GenreLabel(r.ArtistGenres[a.Name]),
		})
	}
	if err := render(out, []string{"#", "Artist", "Plays", "Hours", "Tracks", "Genres"}, rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTOP %d GENRES (by listening time)\n", min(limits.Genres, len(r.Genres)))
	rows = nil
	for i, row := range r.Genres {
		if i >= limits.Genres {
			break
		}
		g := row.Item
		rows = append(rows, []string{
			strconv.Itoa(row.Rank),
			g.Name,
			formatHours(g.TotalMsPlayed),
			humanize.Comma(g.PlayCount),
		})
	}
	return render(out, []string{"#", "Genre", "Hours", "Plays"}, rows)
}
