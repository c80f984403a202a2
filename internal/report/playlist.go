package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/ademuri/streaming-history/internal/ranking"
	"github.com/ademuri/streaming-history/internal/stats"
)

// WriteTrackList prints a titled, numbered track table.
func WriteTrackList(out io.Writer, title string, tracks []ranking.Row[*stats.TrackStat]) error {
	fmt.Fprintf(out, "%s (%d tracks)\n", title, len(tracks))
	rows := make([][]string, 0, len(tracks))
	for _, row := range tracks {
		t := row.Item
		rows = append(rows, []string{
			strconv.Itoa(row.Rank),
			t.TrackName,
			t.ArtistName,
			humanize.Comma(t.PlayCount),
			t.URI,
		})
	}
	return render(out, []string{"#", "Track", "Artist", "Plays", "URI"}, rows)
}

// WriteURIs writes one track URI per line, in rank order.
func WriteURIs(w io.Writer, tracks []ranking.Row[*stats.TrackStat]) error {
	bw := bufio.NewWriter(w)
	for _, uri := range ranking.TrackURIs(tracks) {
		if _, err := fmt.Fprintln(bw, uri); err != nil {
			return err
		}
	}
	return bw.Flush()
}
