// Package report presents ranked listening statistics as console tables, CSV
// exports and a YAML summary.
package report

import (
	"strconv"
	"strings"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/ranking"
	"github.com/ademuri/streaming-history/internal/stats"
)

const msPerHour = 3600000

// Hours converts milliseconds to hours, rounded to one decimal. Exact
// halves round to even, so 0.25 hours is 0.2.
func Hours(ms int64) float64 {
	h, _ := strconv.ParseFloat(strconv.FormatFloat(float64(ms)/msPerHour, 'f', 1, 64), 64)
	return h
}

func formatHours(ms int64) string {
	return strconv.FormatFloat(Hours(ms), 'f', 1, 64)
}

// GenreLabel is the short genre description shown next to an artist.
func GenreLabel(tags []string) string {
	if len(tags) == 0 {
		return "unknown"
	}
	if len(tags) > 3 {
		tags = tags[:3]
	}
	return strings.Join(tags, ", ")
}

// Results bundles everything a run presents.
type Results struct {
	Tracks  []ranking.Row[*stats.TrackStat]
	Artists []ranking.Row[*stats.ArtistStat]
	Genres  []ranking.Row[*ranking.GenreStat]

	// ArtistGenres holds the resolved genres of the ranked artists.
	ArtistGenres genre.Genres
}
