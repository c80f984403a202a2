package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/ademuri/streaming-history/internal/genre"
)

// WriteCacheStats prints a genre cache summary and its most common tags.
func WriteCacheStats(out io.Writer, s genre.CacheStats, topTags int) error {
	fmt.Fprintf(out, "Artists cached: %s\n", humanize.Comma(int64(s.Artists)))
	fmt.Fprintf(out, "With genres:    %s\n", humanize.Comma(int64(s.Tagged)))
	fmt.Fprintf(out, "Without genres: %s\n", humanize.Comma(int64(s.Untagged)))
	if len(s.Tags) == 0 {
		return nil
	}

	n := len(s.Tags)
	if topTags > 0 && topTags < n {
		n = topTags
	}
	fmt.Fprintf(out, "\nTOP %d TAGS\n", n)
	rows := make([][]string, 0, n)
	for i, tc := range s.Tags[:n] {
		rows = append(rows, []string{strconv.Itoa(i + 1), tc.Tag, strconv.Itoa(tc.Artists)})
	}
	return render(out, []string{"#", "Tag", "Artists"}, rows)
}
