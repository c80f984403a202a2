package cmd

import (
	"fmt"
	"regexp"
	"time"
)

var dateFormats = []struct {
	pattern *regexp.Regexp
	layout  string
	name    string
}{
	{regexp.MustCompile(`^\d{4}$`), "2006", "year"},
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "2006-01", "month"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02", "day"},
}

// parseSince returns the start of the period named by ds, e.g. "2024" is
// 2024-01-01 and "2024-03" is 2024-03-01. Dates are UTC.
func parseSince(ds string) (time.Time, error) {
	for _, f := range dateFormats {
		if !f.pattern.MatchString(ds) {
			continue
		}
		date, err := time.Parse(f.layout, ds)
		if err != nil {
			return time.Time{}, fmt.Errorf("Parsing datestring as %s: %w", f.name, err)
		}
		return date, nil
	}

	return time.Time{}, fmt.Errorf("Invalid format: %q", ds)
}
