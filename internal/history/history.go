// Package history reads streaming-history dumps and normalizes their play
// events.
package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// FilePattern matches the audio history files of a streaming-history export.
const FilePattern = "Streaming_History_Audio*.json"

// DefaultMinMsPlayed is the shortest play that counts as a listen rather
// than a skip.
const DefaultMinMsPlayed = 30000

// PlayEvent is one raw entry of a history file. Absent or null fields decode
// to their zero value.
type PlayEvent struct {
	TrackURI   string `json:"spotify_track_uri"`
	TrackName  string `json:"master_metadata_track_name"`
	ArtistName string `json:"master_metadata_album_artist_name"`
	AlbumName  string `json:"master_metadata_album_album_name"`
	MsPlayed   int64  `json:"ms_played"`
	Timestamp  string `json:"ts"`
}

// Load reads every history file in dir and concatenates their events in file
// name order.
func Load(fs afero.Fs, dir string) ([]PlayEvent, error) {
	files, err := afero.Glob(fs, filepath.Join(dir, FilePattern))
	if err != nil {
		return nil, fmt.Errorf("listing history files: %w", err)
	}
	sort.Strings(files)

	var events []PlayEvent
	for _, f := range files {
		data, err := afero.ReadFile(fs, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		var batch []PlayEvent
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		events = append(events, batch...)
	}
	return events, nil
}

// Since returns the events played at or after start. Events whose timestamp
// can't be parsed are dropped.
func Since(events []PlayEvent, start time.Time) []PlayEvent {
	var out []PlayEvent
	for _, e := range events {
		ts, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			continue
		}
		if !ts.Before(start) {
			out = append(out, e)
		}
	}
	return out
}
