package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/history"
)

const testDataDir = "/data"

type fakeSource struct {
	tags  map[string][]genre.Tag
	fail  bool
	calls []string
}

func (f *fakeSource) SearchArtist(ctx context.Context, name string) (*genre.ArtistMatch, error) {
	f.calls = append(f.calls, name)
	if f.fail {
		return nil, errors.New("503 Service Unavailable")
	}
	tags, ok := f.tags[name]
	if !ok {
		return nil, nil
	}
	return &genre.ArtistMatch{Name: name, Tags: tags}, nil
}

type noWait struct{}

func (noWait) Wait(ctx context.Context) error { return nil }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func play(uri, track, artist string, ms int64, ts string) history.PlayEvent {
	return history.PlayEvent{
		TrackURI:   uri,
		TrackName:  track,
		ArtistName: artist,
		MsPlayed:   ms,
		Timestamp:  ts,
	}
}

// testHistory has three plays of a rock track, one play of an untagged
// track, one skip and one play by an artist the source has never heard of.
func testHistory() []history.PlayEvent {
	return []history.PlayEvent{
		play("spotify:track:a", "Song A", "Artist A", 200000, "2024-01-05T10:00:00Z"),
		play("spotify:track:a", "Song A", "Artist A", 200000, "2024-02-05T10:00:00Z"),
		play("spotify:track:a", "Song A", "Artist A", 200000, "2024-03-05T10:00:00Z"),
		play("spotify:track:b", "Song B", "Artist B", 40000, "2024-03-06T10:00:00Z"),
		play("spotify:track:c", "Song C", "Artist A", 1000, "2024-03-07T10:00:00Z"),
		play("spotify:track:d", "Song D", "Artist C", 60000, "2023-12-01T10:00:00Z"),
	}
}

func testTags() map[string][]genre.Tag {
	return map[string][]genre.Tag{
		"Artist A": {{Name: "indie", Count: 5}, {Name: "rock", Count: 10}},
		"Artist C": {},
	}
}

func writeHistory(t *testing.T, fs afero.Fs, events []history.PlayEvent) {
	t.Helper()
	data, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("Marshalling history: %v", err)
	}
	if err := fs.MkdirAll(testDataDir, 0755); err != nil {
		t.Fatalf("Creating %s: %v", testDataDir, err)
	}
	path := filepath.Join(testDataDir, "Streaming_History_Audio_2024.json")
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		t.Fatalf("Writing %s: %v", path, err)
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}
