package ranking

import (
	"reflect"
	"testing"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/history"
	"github.com/ademuri/streaming-history/internal/stats"
)

func plays(uri, track, artist string, n int, ms int64) []history.Record {
	var out []history.Record
	for i := 0; i < n; i++ {
		out = append(out, history.Record{TrackURI: uri, TrackName: track, ArtistName: artist, MsPlayed: ms})
	}
	return out
}

func testRecords() []history.Record {
	var records []history.Record
	records = append(records, plays("t1", "Tie One", "Alpha", 2, 60000)...)
	records = append(records, plays("t2", "Top", "Beta", 5, 60000)...)
	records = append(records, plays("t3", "Tie Two", "Gamma", 2, 60000)...)
	records = append(records, plays("t4", "Long", "Gamma", 1, 600000)...)
	return records
}

func TestRankStableDescending(t *testing.T) {
	items := []string{"a", "bb", "c", "dddd", "ee"}
	rows := Rank(items, func(s string) int64 { return int64(len(s)) })

	var got []string
	for i, r := range rows {
		if r.Rank != i+1 {
			t.Errorf("row %d has rank %d", i, r.Rank)
		}
		got = append(got, r.Item)
	}
	want := []string{"dddd", "bb", "ee", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank = %v, want %v", got, want)
	}
	if items[0] != "a" {
		t.Error("Rank reordered its input")
	}
}

func TestTracks(t *testing.T) {
	rows := Tracks(stats.AggregateTracks(testRecords()))
	got := TrackURIs(rows)
	want := []string{"t2", "t1", "t3", "t4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tracks order = %v, want %v", got, want)
	}
}

func TestArtists(t *testing.T) {
	rows := Artists(stats.AggregateArtists(testRecords()))
	got := ArtistNames(rows)
	want := []string{"Beta", "Gamma", "Alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Artists order = %v, want %v", got, want)
	}
}

func TestTop(t *testing.T) {
	rows := Rank([]int64{3, 2, 1}, func(i int64) int64 { return i })
	if got := len(Top(rows, 2)); got != 2 {
		t.Errorf("Top(2) returned %d rows", got)
	}
	if got := len(Top(rows, 10)); got != 3 {
		t.Errorf("Top(10) returned %d rows", got)
	}
	if got := len(Top(rows, 0)); got != 3 {
		t.Errorf("Top(0) returned %d rows", got)
	}
}

func TestGenres(t *testing.T) {
	artists := stats.AggregateArtists(testRecords())
	genres := genre.Genres{
		"Alpha": {"rock", "indie"},
		"Beta":  {"rock"},
		"Gamma": {"ambient"},
	}

	rows := Genres(artists, genres)
	got := map[string]GenreStat{}
	var order []string
	for _, r := range rows {
		got[r.Item.Name] = *r.Item
		order = append(order, r.Item.Name)
	}

	// Alpha's full totals go to both rock and indie.
	if g := got["rock"]; g.PlayCount != 7 || g.TotalMsPlayed != 420000 {
		t.Errorf("rock = %+v, want 7 plays and 420000ms", g)
	}
	if g := got["indie"]; g.PlayCount != 2 || g.TotalMsPlayed != 120000 {
		t.Errorf("indie = %+v, want 2 plays and 120000ms", g)
	}
	if g := got["ambient"]; g.PlayCount != 3 || g.TotalMsPlayed != 720000 {
		t.Errorf("ambient = %+v, want 3 plays and 720000ms", g)
	}
	want := []string{"ambient", "rock", "indie"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("genre order = %v, want %v", order, want)
	}
}

func TestGenresWithoutTags(t *testing.T) {
	artists := stats.AggregateArtists(testRecords())
	rows := Genres(artists, genre.Genres{"Alpha": {}})
	if len(rows) != 0 {
		t.Errorf("expected no genres, got %d rows", len(rows))
	}
}

func TestGenreTracks(t *testing.T) {
	var records []history.Record
	records = append(records, plays("d1", "Dnb One", "Noisia", 3, 60000)...)
	records = append(records, plays("d2", "Dnb Two", "Lane 8", 9, 60000)...)
	records = append(records, plays("d3", "Dnb Three", "Camo & Krooked", 4, 60000)...)
	records = append(records, plays("r1", "Rock", "The Beatles", 20, 60000)...)
	tracks := stats.AggregateTracks(records)

	genres := genre.Genres{
		"Noisia":         {"Drum and Bass", "neurofunk"},
		"Lane 8":         {"deep house", "liquid drum and bass"},
		"Camo & Krooked": {"drum and bass"},
		"The Beatles":    {"rock"},
	}

	rows := GenreTracks(tracks, genres, "drum and bass", []string{"Lane 8"})
	got := TrackURIs(rows)
	want := []string{"d3", "d1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenreTracks = %v, want %v", got, want)
	}
}
