// Package stats folds normalized play records into per-track and per-artist
// listening statistics.
package stats

import "github.com/ademuri/streaming-history/internal/history"

// TrackStat accumulates the qualifying plays of one track URI. Metadata is
// taken from the most recent record seen for the URI.
type TrackStat struct {
	URI           string
	TrackName     string
	ArtistName    string
	AlbumName     string
	PlayCount     int64
	TotalMsPlayed int64
}

// ArtistStat accumulates the qualifying plays of one artist name.
type ArtistStat struct {
	Name          string
	PlayCount     int64
	TotalMsPlayed int64
	TrackURIs     map[string]struct{}
}

// UniqueTracks is the number of distinct tracks played for the artist.
func (a *ArtistStat) UniqueTracks() int {
	return len(a.TrackURIs)
}

// Tracks holds track statistics keyed by URI, remembering the order in which
// URIs were first seen.
type Tracks struct {
	order []string
	byURI map[string]*TrackStat
}

// Get returns the statistics for uri.
func (t *Tracks) Get(uri string) (*TrackStat, bool) {
	s, ok := t.byURI[uri]
	return s, ok
}

// Len is the number of distinct tracks.
func (t *Tracks) Len() int {
	return len(t.order)
}

// All returns every track in first-seen order.
func (t *Tracks) All() []*TrackStat {
	out := make([]*TrackStat, 0, len(t.order))
	for _, uri := range t.order {
		out = append(out, t.byURI[uri])
	}
	return out
}

// Artists holds artist statistics keyed by name, remembering the order in
// which names were first seen.
type Artists struct {
	order  []string
	byName map[string]*ArtistStat
}

// Get returns the statistics for name.
func (a *Artists) Get(name string) (*ArtistStat, bool) {
	s, ok := a.byName[name]
	return s, ok
}

// Len is the number of distinct artists.
func (a *Artists) Len() int {
	return len(a.order)
}

// All returns every artist in first-seen order.
func (a *Artists) All() []*ArtistStat {
	out := make([]*ArtistStat, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.byName[name])
	}
	return out
}

// AggregateTracks folds records into per-track statistics.
func AggregateTracks(records []history.Record) *Tracks {
	t := &Tracks{byURI: make(map[string]*TrackStat)}
	for _, r := range records {
		s, ok := t.byURI[r.TrackURI]
		if !ok {
			s = &TrackStat{URI: r.TrackURI}
			t.byURI[r.TrackURI] = s
			t.order = append(t.order, r.TrackURI)
		}
		s.TrackName = r.TrackName
		s.ArtistName = r.ArtistName
		s.AlbumName = r.AlbumName
		s.PlayCount++
		s.TotalMsPlayed += r.MsPlayed
	}
	return t
}

// AggregateArtists folds records into per-artist statistics. Records without
// an artist name are ignored.
func AggregateArtists(records []history.Record) *Artists {
	a := &Artists{byName: make(map[string]*ArtistStat)}
	for _, r := range records {
		if r.ArtistName == "" {
			continue
		}
		s, ok := a.byName[r.ArtistName]
		if !ok {
			s = &ArtistStat{Name: r.ArtistName, TrackURIs: make(map[string]struct{})}
			a.byName[r.ArtistName] = s
			a.order = append(a.order, r.ArtistName)
		}
		s.PlayCount++
		s.TotalMsPlayed += r.MsPlayed
		s.TrackURIs[r.TrackURI] = struct{}{}
	}
	return a
}
