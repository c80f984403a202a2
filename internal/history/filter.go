package history

// Record is a play event that qualified as a listen.
type Record struct {
	TrackURI   string
	TrackName  string
	ArtistName string
	AlbumName  string
	MsPlayed   int64
}

// Normalize converts e into a Record. It reports false when the event has no
// track identity or was played for less than minMsPlayed.
func Normalize(e PlayEvent, minMsPlayed int64) (Record, bool) {
	if e.TrackURI == "" || e.TrackName == "" {
		return Record{}, false
	}
	if e.MsPlayed < 0 || e.MsPlayed < minMsPlayed {
		return Record{}, false
	}
	return Record{
		TrackURI:   e.TrackURI,
		TrackName:  e.TrackName,
		ArtistName: e.ArtistName,
		AlbumName:  e.AlbumName,
		MsPlayed:   e.MsPlayed,
	}, true
}

// NormalizeAll applies Normalize to every event, keeping input order.
func NormalizeAll(events []PlayEvent, minMsPlayed int64) []Record {
	records := make([]Record, 0, len(events))
	for _, e := range events {
		if r, ok := Normalize(e, minMsPlayed); ok {
			records = append(records, r)
		}
	}
	return records
}
