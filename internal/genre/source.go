package genre

import "context"

// ArtistMatch is the artist a tag source matched for a searched name.
type ArtistMatch struct {
	Name string
	Tags []Tag
}

// TagSource searches an external catalogue for an artist by name.
//
// SearchArtist returns a nil match and a nil error when nothing matched. Any
// error is treated as transient and retried in a later round.
type TagSource interface {
	SearchArtist(ctx context.Context, name string) (*ArtistMatch, error)
}
