// Package lastfmtags looks up artist tags with last.fm's artist.getTopTags.
package lastfmtags

import (
	"context"
	"strconv"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"github.com/charmbracelet/log"

	"github.com/ademuri/streaming-history/internal/genre"
)

// errArtistNotFound is the last.fm error code for an unknown artist.
const errArtistNotFound = 6

// TopTagsGetter is the part of the last.fm artist API this package needs.
type TopTagsGetter interface {
	GetTopTags(args map[string]interface{}) (lastfm.ArtistGetTopTags, error)
}

// Source implements genre.TagSource on top of last.fm.
type Source struct {
	artists    TopTagsGetter
	logger     *log.Logger
	retryDelay time.Duration
	pacer      genre.Pacer
}

// Option configures a Source.
type Option func(*Source)

// WithRetryDelay sets the wait before repeating a request last.fm failed
// with a server error.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Source) { s.retryDelay = d }
}

// WithPacer makes repeated requests wait on p.
func WithPacer(p genre.Pacer) Option {
	return func(s *Source) { s.pacer = p }
}

// New returns a Source using the given API key and secret.
func New(apiKey, secret, userAgent string, logger *log.Logger, opts ...Option) *Source {
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent(userAgent)
	return NewWithGetter(client.Artist, logger, opts...)
}

// NewWithGetter returns a Source that queries g.
func NewWithGetter(g TopTagsGetter, logger *log.Logger, opts ...Option) *Source {
	if logger == nil {
		logger = log.Default()
	}
	s := &Source{artists: g, logger: logger, retryDelay: genre.DefaultPacing}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) SearchArtist(ctx context.Context, name string) (*genre.ArtistMatch, error) {
	var topTags lastfm.ArtistGetTopTags
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			if attempt > 1 && s.pacer != nil {
				if err := s.pacer.Wait(ctx); err != nil {
					return err
				}
			}
			var err error
			topTags, err = s.artists.GetTopTags(lastfm.P{
				"artist":      name,
				"autocorrect": 1,
			})
			return err
		},
		retry.Attempts(2),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			if lerr, ok := err.(*lastfm.LastfmError); ok {
				if lerr.Code/100 == 5 {
					s.logger.Warn("last.fm errored, retrying", "err", lerr)
					return true
				}
			}
			return false
		}),
	)
	if lerr, ok := err.(*lastfm.LastfmError); ok && lerr.Code == errArtistNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	match := &genre.ArtistMatch{Name: name}
	for _, t := range topTags.Tags {
		c, _ := strconv.Atoi(t.Count)
		match.Tags = append(match.Tags, genre.Tag{Name: t.Name, Count: c})
	}
	return match, nil
}
