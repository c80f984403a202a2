package genre

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultPacing is the minimum spacing between two lookups. MusicBrainz
	// allows one request per second per client.
	DefaultPacing = 1100 * time.Millisecond

	// DefaultMaxRetries is the number of fetch rounds before giving up.
	DefaultMaxRetries = 3

	// DefaultBackoffStep is multiplied by the round number to get the wait
	// before the next round.
	DefaultBackoffStep = 5 * time.Second

	progressEvery = 25
)

// Pacer blocks until the next lookup may be issued. *rate.Limiter
// satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Recorder receives resolver outcomes. *metrics.Pipeline satisfies it.
type Recorder interface {
	LookupFound()
	LookupEmpty()
	LookupFailed()
	GaveUp(n int)
	Round()
}

// Resolver looks up genres for artists missing from the cache. Lookups are
// strictly sequential.
type Resolver struct {
	source      TagSource
	pacer       Pacer
	sleep       func(ctx context.Context, d time.Duration) error
	maxRetries  int
	backoffStep time.Duration
	maxTags     int
	logger      *log.Logger
	recorder    Recorder
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPacing sets the minimum spacing between lookups.
func WithPacing(interval time.Duration) Option {
	return func(r *Resolver) {
		r.pacer = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithPacer replaces the lookup pacer.
func WithPacer(p Pacer) Option {
	return func(r *Resolver) {
		r.pacer = p
	}
}

// WithMaxRetries sets the number of fetch rounds. Values below one are
// ignored.
func WithMaxRetries(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

// WithBackoffStep sets the per-round backoff increment.
func WithBackoffStep(d time.Duration) Option {
	return func(r *Resolver) {
		r.backoffStep = d
	}
}

// WithSleep replaces the function used to wait between rounds.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Resolver) {
		r.sleep = sleep
	}
}

// WithLogger sets the logger used for progress output.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithRecorder sets where lookup outcomes are counted.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// NewResolver returns a resolver that looks artists up in source.
func NewResolver(source TagSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:      source,
		pacer:       rate.NewLimiter(rate.Every(DefaultPacing), 1),
		sleep:       sleepContext,
		maxRetries:  DefaultMaxRetries,
		backoffStep: DefaultBackoffStep,
		maxTags:     MaxTags,
		logger:      log.Default(),
		recorder:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one Resolve call.
type Result struct {
	// Genres has exactly one entry per requested name.
	Genres Genres

	// Cache is the input cache with every new answer merged in. It is what
	// the caller should save.
	Cache Genres

	Cached  int
	Fetched int
	GaveUp  []string
}

// Resolve returns genres for names, looking up only the names absent from
// cache. Names still failing after the last round are recorded with no
// genres. The input cache is not modified.
//
// Resolve only returns an error if ctx is done.
func (r *Resolver) Resolve(ctx context.Context, names []string, cache Genres) (Result, error) {
	updated := cache.Clone()
	res := Result{Cache: updated}

	seen := make(map[string]bool, len(names))
	var pending []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := updated[name]; ok {
			res.Cached++
			continue
		}
		pending = append(pending, name)
	}
	r.logger.Info("Genre lookup", "artists", len(seen), "cached", res.Cached, "to_fetch", len(pending))

	for attempt := 1; attempt <= r.maxRetries && len(pending) > 0; attempt++ {
		r.recorder.Round()
		r.logger.Infof("Attempt %d: fetching %d artists", attempt, len(pending))

		var failed []string
		for i, name := range pending {
			if err := r.pacer.Wait(ctx); err != nil {
				return Result{}, fmt.Errorf("waiting to look up %q: %w", name, err)
			}
			tags, err := r.lookup(ctx, name)
			if err != nil {
				if ctx.Err() != nil {
					return Result{}, ctx.Err()
				}
				r.logger.Warn("Lookup failed", "artist", name, "err", err)
				r.recorder.LookupFailed()
				failed = append(failed, name)
			} else {
				updated[name] = tags
				res.Fetched++
			}

			if (i+1)%progressEvery == 0 {
				r.logger.Infof("%d/%d processed", i+1, len(pending))
			}
		}

		pending = failed
		if len(failed) > 0 && attempt < r.maxRetries {
			wait := r.backoffStep * time.Duration(attempt)
			r.logger.Infof("%d failures, retrying in %s", len(failed), wait)
			if err := r.sleep(ctx, wait); err != nil {
				return Result{}, err
			}
		}
	}

	if len(pending) > 0 {
		r.logger.Warn("Giving up on artists", "attempts", r.maxRetries, "artists", pending)
		for _, name := range pending {
			updated[name] = []string{}
		}
		res.GaveUp = pending
		r.recorder.GaveUp(len(pending))
	}

	res.Genres = make(Genres, len(seen))
	for name := range seen {
		res.Genres[name] = updated[name]
	}
	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, name string) ([]string, error) {
	match, err := r.source.SearchArtist(ctx, name)
	if err != nil {
		return nil, err
	}
	if match == nil || len(match.Tags) == 0 {
		r.recorder.LookupEmpty()
		return []string{}, nil
	}
	r.recorder.LookupFound()
	return TopTags(match.Tags, r.maxTags), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopRecorder struct{}

func (nopRecorder) LookupFound()  {}
func (nopRecorder) LookupEmpty()  {}
func (nopRecorder) LookupFailed() {}
func (nopRecorder) GaveUp(int)    {}
func (nopRecorder) Round()        {}
