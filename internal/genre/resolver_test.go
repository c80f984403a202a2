package genre

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// fakeSource fails each name a set number of times before answering.
type fakeSource struct {
	matches  map[string]*ArtistMatch
	failures map[string]int
	calls    []string
}

func (f *fakeSource) SearchArtist(ctx context.Context, name string) (*ArtistMatch, error) {
	f.calls = append(f.calls, name)
	if f.failures[name] != 0 {
		if f.failures[name] > 0 {
			f.failures[name]--
		}
		return nil, errors.New("503 service unavailable")
	}
	return f.matches[name], nil
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func newTestResolver(src TagSource, opts ...Option) (*Resolver, *countingPacer, *sleepRecorder) {
	pacer := &countingPacer{}
	sleeps := &sleepRecorder{}
	base := []Option{
		WithPacer(pacer),
		WithSleep(sleeps.sleep),
		WithLogger(log.New(io.Discard)),
	}
	return NewResolver(src, append(base, opts...)...), pacer, sleeps
}

func sortedKeys(g Genres) []string {
	var keys []string
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestResolveNewArtist(t *testing.T) {
	src := &fakeSource{matches: map[string]*ArtistMatch{
		"NewArtist": {Name: "NewArtist", Tags: []Tag{{"rock", 10}, {"pop", 3}}},
	}}
	r, _, _ := newTestResolver(src)

	res, err := r.Resolve(context.Background(), []string{"NewArtist"}, Genres{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	want := Genres{"NewArtist": {"rock", "pop"}}
	if !reflect.DeepEqual(res.Genres, want) {
		t.Errorf("Genres = %v, want %v", res.Genres, want)
	}
	if !reflect.DeepEqual(res.Cache, want) {
		t.Errorf("Cache = %v, want %v", res.Cache, want)
	}
	if res.Fetched != 1 || res.Cached != 0 {
		t.Errorf("Fetched/Cached = %d/%d, want 1/0", res.Fetched, res.Cached)
	}
}

func TestResolveSkipsCachedNames(t *testing.T) {
	src := &fakeSource{matches: map[string]*ArtistMatch{}}
	r, pacer, _ := newTestResolver(src)

	cache := Genres{"Known": {"jazz"}, "Nothing": {}}
	res, err := r.Resolve(context.Background(), []string{"Known", "Nothing"}, cache)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(src.calls) != 0 {
		t.Errorf("looked up cached names: %v", src.calls)
	}
	if pacer.waits != 0 {
		t.Errorf("paced %d times without lookups", pacer.waits)
	}
	if res.Cached != 2 {
		t.Errorf("Cached = %d, want 2", res.Cached)
	}
	if len(res.Genres["Nothing"]) != 0 || res.Genres["Known"][0] != "jazz" {
		t.Errorf("Genres = %v", res.Genres)
	}
}

func TestResolveZeroMatchesIsCached(t *testing.T) {
	src := &fakeSource{matches: map[string]*ArtistMatch{
		"Tagless": {Name: "Tagless"},
	}}
	r, _, sleeps := newTestResolver(src)

	res, err := r.Resolve(context.Background(), []string{"Nobody", "Tagless"}, Genres{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	for _, name := range []string{"Nobody", "Tagless"} {
		tags, ok := res.Cache[name]
		if !ok || tags == nil || len(tags) != 0 {
			t.Errorf("Cache[%q] = %v (present %v), want empty list", name, tags, ok)
		}
	}
	if len(src.calls) != 2 {
		t.Errorf("expected exactly 2 lookups, got %v", src.calls)
	}
	if len(sleeps.waits) != 0 {
		t.Errorf("unexpected backoff: %v", sleeps.waits)
	}
}

func TestResolveGivesUp(t *testing.T) {
	src := &fakeSource{failures: map[string]int{"Ghost": -1}}
	r, pacer, sleeps := newTestResolver(src)

	res, err := r.Resolve(context.Background(), []string{"Ghost"}, Genres{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if !reflect.DeepEqual(res.Genres, Genres{"Ghost": {}}) {
		t.Errorf("Genres = %v, want Ghost with no genres", res.Genres)
	}
	tags, ok := res.Cache["Ghost"]
	if !ok || tags == nil {
		t.Errorf("Ghost should be cached as an empty list, got %v (present %v)", tags, ok)
	}
	if len(src.calls) != DefaultMaxRetries {
		t.Errorf("made %d lookups, want %d", len(src.calls), DefaultMaxRetries)
	}
	if pacer.waits != DefaultMaxRetries {
		t.Errorf("paced %d times, want %d", pacer.waits, DefaultMaxRetries)
	}
	wantSleeps := []time.Duration{5 * time.Second, 10 * time.Second}
	if !reflect.DeepEqual(sleeps.waits, wantSleeps) {
		t.Errorf("backoff = %v, want %v", sleeps.waits, wantSleeps)
	}
	if !reflect.DeepEqual(res.GaveUp, []string{"Ghost"}) {
		t.Errorf("GaveUp = %v", res.GaveUp)
	}
}

func TestResolveRetriesUntilSuccess(t *testing.T) {
	src := &fakeSource{
		matches: map[string]*ArtistMatch{
			"Flaky":  {Tags: []Tag{{"techno", 4}}},
			"Steady": {Tags: []Tag{{"ambient", 2}}},
		},
		failures: map[string]int{"Flaky": 2},
	}
	r, pacer, sleeps := newTestResolver(src, WithBackoffStep(time.Second))

	res, err := r.Resolve(context.Background(), []string{"Flaky", "Steady"}, Genres{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	want := Genres{"Flaky": {"techno"}, "Steady": {"ambient"}}
	if !reflect.DeepEqual(res.Genres, want) {
		t.Errorf("Genres = %v, want %v", res.Genres, want)
	}
	wantCalls := []string{"Flaky", "Steady", "Flaky", "Flaky"}
	if !reflect.DeepEqual(src.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", src.calls, wantCalls)
	}
	if pacer.waits != len(wantCalls) {
		t.Errorf("paced %d times for %d lookups", pacer.waits, len(wantCalls))
	}
	wantSleeps := []time.Duration{time.Second, 2 * time.Second}
	if !reflect.DeepEqual(sleeps.waits, wantSleeps) {
		t.Errorf("backoff = %v, want %v", sleeps.waits, wantSleeps)
	}
	if len(res.GaveUp) != 0 {
		t.Errorf("GaveUp = %v", res.GaveUp)
	}
}

func TestResolveMaxRetries(t *testing.T) {
	src := &fakeSource{failures: map[string]int{"Ghost": -1}}
	r, _, sleeps := newTestResolver(src, WithMaxRetries(5))

	if _, err := r.Resolve(context.Background(), []string{"Ghost"}, Genres{}); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(src.calls) != 5 {
		t.Errorf("made %d lookups, want 5", len(src.calls))
	}
	if len(sleeps.waits) != 4 {
		t.Errorf("backed off %d times, want 4", len(sleeps.waits))
	}
}

func TestResolveKeySetMatchesRequest(t *testing.T) {
	src := &fakeSource{
		matches:  map[string]*ArtistMatch{"A": {Tags: []Tag{{"x", 1}}}},
		failures: map[string]int{"C": -1},
	}
	r, _, _ := newTestResolver(src)

	cache := Genres{"B": {"y"}, "Unrelated": {"z"}}
	names := []string{"A", "B", "C", "A"}
	res, err := r.Resolve(context.Background(), names, cache)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got, want := sortedKeys(res.Genres), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("result keys = %v, want %v", got, want)
	}
	if got, want := sortedKeys(res.Cache), []string{"A", "B", "C", "Unrelated"}; !reflect.DeepEqual(got, want) {
		t.Errorf("cache keys = %v, want %v", got, want)
	}
	if _, ok := cache["A"]; ok {
		t.Error("Resolve modified the input cache")
	}
}

func TestResolveStopsOnCancel(t *testing.T) {
	src := &fakeSource{matches: map[string]*ArtistMatch{}}
	r, _, _ := newTestResolver(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Resolve(ctx, []string{"A"}, Genres{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve error = %v, want context.Canceled", err)
	}
	if len(src.calls) != 0 {
		t.Errorf("looked up %v after cancellation", src.calls)
	}
}

func TestDefaultPacingSpacesLookups(t *testing.T) {
	src := &fakeSource{matches: map[string]*ArtistMatch{}}
	r := NewResolver(src, WithPacing(50*time.Millisecond), WithLogger(log.New(io.Discard)))

	start := time.Now()
	if _, err := r.Resolve(context.Background(), []string{"A", "B", "C"}, Genres{}); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 lookups took %s, expected at least two pacing intervals", elapsed)
	}
}
