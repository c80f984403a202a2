// Package musicbrainz searches the MusicBrainz web service for artists and
// their folksonomy tags.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/ademuri/streaming-history/internal/genre"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org"
	DefaultUserAgent = "streaming-history/1.0"
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("musicbrainz: HTTP %d: %s", e.Code, e.Body)
}

// Client implements genre.TagSource.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retryDelay time.Duration

	// pacer is waited on before every repeated request.
	pacer genre.Pacer
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetryDelay sets the wait before repeating a request MusicBrainz
// rejected with 503.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithPacer makes repeated requests wait on p. Pass the resolver's pacer so
// a retry takes a turn like any other lookup.
func WithPacer(p genre.Pacer) Option {
	return func(c *Client) { c.pacer = p }
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: genre.DefaultPacing,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Artists []struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
		Tags  []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tags"`
	} `json:"artists"`
}

// SearchArtist returns the best MusicBrainz match for name, or nil if the
// search found nothing.
func (c *Client) SearchArtist(ctx context.Context, name string) (*genre.ArtistMatch, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("artist:%q", name))
	q.Set("limit", "1")
	q.Set("fmt", "json")
	endpoint := c.baseURL + "/ws/2/artist/?" + q.Encode()

	var resp searchResponse
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			if attempt > 1 && c.pacer != nil {
				if err := c.pacer.Wait(ctx); err != nil {
					return err
				}
			}
			return c.get(ctx, endpoint, &resp)
		},
		retry.Attempts(2),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			if serr, ok := err.(*StatusError); ok {
				return serr.Code == http.StatusServiceUnavailable
			}
			return false
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", name, err)
	}

	if len(resp.Artists) == 0 {
		return nil, nil
	}
	a := resp.Artists[0]
	match := &genre.ArtistMatch{Name: a.Name}
	for _, t := range a.Tags {
		match.Tags = append(match.Tags, genre.Tag{Name: t.Name, Count: t.Count})
	}
	return match, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
