package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/lastfmtags"
	"github.com/ademuri/streaming-history/internal/musicbrainz"
	"github.com/ademuri/streaming-history/internal/store"
)

// CacheConfig selects where the genre cache lives.
type CacheConfig struct {
	Backend string
	Path    string
	DataDir string
}

func (c CacheConfig) path() string {
	if c.Path != "" {
		return c.Path
	}
	if c.Backend == "sqlite" {
		return filepath.Join(c.DataDir, "genre_cache.db")
	}
	return filepath.Join(c.DataDir, "genre_cache.json")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openGenreStore returns the configured cache store. The caller must close
// the returned closer.
func openGenreStore(c CacheConfig) (genre.Store, interface{ Close() error }, error) {
	switch c.Backend {
	case "", "json":
		return genre.NewJSONStore(afero.NewOsFs(), c.path()), nopCloser{}, nil

	case "sqlite":
		db, err := store.New(c.path())
		if err != nil {
			return nil, nil, fmt.Errorf("opening genre cache: %w", err)
		}
		return db, db, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache_backend %q, expected json or sqlite", c.Backend)
	}
}

// SourceConfig selects where genres are fetched from.
type SourceConfig struct {
	Name      string
	APIKey    string
	Secret    string
	UserAgent string

	// Pacing is also the delay before a source repeats a failed request.
	Pacing time.Duration
}

// newPacer returns the limiter shared by the resolver and the tag source, so
// a source's own retries are spaced like every other request.
func newPacer(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

func newTagSource(c SourceConfig, logger *log.Logger, pacer genre.Pacer) (genre.TagSource, error) {
	switch c.Name {
	case "", "musicbrainz":
		opts := []musicbrainz.Option{musicbrainz.WithUserAgent(c.UserAgent), musicbrainz.WithPacer(pacer)}
		if c.Pacing > 0 {
			opts = append(opts, musicbrainz.WithRetryDelay(c.Pacing))
		}
		return musicbrainz.New(opts...), nil

	case "lastfm":
		if c.APIKey == "" || c.Secret == "" {
			return nil, fmt.Errorf("tag_source lastfm needs api_key and secret")
		}
		opts := []lastfmtags.Option{lastfmtags.WithPacer(pacer)}
		if c.Pacing > 0 {
			opts = append(opts, lastfmtags.WithRetryDelay(c.Pacing))
		}
		return lastfmtags.New(c.APIKey, c.Secret, c.UserAgent, logger, opts...), nil

	default:
		return nil, fmt.Errorf("unknown tag_source %q, expected musicbrainz or lastfm", c.Name)
	}
}

func cacheConfigFromViper() CacheConfig {
	return CacheConfig{
		Backend: viper.GetString("cache_backend"),
		Path:    viper.GetString("cache_path"),
		DataDir: viper.GetString("data_dir"),
	}
}

func sourceConfigFromViper() SourceConfig {
	return SourceConfig{
		Name:      viper.GetString("tag_source"),
		APIKey:    viper.GetString("api_key"),
		Secret:    viper.GetString("secret"),
		UserAgent: viper.GetString("user_agent"),
		Pacing:    viper.GetDuration("pacing"),
	}
}
