package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/history"
	"github.com/ademuri/streaming-history/internal/metrics"
	"github.com/ademuri/streaming-history/internal/ranking"
	"github.com/ademuri/streaming-history/internal/report"
	"github.com/ademuri/streaming-history/internal/stats"
)

type AnalyzeConfig struct {
	DataDir     string
	Since       string
	MinMsPlayed int64

	// Only this many of the top artists have their genres looked up.
	EnrichArtists int
	MaxRetries    int
	Pacing        time.Duration
	BackoffStep   time.Duration

	Print     report.Limits
	YAML      bool
	Export    report.ExportLimits
	ExportDir string

	MetricsFile string
}

// pipeline holds the collaborators of an analyze run.
type pipeline struct {
	fs     afero.Fs
	cache  genre.Store
	source genre.TagSource
	logger *log.Logger
	out    io.Writer
	now    func() time.Time

	// pacer spaces every request to the tag source. Nil means a limiter
	// built from AnalyzeConfig.Pacing.
	pacer genre.Pacer

	// Appended after the options built from AnalyzeConfig.
	resolverOpts []genre.Option
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ranks tracks, artists and genres",
	Long: `Counts plays per track and artist, looks up genres for the top artists,
prints the rankings and exports them as CSV.

Genres are cached between runs, so only artists never seen before are looked up.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireTagSourceCredentials()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(os.Stderr, viper.GetString("log_level"))
		if err != nil {
			return err
		}

		cache, closer, err := openGenreStore(cacheConfigFromViper())
		if err != nil {
			return err
		}
		defer closer.Close()

		config := analyzeConfigFromViper()
		pacer := newPacer(config.Pacing)
		source, err := newTagSource(sourceConfigFromViper(), logger, pacer)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runAnalyze(ctx, config, pipeline{
			fs:     afero.NewOsFs(),
			cache:  cache,
			source: source,
			logger: logger,
			out:    os.Stdout,
			now:    time.Now,
			pacer:  pacer,
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	var enrich int
	analyzeCmd.Flags().IntVar(&enrich, "top_artists_to_enrich", 200, "Number of top artists to look up genres for")
	viper.BindPFlag("top_artists_to_enrich", analyzeCmd.Flags().Lookup("top_artists_to_enrich"))

	var maxRetries int
	analyzeCmd.Flags().IntVar(&maxRetries, "max_retries", genre.DefaultMaxRetries, "Rounds of genre lookups before giving up on an artist")
	viper.BindPFlag("max_retries", analyzeCmd.Flags().Lookup("max_retries"))

	var pacing time.Duration
	analyzeCmd.Flags().DurationVar(&pacing, "pacing", genre.DefaultPacing, "Minimum time between genre lookups")
	viper.BindPFlag("pacing", analyzeCmd.Flags().Lookup("pacing"))

	var backoffStep time.Duration
	analyzeCmd.Flags().DurationVar(&backoffStep, "backoff_step", genre.DefaultBackoffStep, "Wait before retry round k is k times this")
	viper.BindPFlag("backoff_step", analyzeCmd.Flags().Lookup("backoff_step"))

	intFlags := []struct {
		name  string
		value int
		usage string
	}{
		{"print_tracks", 50, "Number of tracks to print"},
		{"print_artists", 50, "Number of artists to print"},
		{"print_genres", 30, "Number of genres to print"},
		{"export_tracks", 500, "Number of tracks written to top_tracks.csv"},
		{"export_artists", 200, "Number of artists written to top_artists.csv"},
	}
	for _, f := range intFlags {
		analyzeCmd.Flags().Int(f.name, f.value, f.usage)
		viper.BindPFlag(f.name, analyzeCmd.Flags().Lookup(f.name))
	}

	var exportDir string
	analyzeCmd.Flags().StringVar(&exportDir, "export_dir", "", "Directory for the CSV files (default is data_dir)")
	viper.BindPFlag("export_dir", analyzeCmd.Flags().Lookup("export_dir"))

	var yamlOut bool
	analyzeCmd.Flags().BoolVar(&yamlOut, "yaml", false, "Print a YAML summary instead of tables")
	viper.BindPFlag("yaml", analyzeCmd.Flags().Lookup("yaml"))
}

func requireTagSourceCredentials() error {
	if viper.GetString("tag_source") != "lastfm" {
		return nil
	}
	for _, key := range []string{"api_key", "secret"} {
		if viper.GetString(key) == "" {
			return fmt.Errorf("required flag(s) %q not set", key)
		}
	}
	return nil
}

func analyzeConfigFromViper() AnalyzeConfig {
	exportDir := viper.GetString("export_dir")
	if exportDir == "" {
		exportDir = viper.GetString("data_dir")
	}
	return AnalyzeConfig{
		DataDir:       viper.GetString("data_dir"),
		Since:         viper.GetString("since"),
		MinMsPlayed:   viper.GetInt64("min_ms"),
		EnrichArtists: viper.GetInt("top_artists_to_enrich"),
		MaxRetries:    viper.GetInt("max_retries"),
		Pacing:        viper.GetDuration("pacing"),
		BackoffStep:   viper.GetDuration("backoff_step"),
		Print: report.Limits{
			Tracks:  viper.GetInt("print_tracks"),
			Artists: viper.GetInt("print_artists"),
			Genres:  viper.GetInt("print_genres"),
		},
		YAML: viper.GetBool("yaml"),
		Export: report.ExportLimits{
			Tracks:  viper.GetInt("export_tracks"),
			Artists: viper.GetInt("export_artists"),
		},
		ExportDir:   exportDir,
		MetricsFile: viper.GetString("metrics_file"),
	}
}

// loadRecords reads the history in dir and returns its qualifying plays.
func loadRecords(fs afero.Fs, dir, since string, minMsPlayed int64, m *metrics.Pipeline, logger *log.Logger) ([]history.Record, error) {
	events, err := history.Load(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no %s files in %s", history.FilePattern, dir)
	}
	total := len(events)

	if since != "" {
		start, err := parseSince(since)
		if err != nil {
			return nil, fmt.Errorf("--since: %w", err)
		}
		events = history.Since(events, start)
		logger.Info("Filtered by date", "since", start.Format("2006-01-02"), "kept", len(events), "of", total)
	}

	records := history.NormalizeAll(events, minMsPlayed)
	m.Events(len(records), total-len(records))
	logger.Info("Loaded streaming history", "events", total, "qualifying", len(records))
	return records, nil
}

func runAnalyze(ctx context.Context, config AnalyzeConfig, p pipeline) error {
	m := metrics.New()
	records, err := loadRecords(p.fs, config.DataDir, config.Since, config.MinMsPlayed, m, p.logger)
	if err != nil {
		return err
	}

	tracks := stats.AggregateTracks(records)
	artists := stats.AggregateArtists(records)
	trackRows := ranking.Tracks(tracks)
	artistRows := ranking.Artists(artists)
	p.logger.Info("Aggregated plays", "tracks", tracks.Len(), "artists", artists.Len())

	// A cache that can't be read stops the run before anything is fetched.
	cached, err := p.cache.Load()
	if err != nil {
		return fmt.Errorf("loading genre cache: %w", err)
	}

	opts := []genre.Option{
		genre.WithMaxRetries(config.MaxRetries),
		genre.WithBackoffStep(config.BackoffStep),
		genre.WithLogger(p.logger),
		genre.WithRecorder(m),
	}
	if p.pacer != nil {
		opts = append(opts, genre.WithPacer(p.pacer))
	} else if config.Pacing > 0 {
		opts = append(opts, genre.WithPacing(config.Pacing))
	}
	resolver := genre.NewResolver(p.source, append(opts, p.resolverOpts...)...)

	names := ranking.ArtistNames(ranking.Top(artistRows, config.EnrichArtists))
	res, err := resolver.Resolve(ctx, names, cached)
	if err != nil {
		return fmt.Errorf("resolving genres: %w", err)
	}
	if len(res.GaveUp) > 0 {
		p.logger.Warn("Artists left without genres", "count", len(res.GaveUp))
	}

	saveErr := p.cache.Save(res.Cache)
	if saveErr != nil {
		p.logger.Error("Genre cache not saved, new lookups will be repeated next run", "err", saveErr)
	} else {
		p.logger.Info("Saved genre cache", "artists", len(res.Cache))
	}
	m.CacheEntries(len(res.Cache))

	results := report.Results{
		Tracks:       trackRows,
		Artists:      artistRows,
		Genres:       ranking.Genres(artists, res.Genres),
		ArtistGenres: res.Genres,
	}

	if config.YAML {
		err = report.WriteYAML(p.out, report.NewSummary(results, config.Print, p.now()))
	} else {
		err = report.WriteTables(p.out, results, config.Print)
	}
	if err != nil {
		return err
	}

	if config.ExportDir != "" {
		paths, err := report.Export(config.ExportDir, results, config.Export)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		for _, path := range paths {
			p.logger.Info("Exported", "file", path)
		}
	}

	if config.MetricsFile != "" {
		if err := m.WriteTextfile(config.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if saveErr != nil {
		return fmt.Errorf("saving genre cache: %w", saveErr)
	}
	return nil
}

// isPersistFailure reports whether err only means the cache could not be
// saved, with every report already written.
func isPersistFailure(err error) bool {
	return errors.Is(err, genre.ErrPersist)
}
