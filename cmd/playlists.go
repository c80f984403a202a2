package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/metrics"
	"github.com/ademuri/streaming-history/internal/ranking"
	"github.com/ademuri/streaming-history/internal/report"
	"github.com/ademuri/streaming-history/internal/stats"
)

type PlaylistConfig struct {
	DataDir     string
	Since       string
	MinMsPlayed int64

	// Genre selects tracks whose artist has a genre containing this string.
	// Empty selects the top tracks overall.
	Genre          string
	ExcludeArtists []string
	Limit          int

	// URIsFile receives one track URI per line when set.
	URIsFile string
}

// playlistTracksCmd represents the playlist-tracks command
var playlistTracksCmd = &cobra.Command{
	Use:   "playlist-tracks",
	Short: "Lists the track URIs for a playlist",
	Long: `Picks the most played tracks, either overall (usually with --since) or for one
genre, and prints them in order. Genre selection uses the genre cache written
by analyze; artists missing from the cache are never matched.

Artists listed in exclude_artists are left out of genre playlists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(os.Stderr, viper.GetString("log_level"))
		if err != nil {
			return err
		}

		config := PlaylistConfig{
			DataDir:        viper.GetString("data_dir"),
			Since:          viper.GetString("since"),
			MinMsPlayed:    viper.GetInt64("min_ms"),
			Genre:          viper.GetString("genre"),
			ExcludeArtists: viper.GetStringSlice("exclude_artists"),
			Limit:          viper.GetInt("limit"),
			URIsFile:       viper.GetString("uris_file"),
		}

		var cache genre.Store
		if config.Genre != "" {
			store, closer, err := openGenreStore(cacheConfigFromViper())
			if err != nil {
				return err
			}
			defer closer.Close()
			cache = store
		}

		return selectPlaylistTracks(config, afero.NewOsFs(), cache, logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(playlistTracksCmd)

	var genreName string
	playlistTracksCmd.Flags().StringVarP(&genreName, "genre", "g", "", "Only tracks by artists tagged with this genre (substring, any case)")
	viper.BindPFlag("genre", playlistTracksCmd.Flags().Lookup("genre"))

	var exclude []string
	playlistTracksCmd.Flags().StringSliceVar(&exclude, "exclude_artists", nil, "Artists to leave out of genre playlists")
	viper.BindPFlag("exclude_artists", playlistTracksCmd.Flags().Lookup("exclude_artists"))

	var limit int
	playlistTracksCmd.Flags().IntVarP(&limit, "limit", "n", 100, "Number of tracks to select")
	viper.BindPFlag("limit", playlistTracksCmd.Flags().Lookup("limit"))

	var urisFile string
	playlistTracksCmd.Flags().StringVarP(&urisFile, "uris_file", "o", "", "Write the selected track URIs to this file")
	viper.BindPFlag("uris_file", playlistTracksCmd.Flags().Lookup("uris_file"))
}

func selectPlaylistTracks(config PlaylistConfig, fs afero.Fs, cache genre.Store, logger *log.Logger, out io.Writer) error {
	records, err := loadRecords(fs, config.DataDir, config.Since, config.MinMsPlayed, metrics.New(), logger)
	if err != nil {
		return err
	}
	tracks := stats.AggregateTracks(records)

	var rows []ranking.Row[*stats.TrackStat]
	title := "TOP TRACKS"
	if config.Genre == "" {
		rows = ranking.Tracks(tracks)
	} else {
		genres, err := cache.Load()
		if err != nil {
			return fmt.Errorf("loading genre cache: %w", err)
		}
		rows = ranking.GenreTracks(tracks, genres, config.Genre, config.ExcludeArtists)
		title = fmt.Sprintf("TOP %s TRACKS", config.Genre)
	}
	rows = ranking.Top(rows, config.Limit)

	if len(rows) == 0 {
		logger.Warn("No tracks matched")
	}
	if err := report.WriteTrackList(out, title, rows); err != nil {
		return err
	}

	if config.URIsFile == "" {
		return nil
	}
	f, err := fs.Create(config.URIsFile)
	if err != nil {
		return fmt.Errorf("creating %s: %w", config.URIsFile, err)
	}
	if err := report.WriteURIs(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", config.URIsFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", config.URIsFile, err)
	}
	logger.Info("Wrote track URIs", "file", config.URIsFile, "tracks", len(rows))
	return nil
}
