package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history/internal/genre"
	"github.com/ademuri/streaming-history/internal/report"
)

var genreCacheCmd = &cobra.Command{
	Use:   "genre-cache",
	Short: "Inspects the genre cache",
}

var genreCacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes the genre cache",
	Long: `Prints how many artists are cached, how many of them have no genres, and the
most common genres.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, closer, err := openGenreStore(cacheConfigFromViper())
		if err != nil {
			return err
		}
		defer closer.Close()
		return printCacheStats(cache, viper.GetInt("top_tags"), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(genreCacheCmd)
	genreCacheCmd.AddCommand(genreCacheStatsCmd)

	var topTags int
	genreCacheStatsCmd.Flags().IntVar(&topTags, "top_tags", 20, "Number of genres to list")
	viper.BindPFlag("top_tags", genreCacheStatsCmd.Flags().Lookup("top_tags"))
}

func printCacheStats(cache genre.Store, topTags int, out io.Writer) error {
	genres, err := cache.Load()
	if err != nil {
		return fmt.Errorf("loading genre cache: %w", err)
	}
	return report.WriteCacheStats(out, genre.Stats(genres), topTags)
}
