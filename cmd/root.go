/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/streaming-history/internal/history"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streaming-history",
	Short: "Ranks and genre-tags a streaming history export",
	Long: `Reads the Streaming_History_Audio_*.json files of a streaming history export,
counts plays per track and artist, and looks up genres for the top artists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isPersistFailure(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.streaming-history.yaml)")

	var dataDir string
	rootCmd.PersistentFlags().StringVarP(
		&dataDir, "data_dir", "d", "./data", "Directory holding the streaming history export")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data_dir"))

	var cacheBackend string
	rootCmd.PersistentFlags().StringVar(
		&cacheBackend, "cache_backend", "json", "Genre cache format: json or sqlite")
	viper.BindPFlag("cache_backend", rootCmd.PersistentFlags().Lookup("cache_backend"))

	var cachePath string
	rootCmd.PersistentFlags().StringVar(
		&cachePath, "cache_path", "", "Genre cache location (default is genre_cache.json or genre_cache.db in data_dir)")
	viper.BindPFlag("cache_path", rootCmd.PersistentFlags().Lookup("cache_path"))

	var tagSource string
	rootCmd.PersistentFlags().StringVar(
		&tagSource, "tag_source", "musicbrainz", "Where genres come from: musicbrainz or lastfm")
	viper.BindPFlag("tag_source", rootCmd.PersistentFlags().Lookup("tag_source"))

	var apiKey string
	rootCmd.PersistentFlags().StringVar(&apiKey, "api_key", "", "last.fm API key")
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api_key"))

	var secret string
	rootCmd.PersistentFlags().StringVar(&secret, "secret", "", "last.fm secret")
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))

	var userAgent string
	rootCmd.PersistentFlags().StringVar(
		&userAgent, "user_agent", "streaming-history/1.0", "User-Agent sent to the tag source")
	viper.BindPFlag("user_agent", rootCmd.PersistentFlags().Lookup("user_agent"))

	var since string
	rootCmd.PersistentFlags().StringVar(
		&since, "since", "", "Only count plays on or after this date (yyyy, yyyy-mm or yyyy-mm-dd)")
	viper.BindPFlag("since", rootCmd.PersistentFlags().Lookup("since"))

	var minMs int64
	rootCmd.PersistentFlags().Int64Var(
		&minMs, "min_ms", history.DefaultMinMsPlayed, "Plays shorter than this many milliseconds are skipped")
	viper.BindPFlag("min_ms", rootCmd.PersistentFlags().Lookup("min_ms"))

	var metricsFile string
	rootCmd.PersistentFlags().StringVar(
		&metricsFile, "metrics_file", "", "Write pipeline counters to this file in Prometheus text format")
	viper.BindPFlag("metrics_file", rootCmd.PersistentFlags().Lookup("metrics_file"))

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is normal.
	godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".streaming-history" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".streaming-history")
	}

	viper.SetEnvPrefix("streaming_history")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}
