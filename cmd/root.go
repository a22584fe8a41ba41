package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/lectio/internal/config"
)

var (
	cfgFile string
	quiet   bool
	output  string
	dataDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lectio",
	Short: "A CLI tool for curating a research reading list from subreddit submissions",
	Long: `Lectio watches research subreddits and turns their submissions into a
curated reading list. It recovers the paper behind each post, distills the
submitter's comment threads into a summary, attaches bibliographic metadata
from Crossref, and publishes markdown/CSV snapshots and a Zotero library.

"Lectio" is Latin for "a reading".`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lectio.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (suppress progress messages)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "human", "output format (human, json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the per-subreddit stores")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Zotero credentials usually live in a .env next to the checkout.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home or the working directory with name
		// ".lectio" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lectio")
	}

	config.SetDefaults()

	viper.SetEnvPrefix("lectio")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if dataDir != "" {
		viper.Set("data_dir", dataDir)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && !quiet {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	setupLogger()
}

// setupLogger routes slog to stderr so stdout stays clean for command
// output. LOG_LEVEL selects verbosity; --quiet raises the floor to WARN.
func setupLogger() {
	level := slog.LevelInfo

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
