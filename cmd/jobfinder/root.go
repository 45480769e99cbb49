package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfinder/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobfinder",
	Short: "Search LinkedIn, Indeed and Glassdoor in one go",
	Long:  "jobfinder normalizes a job search with a language model, fetches postings from scraping actors and ranks them by relevance.",
	// With no subcommand, run the HTTP server.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBFINDER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBFINDER_CONFIG env var > "./config.yaml".
func loadConfig(path string) (*config.Config, error) {
	return config.Load(config.ResolvePath(path))
}

func setupLogger(w io.Writer, cfg config.LogConfig, dbg bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if dbg {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// bootLogger is used before the config is known.
func bootLogger() *slog.Logger {
	return setupLogger(os.Stderr, config.LogConfig{Level: "info"}, debug)
}

// silentLogger discards everything; TUI modes use it since log output
// written before the alt screen starts corrupts the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
