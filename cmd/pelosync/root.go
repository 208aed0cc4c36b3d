// ABOUTME: Root Cobra command for pelosync CLI.
// ABOUTME: Loads configuration and builds the logger for every subcommand.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/pelosync/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pelosync",
	Short: "Incremental Peloton workout and playlist sync",
	Long: `Pelosync incrementally syncs your Peloton workout library - rides,
instructors, and playlists - into a local SQLite database.

QUICK START:

  $ export PELOTON_USERNAME=you@example.com
  $ export PELOTON_PASSWORD=secret
  $ pelosync sync                  # Fetch everything new since last run
  $ pelosync list                  # Show recent synced workouts
  $ pelosync list songs "daft"     # Search playlist songs

HOW SYNC WORKS:

  Each run reuses the saved session token (logging in only when none is
  cached), pages through the archived-ride listing newest first, skips
  workouts already in the database, and stops as soon as a full page has
  nothing new. Each new workout commits atomically together with its
  instructor and playlist. Failed items are skipped and counted, never
  retried; run the tool again to pick them up.

BACKUPS & EXPORT:

  $ pelosync export json -o library.json   # Portable JSON export
  $ pelosync backup                        # Gzipped SQL dump
  $ pelosync backup list                   # Show existing backups
  $ pelosync reshape                       # Rebuild slim web_workouts table

MCP INTEGRATION:

  Run 'pelosync mcp' to expose the library to MCP-compatible AI
  assistants:

  {
    "mcpServers": {
      "pelosync": { "command": "pelosync", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  The database, session token, progress checkpoint, and backups live
  under ~/.local/share/pelosync by default. Settings come from
  ~/.config/pelosync/config.yaml and PELOSYNC_*/PELOTON_* environment
  variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger = newLogger(cfg.Logging)
		return nil
	},
}

// newLogger builds the zerolog logger per the logging config.
func newLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if lc.Format == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log.Level(level).With().Timestamp().Logger()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(reshapeCmd)
	rootCmd.AddCommand(mcpCmd)
}
