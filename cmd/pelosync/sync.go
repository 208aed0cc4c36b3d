// ABOUTME: CLI command running one incremental sync against the Peloton API.
// ABOUTME: Wires session store, client, tracker, and engine, then prints the summary.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/pelosync/internal/peloton"
	"github.com/harperreed/pelosync/internal/storage"
	syncengine "github.com/harperreed/pelosync/internal/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch new workouts from Peloton",
	Long: `Run one incremental sync against the Peloton API.

The run reuses the cached session token when one exists, otherwise logs
in with PELOTON_USERNAME/PELOTON_PASSWORD and caches the new token.
Workouts already in the database are skipped without a detail fetch, and
paging stops as soon as a full page contains nothing new.

Per-item failures (a detail fetch or a database write) are skipped and
counted; they never abort the run and are never retried within it. The
exit code is non-zero only when authentication or configuration fails.

EXAMPLES:

  pelosync sync                 # Normal incremental run
  PELOSYNC_SYNC_PAGE_SIZE=25 pelosync sync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateCredentials(); err != nil {
			return err
		}

		db, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		sessions := peloton.NewSessionStore(
			cfg.Sync.SessionPath,
			cfg.Peloton.BaseURL,
			cfg.Peloton.Username,
			cfg.Peloton.Password,
			nil,
			logger,
		)
		client := peloton.NewClient(
			cfg.Peloton.BaseURL,
			cfg.Peloton.Category,
			sessions,
			cfg.Peloton.PageDelay,
			cfg.Peloton.DetailDelay,
			logger,
		)
		tracker := syncengine.NewTracker(cfg.Sync.ProgressPath, cfg.Sync.Overlap, cfg.Sync.Lookback)

		engine := syncengine.NewEngine(client, db, tracker, syncengine.Options{
			PageSize:  cfg.Sync.PageSize,
			BackupDir: cfg.Sync.BackupDir,
		}, logger)

		summary, err := engine.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		color.Green("✓ Sync complete")
		fmt.Printf("  Pages checked:     %d\n", summary.Pages)
		fmt.Printf("  New workouts:      %d\n", summary.New)
		fmt.Printf("  Already in DB:     %d\n", summary.Existing)
		if summary.Failed > 0 {
			color.Yellow("  Failed (skipped):  %d", summary.Failed)
		} else {
			fmt.Printf("  Failed (skipped):  %d\n", summary.Failed)
		}
		fmt.Printf("  Total seen:        %d\n", summary.Seen())
		return nil
	},
}
