// ABOUTME: CLI command rebuilding the denormalized web_workouts table.
// ABOUTME: Drops and recreates the slim projection without raw payloads.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/pelosync/internal/storage"
	"github.com/spf13/cobra"
)

var reshapeCmd = &cobra.Command{
	Use:   "reshape",
	Short: "Rebuild the denormalized web_workouts table",
	Long: `Rebuild the web_workouts table: the workouts projection without the
raw full_details payloads, small enough to ship to a hosted database or
serve directly to a web frontend.

The rebuild drops and recreates the table, so run it after each sync
that should be reflected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		count, err := db.Reshape()
		if err != nil {
			return fmt.Errorf("reshape failed: %w", err)
		}

		color.Green("✓ web_workouts rebuilt (%d rows)", count)
		return nil
	},
}
