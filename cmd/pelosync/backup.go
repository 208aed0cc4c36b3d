// ABOUTME: CLI commands for creating and listing SQL backups.
// ABOUTME: Backups are gzipped, transaction-wrapped INSERT dumps.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/pelosync/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a gzipped SQL backup",
	Long: `Create a portable, gzip-compressed SQL dump of the library.

The dump covers instructors, workouts (including raw payloads), and
songs, wrapped in a single transaction so a restore is all-or-nothing:

  gunzip -c pelosync_<id>.sql.gz | sqlite3 restored.db

EXAMPLES:

  pelosync backup         # Write a backup into the backups directory
  pelosync backup list    # Show existing backups with sizes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		path, err := db.Backup(cfg.Sync.BackupDir)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		color.Green("✓ Backup written to %s", path)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List existing backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := storage.ListBackups(cfg.Sync.BackupDir)
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}

		if len(backups) == 0 {
			fmt.Println("No backups found. Run 'pelosync backup' first.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, b := range backups {
			fmt.Printf("%s %8.2f MB %s\n",
				faint.Sprint(b.CreatedAt.Format("2006-01-02 15:04")),
				float64(b.SizeBytes)/1024/1024,
				b.Name)
		}
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupListCmd)
}
