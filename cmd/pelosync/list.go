// ABOUTME: CLI commands for listing workouts and searching songs.
// ABOUTME: Read-only views over the local library database.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pelosync/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listDiscipline string
	listLimit      int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List synced workouts",
	Long: `List recent workouts from the local library.

OUTPUT FORMAT:

  Each line shows: DATE  DISCIPLINE  DURATION  TITLE

EXAMPLES:

  pelosync list                        # Last 20 workouts
  pelosync list -n 50                  # Last 50
  pelosync list --discipline cycling   # Only cycling rides
  pelosync list songs "daft punk"      # Search playlist songs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		workouts, err := db.ListWorkouts(listDiscipline, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts found. Run 'pelosync sync' first.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			when := time.Unix(w.ScheduledStart, 0).Format("2006-01-02 15:04")
			fmt.Printf("%s %s %s %s\n",
				faint.Sprint(when),
				padRight(w.FitnessDiscipline, 10),
				padRight(formatDuration(w.DurationSeconds), 7),
				w.Title)
		}
		return nil
	},
}

var listSongsCmd = &cobra.Command{
	Use:   "songs <query>",
	Short: "Search playlist songs",
	Long: `Search songs across all synced playlists by title or artist name.

EXAMPLES:

  pelosync list songs "daft punk"
  pelosync list songs beyonce`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		songs, err := db.SearchSongs(args[0], listLimit)
		if err != nil {
			return fmt.Errorf("failed to search songs: %w", err)
		}

		if len(songs) == 0 {
			fmt.Println("No songs matched.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range songs {
			artists := s.ArtistNames
			if artists == "" {
				artists = "(unknown artist)"
			}
			fmt.Printf("%s - %s %s\n", s.Title, artists, faint.Sprintf("(workout %s)", s.WorkoutID))
		}
		return nil
	},
}

// formatDuration renders seconds as "45m" or "1h15m".
func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// padRight pads s with spaces to at least width characters.
func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

func init() {
	listCmd.Flags().StringVarP(&listDiscipline, "discipline", "d", "", "Filter by fitness discipline")
	listCmd.PersistentFlags().IntVarP(&listLimit, "limit", "n", 20, "Maximum results")
	listCmd.AddCommand(listSongsCmd)
}
