// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB and workout detail fixtures.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/harperreed/pelosync/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// sampleDetail builds a full workout detail with an instructor and a
// three-song playlist.
func sampleDetail(id string, scheduledStart int64) *models.WorkoutDetail {
	return &models.WorkoutDetail{
		ID:                  id,
		Title:               "30 min Ride " + id,
		DurationSeconds:     1800,
		Description:         "a ride",
		FitnessDiscipline:   "cycling",
		ImageURL:            "https://img.example/" + id + ".png",
		DifficultyRatingAvg: 7.2,
		ScheduledStart:      scheduledStart,
		Instructor: &models.Instructor{
			ID:   "inst-1",
			Name: "Sam Yo",
		},
		Songs: []models.Song{
			{WorkoutID: id, Title: "Song A", ArtistNames: "Daft Punk", PlaylistOrder: 0},
			{WorkoutID: id, Title: "Song B", ArtistNames: "Beyonce, Jay-Z", PlaylistOrder: 1},
			{WorkoutID: id, Title: "Song C", ArtistNames: "Caribou", PlaylistOrder: 2},
		},
		Raw: json.RawMessage(fmt.Sprintf(`{"ride":{"id":%q}}`, id)),
	}
}
