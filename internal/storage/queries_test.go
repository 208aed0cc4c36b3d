// ABOUTME: Tests for read queries over the library.
// ABOUTME: Covers listing, playlist ordering, song search, and stats.
package storage

import (
	"testing"
)

func TestListWorkoutsNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	for _, w := range []struct {
		id string
		ts int64
	}{
		{"old", 1700000000},
		{"new", 1700200000},
		{"mid", 1700100000},
	} {
		if err := db.SaveDetail(sampleDetail(w.id, w.ts)); err != nil {
			t.Fatalf("SaveDetail failed: %v", err)
		}
	}

	workouts, err := db.ListWorkouts("", 0)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(workouts) != 3 {
		t.Fatalf("expected 3 workouts, got %d", len(workouts))
	}
	order := []string{"new", "mid", "old"}
	for i, want := range order {
		if workouts[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, workouts[i].ID, want)
		}
	}
}

func TestListWorkoutsDisciplineFilterAndLimit(t *testing.T) {
	db := setupTestDB(t)

	cycling := sampleDetail("c1", 1700000000)
	yoga := sampleDetail("y1", 1700100000)
	yoga.FitnessDiscipline = "yoga"
	if err := db.SaveDetail(cycling); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}
	if err := db.SaveDetail(yoga); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	got, err := db.ListWorkouts("Cycling", 10)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("discipline filter should match case-insensitively, got %+v", got)
	}

	limited, err := db.ListWorkouts("", 1)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "y1" {
		t.Errorf("limit 1 should return newest only, got %+v", limited)
	}
}

func TestGetWorkoutWithPlaylist(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveDetail(sampleDetail("w1", 1700000000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	got, err := db.GetWorkout("w1")
	if err != nil {
		t.Fatalf("GetWorkout failed: %v", err)
	}
	if got.Title != "30 min Ride w1" {
		t.Errorf("Title mismatch: got %q", got.Title)
	}
	if len(got.Songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(got.Songs))
	}
	for i, s := range got.Songs {
		if s.PlaylistOrder != i {
			t.Errorf("song %d out of playlist order: got order %d", i, s.PlaylistOrder)
		}
	}
	if got.Songs[0].Title != "Song A" || got.Songs[2].Title != "Song C" {
		t.Errorf("playlist order not preserved: %+v", got.Songs)
	}
}

func TestGetWorkoutNotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetWorkout("nope"); err == nil {
		t.Error("expected error for unknown workout")
	}
}

func TestSearchSongs(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveDetail(sampleDetail("w1", 1700000000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	byArtist, err := db.SearchSongs("daft", 10)
	if err != nil {
		t.Fatalf("SearchSongs failed: %v", err)
	}
	if len(byArtist) != 1 || byArtist[0].Title != "Song A" {
		t.Errorf("artist search mismatch: %+v", byArtist)
	}

	byTitle, err := db.SearchSongs("Song", 10)
	if err != nil {
		t.Fatalf("SearchSongs failed: %v", err)
	}
	if len(byTitle) != 3 {
		t.Errorf("title search should match all 3 songs, got %d", len(byTitle))
	}

	none, err := db.SearchSongs("zzzzz", 10)
	if err != nil {
		t.Fatalf("SearchSongs failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %+v", none)
	}
}
