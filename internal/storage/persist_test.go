// ABOUTME: Tests for the transactional workout persist path.
// ABOUTME: Covers idempotent re-ingest, rollback on failure, and watermark reads.
package storage

import (
	"testing"
	"time"

	"github.com/harperreed/pelosync/internal/models"
)

func TestSaveDetailPersistsAllTables(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveDetail(sampleDetail("w1", 1700000000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	exists, err := db.WorkoutExists("w1")
	if err != nil {
		t.Fatalf("WorkoutExists failed: %v", err)
	}
	if !exists {
		t.Error("workout should exist after save")
	}

	songs, err := db.ListSongs("w1")
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(songs))
	}

	instructors, err := db.ListInstructors()
	if err != nil {
		t.Fatalf("ListInstructors failed: %v", err)
	}
	if len(instructors) != 1 || instructors[0].Name != "Sam Yo" {
		t.Errorf("unexpected instructors: %+v", instructors)
	}
}

func TestSaveDetailIdempotent(t *testing.T) {
	db := setupTestDB(t)

	detail := sampleDetail("w1", 1700000000)
	if err := db.SaveDetail(detail); err != nil {
		t.Fatalf("first SaveDetail failed: %v", err)
	}

	// Re-ingesting the same ID must be a no-op, not an error and not a
	// duplicate.
	modified := sampleDetail("w1", 1700000000)
	modified.Title = "changed title"
	if err := db.SaveDetail(modified); err != nil {
		t.Fatalf("second SaveDetail failed: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Workouts != 1 {
		t.Errorf("expected 1 workout, got %d", stats.Workouts)
	}
	if stats.Songs != 3 {
		t.Errorf("expected 3 songs, got %d", stats.Songs)
	}

	got, err := db.GetWorkout("w1")
	if err != nil {
		t.Fatalf("GetWorkout failed: %v", err)
	}
	if got.Title != "30 min Ride w1" {
		t.Errorf("re-ingest should not overwrite, got title %q", got.Title)
	}
}

func TestSaveDetailRollsBackOnSongFailure(t *testing.T) {
	db := setupTestDB(t)

	detail := sampleDetail("w1", 1700000000)
	// Negative playlist order violates the schema CHECK, forcing the song
	// insert to fail partway through the transaction.
	detail.Songs[1].PlaylistOrder = -1

	if err := db.SaveDetail(detail); err == nil {
		t.Fatal("expected SaveDetail to fail on invalid playlist order")
	}

	exists, err := db.WorkoutExists("w1")
	if err != nil {
		t.Fatalf("WorkoutExists failed: %v", err)
	}
	if exists {
		t.Error("workout row must not survive a rolled-back save")
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Songs != 0 || stats.Instructors != 0 {
		t.Errorf("rollback left partial rows: %+v", stats)
	}
}

func TestSaveDetailMissingID(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveDetail(&models.WorkoutDetail{}); err == nil {
		t.Error("expected error for detail without id")
	}
	if err := db.SaveDetail(nil); err == nil {
		t.Error("expected error for nil detail")
	}
}

func TestSaveDetailWithoutInstructor(t *testing.T) {
	db := setupTestDB(t)

	detail := sampleDetail("w1", 1700000000)
	detail.Instructor = nil
	if err := db.SaveDetail(detail); err != nil {
		t.Fatalf("SaveDetail without instructor failed: %v", err)
	}

	got, err := db.GetWorkout("w1")
	if err != nil {
		t.Fatalf("GetWorkout failed: %v", err)
	}
	if got.Instructor != nil {
		t.Errorf("expected nil instructor, got %+v", got.Instructor)
	}
}

func TestMaxScheduledStart(t *testing.T) {
	db := setupTestDB(t)

	_, ok, err := db.MaxScheduledStart()
	if err != nil {
		t.Fatalf("MaxScheduledStart failed: %v", err)
	}
	if ok {
		t.Error("empty store should report no watermark")
	}

	for i, ts := range []int64{1700000000, 1700300000, 1700100000} {
		if err := db.SaveDetail(sampleDetail(string(rune('a'+i)), ts)); err != nil {
			t.Fatalf("SaveDetail failed: %v", err)
		}
	}

	max, ok, err := db.MaxScheduledStart()
	if err != nil {
		t.Fatalf("MaxScheduledStart failed: %v", err)
	}
	if !ok || max != 1700300000 {
		t.Errorf("expected max 1700300000, got %d (ok=%v)", max, ok)
	}
}

func TestRecordRun(t *testing.T) {
	db := setupTestDB(t)

	run := models.NewSyncSummary()
	run.FinishedAt = time.Now()
	run.Pages = 2
	run.New = 5
	run.Existing = 10
	run.Failed = 1

	if err := db.RecordRun(run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.SyncRuns != 1 {
		t.Errorf("expected 1 recorded run, got %d", stats.SyncRuns)
	}
}
