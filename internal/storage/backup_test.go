// ABOUTME: Tests for gzipped SQL backups and backup listing.
// ABOUTME: Verifies transaction wrapping, quoting, and newest-first ordering.
package storage

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("backup is not valid gzip: %v", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	return string(data)
}

func TestBackupDumpsAllTables(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()

	detail := sampleDetail("w1", 1700000000)
	detail.Title = "Bob's Ride"
	if err := db.SaveDetail(detail); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	path, err := db.Backup(dir)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if !strings.HasSuffix(path, ".sql.gz") {
		t.Errorf("unexpected backup name: %s", path)
	}

	dump := readBackup(t, path)
	if !strings.HasPrefix(dump, "-- pelosync backup") {
		t.Error("dump missing header comment")
	}
	if !strings.Contains(dump, "BEGIN TRANSACTION;") || !strings.Contains(dump, "COMMIT;") {
		t.Error("dump must be transaction-wrapped")
	}
	for _, table := range []string{"instructors", "workouts", "songs"} {
		if !strings.Contains(dump, "INSERT INTO "+table) {
			t.Errorf("dump missing rows for %s", table)
		}
	}
	// Embedded quotes must be doubled so the dump restores cleanly.
	if !strings.Contains(dump, "Bob''s Ride") {
		t.Error("dump did not escape embedded quote")
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()

	first, err := db.Backup(dir)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := db.Backup(dir)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	backups, err := ListBackups(dir)
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if backups[0].Path != second || backups[1].Path != first {
		t.Errorf("backups not newest first: %+v", backups)
	}
	if backups[0].SizeBytes <= 0 {
		t.Error("backup size should be positive")
	}
}

func TestListBackupsMissingDir(t *testing.T) {
	backups, err := ListBackups("/nonexistent/backups")
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %+v", backups)
	}
}
