// ABOUTME: Tests for the web_workouts rebuild.
// ABOUTME: Verifies row counts, idempotence, and exclusion of raw payloads.
package storage

import "testing"

func TestReshapeBuildsProjection(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveDetail(sampleDetail("w1", 1700000000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}
	if err := db.SaveDetail(sampleDetail("w2", 1700100000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	count, err := db.Reshape()
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}

	// The projection must not carry the raw payload column.
	rows, err := db.db.Query("SELECT * FROM web_workouts LIMIT 1")
	if err != nil {
		t.Fatalf("query web_workouts: %v", err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	for _, col := range cols {
		if col == "full_details" {
			t.Error("web_workouts must not include full_details")
		}
	}
}

func TestReshapeIdempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveDetail(sampleDetail("w1", 1700000000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		count, err := db.Reshape()
		if err != nil {
			t.Fatalf("Reshape run %d failed: %v", i, err)
		}
		if count != 1 {
			t.Errorf("run %d: expected 1 row, got %d", i, count)
		}
	}

	if err := db.SaveDetail(sampleDetail("w2", 1700100000)); err != nil {
		t.Fatalf("SaveDetail failed: %v", err)
	}
	count, err := db.Reshape()
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if count != 2 {
		t.Errorf("rebuild should pick up new workouts, got %d", count)
	}
}
