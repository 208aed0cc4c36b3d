// ABOUTME: Transactional multi-table persist for one workout detail.
// ABOUTME: Instructor upsert, workout insert, and ordered song rows commit atomically.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/pelosync/internal/models"
)

// WorkoutExists reports whether a workout ID is already persisted. This is
// the authoritative dedup gate; the timestamp watermark only bounds query
// volume.
func (d *DB) WorkoutExists(id string) (bool, error) {
	var one int
	err := d.db.QueryRow("SELECT 1 FROM workouts WHERE id = ? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check workout %s: %w", id, err)
	}
	return true, nil
}

// MaxScheduledStart returns the newest scheduled_start_time among persisted
// workouts. ok is false for an empty store.
func (d *DB) MaxScheduledStart() (int64, bool, error) {
	var max sql.NullInt64
	err := d.db.QueryRow("SELECT MAX(scheduled_start_time) FROM workouts").Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max scheduled start: %w", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return max.Int64, true, nil
}

// SaveDetail writes one workout detail in a single transaction: instructor
// upsert, workout insert, then song rows in playlist order. Either all
// three land or none do. A workout ID that already exists commits nothing
// and returns nil, so re-ingesting a known ID is a safe no-op.
func (d *DB) SaveDetail(detail *models.WorkoutDetail) error {
	if detail == nil || detail.ID == "" {
		return fmt.Errorf("save detail: missing workout id")
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var instructorID sql.NullString
	if inst := detail.Instructor; inst != nil && inst.ID != "" {
		name := inst.Name
		if name == "" {
			name = "Unknown Instructor"
		}
		_, err = tx.Exec(`
			INSERT INTO instructors (id, name, image_url)
			VALUES (?, ?, ?)
			ON CONFLICT (id) DO NOTHING`,
			inst.ID, name, nullable(inst.ImageURL),
		)
		if err != nil {
			return fmt.Errorf("upsert instructor %s: %w", inst.ID, err)
		}
		instructorID = sql.NullString{String: inst.ID, Valid: true}
	}

	res, err := tx.Exec(`
		INSERT INTO workouts (
			id, title, duration, instructor_id, description,
			fitness_discipline, image_url, difficulty_rating_avg,
			scheduled_start_time, full_details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		detail.ID,
		detail.Title,
		detail.DurationSeconds,
		instructorID,
		nullable(detail.Description),
		nullable(detail.FitnessDiscipline),
		nullable(detail.ImageURL),
		detail.DifficultyRatingAvg,
		detail.ScheduledStart,
		string(detail.Raw),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert workout %s: %w", detail.ID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert workout %s: %w", detail.ID, err)
	}
	if inserted == 0 {
		// Already ingested by an earlier run; leave every table untouched.
		return tx.Commit()
	}

	for _, song := range detail.Songs {
		_, err = tx.Exec(`
			INSERT INTO songs (workout_id, title, artist_names, image_url, playlist_order)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (workout_id, title) DO NOTHING`,
			detail.ID,
			song.Title,
			song.ArtistNames,
			nullable(song.ImageURL),
			song.PlaylistOrder,
		)
		if err != nil {
			return fmt.Errorf("insert song %q for %s: %w", song.Title, detail.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit workout %s: %w", detail.ID, err)
	}
	return nil
}

// RecordRun stores the summary row for a completed sync run.
func (d *DB) RecordRun(run *models.SyncSummary) error {
	_, err := d.db.Exec(`
		INSERT INTO sync_runs (
			id, started_at, finished_at, pages,
			new_workouts, existing_workouts, failed_workouts
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID.String(),
		run.StartedAt.Format(time.RFC3339),
		run.FinishedAt.Format(time.RFC3339),
		run.Pages,
		run.New,
		run.Existing,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
