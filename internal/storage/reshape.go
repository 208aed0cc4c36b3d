// ABOUTME: Denormalized web_workouts table rebuild.
// ABOUTME: Drops and recreates the slim projection without raw payloads.
package storage

import "fmt"

// Reshape rebuilds the denormalized web_workouts table: the workouts
// projection without the full_details blob, suitable for serving to a web
// frontend or shipping to a hosted database. The rebuild is destructive
// and idempotent.
func (d *DB) Reshape() (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin reshape: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DROP TABLE IF EXISTS web_workouts"); err != nil {
		return 0, fmt.Errorf("drop web_workouts: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE web_workouts AS
		SELECT id, title, duration, image_url, instructor_id, description,
		       fitness_discipline, scheduled_start_time, difficulty_rating_avg
		FROM workouts`)
	if err != nil {
		return 0, fmt.Errorf("create web_workouts: %w", err)
	}

	if _, err := tx.Exec("CREATE INDEX idx_web_workouts_scheduled ON web_workouts(scheduled_start_time DESC)"); err != nil {
		return 0, fmt.Errorf("index web_workouts: %w", err)
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM web_workouts").Scan(&count); err != nil {
		return 0, fmt.Errorf("count web_workouts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reshape: %w", err)
	}
	return count, nil
}
