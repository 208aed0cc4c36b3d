// ABOUTME: Read queries over the synced library.
// ABOUTME: Recent workouts, songs per workout, song search, and counts.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/pelosync/internal/models"
)

// ListWorkouts returns workouts ordered newest first, optionally filtered
// by fitness discipline. limit <= 0 returns everything.
func (d *DB) ListWorkouts(discipline string, limit int) ([]*models.WorkoutDetail, error) {
	query := `
		SELECT id, title, duration, instructor_id, description,
		       fitness_discipline, image_url, difficulty_rating_avg,
		       scheduled_start_time
		FROM workouts
	`
	var args []interface{}
	if discipline != "" {
		query += " WHERE LOWER(fitness_discipline) = LOWER(?)"
		args = append(args, discipline)
	}
	query += " ORDER BY scheduled_start_time DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*models.WorkoutDetail
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// GetWorkout retrieves one workout with its playlist, ordered by
// playlist_order.
func (d *DB) GetWorkout(id string) (*models.WorkoutDetail, error) {
	row := d.db.QueryRow(`
		SELECT id, title, duration, instructor_id, description,
		       fitness_discipline, image_url, difficulty_rating_avg,
		       scheduled_start_time
		FROM workouts
		WHERE id = ?`, id)

	w, err := scanWorkoutRow(row)
	if err != nil {
		return nil, fmt.Errorf("get workout %s: %w", id, err)
	}

	songs, err := d.ListSongs(id)
	if err != nil {
		return nil, err
	}
	w.Songs = songs
	return w, nil
}

// ListSongs returns the playlist of one workout in playlist order.
func (d *DB) ListSongs(workoutID string) ([]models.Song, error) {
	rows, err := d.db.Query(`
		SELECT workout_id, title, artist_names, image_url, playlist_order
		FROM songs
		WHERE workout_id = ?
		ORDER BY playlist_order ASC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var s models.Song
		var imageURL sql.NullString
		if err := rows.Scan(&s.WorkoutID, &s.Title, &s.ArtistNames, &imageURL, &s.PlaylistOrder); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		s.ImageURL = imageURL.String
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// SearchSongs finds songs whose title or artists match the query substring.
func (d *DB) SearchSongs(query string, limit int) ([]models.Song, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(`
		SELECT workout_id, title, artist_names, image_url, playlist_order
		FROM songs
		WHERE title LIKE '%' || ? || '%' OR artist_names LIKE '%' || ? || '%'
		ORDER BY title ASC
		LIMIT ?`, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var s models.Song
		var imageURL sql.NullString
		if err := rows.Scan(&s.WorkoutID, &s.Title, &s.ArtistNames, &imageURL, &s.PlaylistOrder); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		s.ImageURL = imageURL.String
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// ListInstructors returns all instructors ordered by name.
func (d *DB) ListInstructors() ([]*models.Instructor, error) {
	rows, err := d.db.Query(`SELECT id, name, image_url FROM instructors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	defer rows.Close()

	var instructors []*models.Instructor
	for rows.Next() {
		var inst models.Instructor
		var imageURL sql.NullString
		if err := rows.Scan(&inst.ID, &inst.Name, &imageURL); err != nil {
			return nil, fmt.Errorf("scan instructor: %w", err)
		}
		inst.ImageURL = imageURL.String
		instructors = append(instructors, &inst)
	}
	return instructors, rows.Err()
}

// LibraryStats summarises row counts across the library tables.
type LibraryStats struct {
	Workouts    int `json:"workouts"`
	Songs       int `json:"songs"`
	Instructors int `json:"instructors"`
	SyncRuns    int `json:"sync_runs"`
}

// Stats returns current library row counts.
func (d *DB) Stats() (*LibraryStats, error) {
	stats := &LibraryStats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM workouts", &stats.Workouts},
		{"SELECT COUNT(*) FROM songs", &stats.Songs},
		{"SELECT COUNT(*) FROM instructors", &stats.Instructors},
		{"SELECT COUNT(*) FROM sync_runs", &stats.SyncRuns},
	}
	for _, c := range counts {
		if err := d.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanWorkout scans the workout columns shared by list and get queries.
func scanWorkout(row rowScanner) (*models.WorkoutDetail, error) {
	var w models.WorkoutDetail
	var instructorID, description, discipline, imageURL sql.NullString
	var duration sql.NullInt64
	var difficulty sql.NullFloat64

	err := row.Scan(&w.ID, &w.Title, &duration, &instructorID, &description,
		&discipline, &imageURL, &difficulty, &w.ScheduledStart)
	if err != nil {
		return nil, fmt.Errorf("scan workout: %w", err)
	}

	w.DurationSeconds = int(duration.Int64)
	w.Description = description.String
	w.FitnessDiscipline = discipline.String
	w.ImageURL = imageURL.String
	w.DifficultyRatingAvg = difficulty.Float64
	if instructorID.Valid {
		w.Instructor = &models.Instructor{ID: instructorID.String}
	}
	return &w, nil
}

// scanWorkoutRow is scanWorkout with not-found translation for QueryRow.
func scanWorkoutRow(row *sql.Row) (*models.WorkoutDetail, error) {
	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return w, nil
}
