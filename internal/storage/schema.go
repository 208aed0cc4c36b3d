// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines instructors, workouts, songs, and sync_runs tables.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS instructors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		image_url TEXT
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		duration INTEGER,
		instructor_id TEXT REFERENCES instructors(id),
		description TEXT,
		fitness_discipline TEXT,
		image_url TEXT,
		difficulty_rating_avg REAL,
		scheduled_start_time INTEGER NOT NULL,
		full_details TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		artist_names TEXT NOT NULL DEFAULT '',
		image_url TEXT,
		playlist_order INTEGER NOT NULL CHECK (playlist_order >= 0),
		UNIQUE (workout_id, title)
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		pages INTEGER NOT NULL,
		new_workouts INTEGER NOT NULL,
		existing_workouts INTEGER NOT NULL,
		failed_workouts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_scheduled ON workouts(scheduled_start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_workouts_instructor ON workouts(instructor_id);
	CREATE INDEX IF NOT EXISTS idx_songs_workout ON songs(workout_id);
	CREATE INDEX IF NOT EXISTS idx_songs_title ON songs(title);
	CREATE INDEX IF NOT EXISTS idx_songs_artists ON songs(artist_names);
	`

	_, err := d.db.Exec(schema)
	return err
}
