// ABOUTME: Workout, Instructor, and Song models for the Peloton library.
// ABOUTME: IDs are upstream-assigned strings, immutable once persisted.
package models

import "encoding/json"

// WorkoutSummary is the minimal record returned by the archived-ride
// listing endpoint. It carries just enough to decide whether a detail
// fetch is needed.
type WorkoutSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ScheduledStart int64  `json:"scheduled_start_time"`
	InstructorID   string `json:"instructor_id,omitempty"`
}

// Instructor is upserted independently of workouts and never deleted.
type Instructor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Song is one playlist entry of a workout. ArtistNames is the flattened,
// comma-joined artist list; PlaylistOrder preserves upstream order.
type Song struct {
	WorkoutID     string `json:"workout_id"`
	Title         string `json:"title"`
	ArtistNames   string `json:"artist_names"`
	ImageURL      string `json:"image_url,omitempty"`
	PlaylistOrder int    `json:"playlist_order"`
}

// WorkoutDetail is the full denormalized record from the per-ride detail
// endpoint. Raw retains the complete upstream payload for re-derivation.
type WorkoutDetail struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	DurationSeconds     int             `json:"duration"`
	Description         string          `json:"description,omitempty"`
	FitnessDiscipline   string          `json:"fitness_discipline,omitempty"`
	ImageURL            string          `json:"image_url,omitempty"`
	DifficultyRatingAvg float64         `json:"difficulty_rating_avg,omitempty"`
	ScheduledStart      int64           `json:"scheduled_start_time"`
	Instructor          *Instructor     `json:"instructor,omitempty"`
	Songs               []Song          `json:"songs,omitempty"`
	Raw                 json.RawMessage `json:"-"`
}
