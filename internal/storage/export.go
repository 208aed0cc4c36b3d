// ABOUTME: Export functionality for the synced library.
// ABOUTME: Supports JSON and YAML export of instructors, workouts, and playlists.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/pelosync/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for the library.
type ExportData struct {
	Version     string                  `json:"version" yaml:"version"`
	ExportedAt  time.Time               `json:"exported_at" yaml:"exported_at"`
	Tool        string                  `json:"tool" yaml:"tool"`
	Instructors []*models.Instructor    `json:"instructors" yaml:"instructors"`
	Workouts    []*models.WorkoutDetail `json:"workouts" yaml:"workouts"`
}

// GetAllData retrieves the whole library for export, playlists included.
func (d *DB) GetAllData() (*ExportData, error) {
	instructors, err := d.ListInstructors()
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}

	workouts, err := d.ListWorkouts("", 0)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	for _, w := range workouts {
		songs, err := d.ListSongs(w.ID)
		if err != nil {
			return nil, fmt.Errorf("list songs: %w", err)
		}
		w.Songs = songs
	}

	return &ExportData{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Tool:        "pelosync",
		Instructors: instructors,
		Workouts:    workouts,
	}, nil
}

// ExportJSON exports the library as indented JSON.
func (d *DB) ExportJSON() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports the library as YAML.
func (d *DB) ExportYAML() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}
