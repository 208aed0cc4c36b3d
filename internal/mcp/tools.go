// ABOUTME: MCP tool implementations for the workout library.
// ABOUTME: Read-only queries over workouts, playlists, and instructors.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent synced workouts, optionally filtered by fitness discipline",
	}, s.handleListWorkouts)

	// get_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with its full playlist",
	}, s.handleGetWorkout)

	// search_songs
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_songs",
		Description: "Search playlist songs by title or artist name",
	}, s.handleSearchSongs)

	// library_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "library_stats",
		Description: "Get row counts for the synced library",
	}, s.handleLibraryStats)
}

// Tool input/output types

type listWorkoutsInput struct {
	Discipline string `json:"discipline,omitempty" jsonschema:"Filter by fitness discipline (cycling, running, etc.)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type workoutOutput struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Discipline     string  `json:"discipline,omitempty"`
	DurationSecs   int     `json:"duration_seconds"`
	Difficulty     float64 `json:"difficulty,omitempty"`
	ScheduledStart string  `json:"scheduled_start"`
}

type getWorkoutInput struct {
	ID string `json:"id" jsonschema:"Workout ID"`
}

type searchSongsInput struct {
	Query string `json:"query" jsonschema:"Substring matched against song title and artist names"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 50)"`
}

// Tool handlers

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	workouts, err := s.db.ListWorkouts(input.Discipline, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	if len(workouts) == 0 {
		return nil, map[string]interface{}{"message": "No workouts found."}, nil
	}

	out := make([]workoutOutput, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, workoutOutput{
			ID:             w.ID,
			Title:          w.Title,
			Discipline:     w.FitnessDiscipline,
			DurationSecs:   w.DurationSeconds,
			Difficulty:     w.DifficultyRatingAvg,
			ScheduledStart: time.Unix(w.ScheduledStart, 0).UTC().Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input getWorkoutInput) (*mcp.CallToolResult, any, error) {
	w, err := s.db.GetWorkout(input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("workout not found: %s", input.ID)
	}
	return nil, w, nil
}

func (s *Server) handleSearchSongs(ctx context.Context, req *mcp.CallToolRequest, input searchSongsInput) (*mcp.CallToolResult, any, error) {
	songs, err := s.db.SearchSongs(input.Query, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search songs: %w", err)
	}
	if len(songs) == 0 {
		return nil, map[string]interface{}{"message": "No songs matched."}, nil
	}
	return nil, songs, nil
}

func (s *Server) handleLibraryStats(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	stats, err := s.db.Stats()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return nil, stats, nil
}
