// ABOUTME: MCP resource implementations for the workout library.
// ABOUTME: Provides pelosync://recent and pelosync://stats resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// pelosync://recent - the 10 most recently scheduled workouts
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "pelosync://recent",
		Name:        "Recent Workouts",
		Description: "The 10 most recently scheduled synced workouts",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// pelosync://stats - library row counts
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "pelosync://stats",
		Name:        "Library Stats",
		Description: "Row counts for workouts, songs, instructors, and sync runs",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.db.ListWorkouts("", 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	data, err := json.MarshalIndent(workouts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "pelosync://recent",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	stats, err := s.db.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "pelosync://stats",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
