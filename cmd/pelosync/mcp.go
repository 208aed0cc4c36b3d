// ABOUTME: CLI command starting the MCP server over the synced library.
// ABOUTME: Serves tools and resources on stdio for AI assistants.
package main

import (
	"fmt"

	"github.com/harperreed/pelosync/internal/mcp"
	"github.com/harperreed/pelosync/internal/storage"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server on stdio.

Exposes read-only tools (list_workouts, get_workout, search_songs,
library_stats) and resources over the synced library for MCP-compatible
AI assistants.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		server, err := mcp.NewServer(db)
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}

		return server.Serve(cmd.Context())
	},
}
