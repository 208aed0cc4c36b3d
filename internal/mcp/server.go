// ABOUTME: MCP server setup for the synced workout library.
// ABOUTME: Wraps the MCP server with a storage connection.
package mcp

import (
	"context"

	"github.com/harperreed/pelosync/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with library access.
type Server struct {
	mcpServer *mcp.Server
	db        *storage.DB
}

// NewServer creates a new MCP server over the given library database.
func NewServer(db *storage.DB) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pelosync",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		db:        db,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
