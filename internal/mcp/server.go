// Package mcp serves the index over the Model Context Protocol so coding
// assistants can ask where symbols live and how files depend on each other.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Server is an MCP server answering from a Querier.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// NewServer creates a server with every atlas tool registered.
func NewServer(q Querier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := server.NewMCPServer(
		"atlas-mcp",
		Version,
		server.WithToolCapabilities(true),
	)
	AddTools(s, q)
	return &Server{mcp: s, logger: logger}
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("starting MCP server on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
