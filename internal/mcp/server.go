// Package mcp exposes the conference schedule tools over the Model
// Context Protocol so external agents can query the same catalogue the
// chat assistant uses.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/Maxservais/chat/internal/ics"
	"github.com/Maxservais/chat/internal/schedule"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes schedule search tools.
type Server struct {
	source *schedule.Source
	gen    *ics.Generator
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server over the given schedule source and
// calendar generator.
func NewServer(source *schedule.Source, gen *ics.Generator) *Server {
	s := &Server{
		source: source,
		gen:    gen,
	}

	s.mcp = server.NewMCPServer(
		"confchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchEventsTool, s.handleSearchEvents)
	s.mcp.AddTool(getEventDetailsTool, s.handleGetEventDetails)
	s.mcp.AddTool(getMetadataTool, s.handleGetMetadata)
	s.mcp.AddTool(exportCalendarTool, s.handleExportCalendar)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
