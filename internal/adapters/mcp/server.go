// Package mcpadapter exposes the screenshot catalog as MCP tools over stdio.
package mcpadapter

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type toolEntry struct {
	def     mcp.Tool
	handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Server is the stdio MCP front end. Every tool delegates to the same use
// cases the HTTP API serves.
type Server struct {
	mcp *server.MCPServer
}

func NewServer(version string, h *Handlers) *Server {
	s := server.NewMCPServer("screenvault", version,
		server.WithToolCapabilities(true),
	)
	for _, entry := range registry(h) {
		s.AddTool(entry.def, entry.handler)
	}
	return &Server{mcp: s}
}

func registry(h *Handlers) []toolEntry {
	return []toolEntry{
		{classifyToolDef, h.classify},
		{analyzeToolDef, h.analyze},
		{extractTextToolDef, h.extractText},
		{searchToolDef, h.search},
		{getToolDef, h.get},
		{reanalyzeToolDef, h.reanalyze},
		{statsToolDef, h.stats},
		{cleanupToolDef, h.cleanup},
		{deleteToolDef, h.delete},
	}
}

// Serve blocks reading MCP messages from stdin until EOF.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
