package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewServer registers the catalog tools on a new MCP server.
func NewServer(catalog Catalog, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"incomeatlas",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	search := NewSearchTool(catalog)
	s.AddTool(search.Definition(), search.Handle)

	strategy := NewStrategyTool(catalog)
	s.AddTool(strategy.Definition(), strategy.Handle)

	stats := NewStatsTool(catalog)
	s.AddTool(stats.Definition(), stats.Handle)

	return s
}
