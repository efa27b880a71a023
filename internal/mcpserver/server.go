// Package mcpserver assembles the MCP protocol surface: one MCP server
// exposing the registered tools over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/tools"
)

// Name is the server name announced during MCP initialization.
const Name = "opensearch-mcp-server"

// Server is the MCP face of this process.
type Server struct {
	mcp      *server.MCPServer
	client   *opensearch.Client
	registry *tools.Registry
	logger   *slog.Logger
}

// New creates the MCP server shell. Tools are attached separately with
// RegisterTools so startup can decide how to handle an unreachable
// cluster.
func New(client *opensearch.Client, registry *tools.Registry, auditLog *audit.Logger, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := server.NewMCPServer(Name, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(tools.InstrumentMiddleware(auditLog)),
	)
	return &Server{mcp: s, client: client, registry: registry, logger: logger}
}

// RegisterTools attaches every registered tool the cluster's version
// supports. When the cluster cannot be reached the full set is attached
// and each call re-checks compatibility, so a cluster that comes up
// later still works.
func (s *Server) RegisterTools(ctx context.Context) int {
	probe, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	v, err := s.client.Version(probe)
	if err != nil {
		s.logger.Warn("cluster version unavailable, deferring tool gating to call time", "error", err)
		v = nil
	}

	compatible := s.registry.CompatibleTools(v)
	for _, t := range compatible {
		s.mcp.AddTool(t.Definition, t.Handler)
	}
	s.logger.Info("tools registered", "count", len(compatible), "total", len(s.registry.Names()))
	return len(compatible)
}

// ServeStdio serves MCP over stdin/stdout until the context is
// cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// Handler returns the streamable HTTP transport for mounting on a
// router.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}
