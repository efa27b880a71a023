// Package gateway provides the HTTP surface of the server: the MCP
// streamable transport plus health, status, metrics, and config reload
// endpoints.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/tools"
)

// Config holds the gateway settings.
type Config struct {
	// Listen is the bind address, e.g. 127.0.0.1:8080.
	Listen string `yaml:"listen"`
}

// Gateway is the HTTP server wrapping the MCP transport and the
// operational endpoints.
type Gateway struct {
	config     Config
	configPath string
	logger     *slog.Logger
	server     *http.Server
	startedAt  time.Time

	client   *opensearch.Client
	registry *tools.Registry
	mcp      http.Handler // streamable MCP transport, may be nil
	audit    *audit.Logger
}

// New creates a gateway. mcpHandler may be nil when serving stdio only;
// auditLog may be nil.
func New(cfg Config, configPath string, client *opensearch.Client, registry *tools.Registry, mcpHandler http.Handler, auditLog *audit.Logger, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:     cfg,
		configPath: configPath,
		logger:     logger,
		client:     client,
		registry:   registry,
		mcp:        mcpHandler,
		audit:      auditLog,
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())
	r.Get("/status", g.handleStatus())
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/config/reload", g.handleReloadConfig())

	if g.mcp != nil {
		r.Handle("/mcp", g.mcp)
		r.Handle("/mcp/*", g.mcp)
	}

	return r
}

// Start binds the listen address and serves in the background.
func (g *Gateway) Start() error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:        g.config.Listen,
		Handler:     g.buildRouter(),
		ReadTimeout: 30 * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Listen)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
