package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/config"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/cron"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/gateway"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/mcpserver"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/observability"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/reload"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/security"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/tools"
)

// runServer wires every component and serves until the context is
// cancelled or a termination signal arrives.
func runServer(ctx context.Context, cfg *config.Config, cfgPath, transport string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No credential escapes into logs or the audit trail.
	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.OpenSearch.Password)
	logger = slog.New(security.NewRedactingHandler(logger.Handler(), redactor))

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    mcpserver.Name,
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(flushCtx)
	}()

	client, err := opensearch.New(opensearch.Config{
		URL:                   cfg.OpenSearch.URL,
		Username:              cfg.OpenSearch.Username,
		Password:              cfg.OpenSearch.Password,
		InsecureSkipTLSVerify: cfg.OpenSearch.InsecureSkipTLSVerify,
		Timeout:               time.Duration(cfg.OpenSearch.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return err
	}

	policy := indexfilter.Load(cfgPath, logger)
	logger.Info("index access policy loaded",
		"restricted", policy.IsRestricted(),
		"allowed", len(policy.AllowedPatterns()),
		"denied", len(policy.DeniedPatterns()),
	)

	auditLog, closeAudit, err := setupAudit(cfg.Audit, redactor, logger)
	if err != nil {
		return err
	}
	defer closeAudit()

	registry := tools.NewRegistry()
	toolset := tools.NewToolset(client, logger, auditLog)
	if err := toolset.RegisterAll(registry); err != nil {
		return err
	}

	srv := mcpserver.New(client, registry, auditLog, logger, version)
	srv.RegisterTools(ctx)

	// Policy refresh: scheduled when configured, SIGHUP and file watch
	// always.
	if expr := cfg.IndexSecurity.ReloadSchedule; expr != "" {
		scheduler := cron.NewScheduler(logger)
		if err := scheduler.RegisterJob(&cron.PolicyReloadJob{
			ConfigPath:   cfgPath,
			Logger:       logger,
			Audit:        auditLog,
			ScheduleExpr: expr,
		}); err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer func() { _ = scheduler.Stop(context.Background()) }()
	}

	watcher := reload.NewWatcher(reload.WatcherConfig{
		ConfigPath: cfgPath,
		Audit:      auditLog,
	}, logger)
	watcher.Start(ctx)
	defer watcher.Stop()

	switch transport {
	case "http":
		listen := cfg.Gateway.Listen
		if listen == "" {
			listen = "127.0.0.1:8080"
		}
		g := gateway.New(gateway.Config{Listen: listen}, cfgPath, client, registry, srv.Handler(), auditLog, logger)
		if err := g.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		return g.Stop(context.Background())

	default: // stdio
		return srv.ServeStdio(ctx)
	}
}

// setupAudit builds the audit logger from config. With neither a path
// nor a database configured, auditing is disabled.
func setupAudit(cfg config.AuditConfig, redactor *security.Redactor, logger *slog.Logger) (*audit.Logger, func(), error) {
	if cfg.Path == "" && cfg.DBPath == "" {
		return nil, func() {}, nil
	}

	var (
		writer  io.WriteCloser
		store   *audit.Store
		closers []func()
	)

	if cfg.Path != "" {
		f, err := audit.OpenFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		writer = f
		closers = append(closers, func() { _ = f.Close() })
	}
	if cfg.DBPath != "" {
		s, err := audit.OpenStore(cfg.DBPath)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		store = s
		closers = append(closers, func() { _ = s.Close() })
	}

	logger.Info("audit logging enabled", "path", cfg.Path, "db", cfg.DBPath)

	auditLog := audit.NewLogger(audit.LoggerConfig{Writer: writer, Store: store, Redactor: redactor})
	return auditLog, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
