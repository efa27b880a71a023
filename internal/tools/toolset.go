package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
)

// Toolset builds the cluster-introspection tools around one client.
type Toolset struct {
	client *opensearch.Client
	logger *slog.Logger
	audit  *audit.Logger // nil disables audit events
}

// NewToolset creates the toolset. auditLog may be nil.
func NewToolset(client *opensearch.Client, logger *slog.Logger, auditLog *audit.Logger) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{client: client, logger: logger, audit: auditLog}
}

// RegisterAll registers every tool into the registry.
func (ts *Toolset) RegisterAll(r *Registry) error {
	all := []Tool{
		ts.listIndexTool(),
		ts.indexMappingTool(),
		ts.searchIndexTool(),
		ts.getIndexInfoTool(),
		ts.getIndexStatsTool(),
		ts.getShardsTool(),
		ts.getSegmentsTool(),
		ts.getAllocationTool(),
		ts.getClusterStateTool(),
		ts.catNodesTool(),
		ts.getNodesTool(),
		ts.getNodesHotThreadsTool(),
		ts.getLongRunningTasksTool(),
		ts.getQueryInsightsTool(),
	}
	for _, t := range all {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// checkCompatibility gates a tool on the cluster's version. An
// unreachable cluster surfaces as an error too: the tool cannot verify
// its applicability.
func (ts *Toolset) checkCompatibility(ctx context.Context, t Tool) error {
	v, err := ts.client.Version(ctx)
	if err != nil {
		return fmt.Errorf("getting OpenSearch version: %w", err)
	}
	if !t.CompatibleWith(v) {
		return errors.New(t.incompatibilityMessage(v))
	}
	return nil
}

// errorResult reports a tool failure to the caller as a tool-level
// error, counting it, so protocol errors stay reserved for transport
// faults.
func (ts *Toolset) errorResult(t Tool, message string) (*mcp.CallToolResult, error) {
	toolErrors.WithLabelValues(t.Name()).Inc()
	ts.logger.Error("tool failed", "tool", t.Name(), "error", message)
	return mcp.NewToolResultError(message), nil
}

// validateIndex runs the access gate for one tool invocation, recording
// denials in metrics and the audit trail.
func (ts *Toolset) validateIndex(toolName, index string) error {
	err := indexfilter.Validate(index)
	if err == nil {
		return nil
	}

	accessDenied.WithLabelValues(toolName).Inc()
	if ts.audit != nil {
		ts.audit.Log(audit.Event{
			Type:   audit.EventAccessDenied,
			Tool:   toolName,
			Detail: err.Error(),
		})
	}
	return err
}
