package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/observability"
)

// InstrumentMiddleware wraps every tool handler with call counting,
// tracing, and audit events. auditLog may be nil.
func InstrumentMiddleware(auditLog *audit.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name := req.Params.Name
			toolCalls.WithLabelValues(name).Inc()

			ctx, span := observability.StartSpan(ctx, "mcp.tool/"+name,
				trace.WithAttributes(observability.ToolAttribute(name)))
			defer span.End()

			if auditLog != nil {
				args, _ := json.Marshal(req.GetArguments())
				auditLog.Log(audit.Event{
					Type:   audit.EventToolCall,
					Tool:   name,
					Detail: string(args),
				})
			}

			result, err := next(ctx, req)

			isError := err != nil || (result != nil && result.IsError)
			if err != nil {
				observability.SetSpanError(ctx, err)
			}
			if auditLog != nil {
				detail := resultDetail(result)
				if err != nil {
					detail = "error: " + err.Error()
				}
				auditLog.Log(audit.Event{
					Type:   audit.EventToolResult,
					Tool:   name,
					Detail: detail,
					Metadata: map[string]string{
						"is_error": fmt.Sprintf("%v", isError),
					},
				})
			}
			return result, err
		}
	}
}

// resultDetail extracts the first text block of a result for the audit
// trail. The audit logger truncates it.
func resultDetail(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
