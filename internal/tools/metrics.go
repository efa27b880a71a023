package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opensearch_mcp_tool_calls_total",
		Help: "Tool invocations by tool name.",
	}, []string{"tool"})

	toolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opensearch_mcp_tool_errors_total",
		Help: "Tool invocations that produced an error result.",
	}, []string{"tool"})

	accessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opensearch_mcp_access_denied_total",
		Help: "Index access denials by tool name.",
	}, []string{"tool"})
)
