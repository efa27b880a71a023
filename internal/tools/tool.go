// Package tools defines the cluster-introspection tool surface. Every
// tool validates version applicability, enforces the index access policy,
// performs one remote call, and formats the result. Tools are the
// security boundary of this server: no handler touches the cluster
// without passing the index filter first.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool pairs an MCP tool declaration with its handler and the version
// bounds it supports.
type Tool struct {
	// Definition is the MCP-facing declaration: name, description, and
	// input schema.
	Definition mcp.Tool

	// Handler executes the tool. Handlers report failures as error
	// results, never as protocol errors.
	Handler server.ToolHandlerFunc

	// MinVersion and MaxVersion bound the cluster versions the tool
	// supports. Empty means unbounded on that side.
	MinVersion string
	MaxVersion string

	// HTTPMethods documents the REST verbs the tool issues.
	HTTPMethods string
}

// Name returns the tool's MCP name.
func (t Tool) Name() string {
	return t.Definition.Name
}
