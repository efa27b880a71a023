package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
)

func (ts *Toolset) listIndexTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("ListIndexTool",
			mcp.WithDescription("Lists indices in the OpenSearch cluster. By default, returns a filtered list of index names only to minimize response size. "+
				"Set include_detail=true to return full metadata from cat.indices (docs.count, store.size, etc.). "+
				"If an index parameter is provided, returns detailed information for that specific index including mappings and settings."),
			mcp.WithString("index",
				mcp.Description("Optional index name or comma-separated list; wildcards are supported and expanded by the cluster."),
			),
			mcp.WithBoolean("include_detail",
				mcp.Description("Return full cat.indices metadata instead of index names only."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error listing indices: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}

		index := req.GetString("index", "")
		if index != "" {
			if err := ts.validateIndex(t.Name(), index); err != nil {
				return fail(err)
			}
			info, err := ts.client.GetIndex(ctx, index)
			if err != nil {
				return fail(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("Index information for %s:\n%s", index, formatJSON(info))), nil
		}

		// An unscoped listing is narrowed to the configured allowed
		// patterns, leaning on the cluster's own pattern expansion.
		if patterns := indexfilter.Current().AllowedPatterns(); len(patterns) > 0 {
			index = strings.Join(patterns, ",")
		}

		rows, err := ts.client.CatIndices(ctx, index)
		if err != nil {
			return fail(err)
		}

		if !req.GetBool("include_detail", false) {
			names := make([]string, 0, len(rows))
			for _, row := range rows {
				if name, ok := row["index"].(string); ok {
					names = append(names, name)
				}
			}
			return mcp.NewToolResultText("Indices:\n" + formatJSON(names)), nil
		}
		return mcp.NewToolResultText("All indices information:\n" + formatJSON(rows)), nil
	}
	return t
}

func (ts *Toolset) indexMappingTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("IndexMappingTool",
			mcp.WithDescription("Retrieves index mapping and setting information for an index in OpenSearch"),
			mcp.WithString("index",
				mcp.Required(),
				mcp.Description("The index to fetch mappings and settings for."),
			),
		),
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting mapping: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		index, err := req.RequireString("index")
		if err != nil {
			return fail(err)
		}
		if err := ts.validateIndex(t.Name(), index); err != nil {
			return fail(err)
		}

		mapping, err := ts.client.GetMapping(ctx, index)
		if err != nil {
			return fail(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Mapping for %s:\n%s", index, formatJSON(mapping))), nil
	}
	return t
}

func (ts *Toolset) searchIndexTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("SearchIndexTool",
			mcp.WithDescription("Searches an index using a query written in query domain-specific language (DSL) in OpenSearch"),
			mcp.WithString("index",
				mcp.Required(),
				mcp.Description("The index to search."),
			),
			mcp.WithObject("query",
				mcp.Required(),
				mcp.Description("The query in OpenSearch query DSL."),
			),
		),
		HTTPMethods: "GET, POST",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error searching index: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		index, err := req.RequireString("index")
		if err != nil {
			return fail(err)
		}
		if err := ts.validateIndex(t.Name(), index); err != nil {
			return fail(err)
		}

		query, err := json.Marshal(req.GetArguments()["query"])
		if err != nil {
			return fail(fmt.Errorf("encoding query: %w", err))
		}

		result, err := ts.client.Search(ctx, index, query)
		if err != nil {
			return fail(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Search results from %s:\n%s", index, formatJSON(result))), nil
	}
	return t
}

func (ts *Toolset) getIndexInfoTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetIndexInfoTool",
			mcp.WithDescription("Gets detailed information about an index including mappings, settings, and aliases. Supports wildcards in index names."),
			mcp.WithString("index",
				mcp.Required(),
				mcp.Description("The index name; wildcards are supported."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting index information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		index, err := req.RequireString("index")
		if err != nil {
			return fail(err)
		}
		if err := ts.validateIndex(t.Name(), index); err != nil {
			return fail(err)
		}

		info, err := ts.client.GetIndex(ctx, index)
		if err != nil {
			return fail(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Detailed information for index: %s:\n%s", index, formatJSON(info))), nil
	}
	return t
}

func (ts *Toolset) getIndexStatsTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetIndexStatsTool",
			mcp.WithDescription("Gets statistics about an index including document count, store size, indexing and search performance metrics. Can be filtered to specific metrics."),
			mcp.WithString("index",
				mcp.Required(),
				mcp.Description("The index to fetch statistics for."),
			),
			mcp.WithString("metric",
				mcp.Description("Optional metric group, e.g. docs, store, indexing, search."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting index statistics: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		index, err := req.RequireString("index")
		if err != nil {
			return fail(err)
		}
		if err := ts.validateIndex(t.Name(), index); err != nil {
			return fail(err)
		}

		metric := req.GetString("metric", "")
		stats, err := ts.client.IndexStats(ctx, index, metric)
		if err != nil {
			return fail(err)
		}

		message := "Statistics for index: " + index
		if metric != "" {
			message += fmt.Sprintf(" (metrics: %s)", metric)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s:\n%s", message, formatJSON(stats))), nil
	}
	return t
}
