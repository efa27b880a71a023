package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Column orders match the cat API defaults so the tables read the same
// as the raw endpoints.
var (
	shardColumns = []string{"index", "shard", "prirep", "state", "docs", "store", "ip", "node"}

	segmentColumns = []string{
		"index", "shard", "prirep", "segment", "generation",
		"docs.count", "docs.deleted", "size",
		"memory.bookkeeping", "memory.vectors", "memory.docvalues", "memory.terms",
		"version",
	}
)

func (ts *Toolset) getShardsTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetShardsTool",
			mcp.WithDescription("Gets information about shards in OpenSearch"),
			mcp.WithString("index",
				mcp.Required(),
				mcp.Description("The index to fetch shard information for."),
			),
		),
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting shards information: "+err.Error())
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

		rows, err := ts.client.CatShards(ctx, index)
		if err != nil {
			return fail(err)
		}
		return mcp.NewToolResultText(formatTable(rows, shardColumns)), nil
	}
	return t
}

func (ts *Toolset) getSegmentsTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetSegmentsTool",
			mcp.WithDescription("Gets information about Lucene segments in indices, including memory usage, document counts, and segment sizes."),
			mcp.WithString("index",
				mcp.Description("Optional index to scope the segment listing to."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting segment information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		index := req.GetString("index", "")
		if index != "" {
			if err := ts.validateIndex(t.Name(), index); err != nil {
				return fail(err)
			}
		}

		rows, err := ts.client.CatSegments(ctx, index)
		if err != nil {
			return fail(err)
		}

		message := "Segment information"
		if index != "" {
			message += " for index: " + index
		} else {
			message += " for all indices"
		}
		return mcp.NewToolResultText(message + ":\n" + formatTable(rows, segmentColumns)), nil
	}
	return t
}

func (ts *Toolset) getAllocationTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetAllocationTool",
			mcp.WithDescription("Gets information about shard allocation across nodes in the cluster, including disk usage and shard counts."),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting allocation information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}

		rows, err := ts.client.CatAllocation(ctx)
		if err != nil {
			return fail(err)
		}
		if len(rows) == 0 {
			return mcp.NewToolResultText("No allocation information found in the cluster."), nil
		}
		message := "Allocation information from /_cat/allocation endpoint"
		return mcp.NewToolResultText(message + ":\n" + formatTable(rows, tableColumns(rows))), nil
	}
	return t
}
