package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (ts *Toolset) getClusterStateTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetClusterStateTool",
			mcp.WithDescription("Gets the current state of the cluster including node information, index settings, and routing tables. Can be filtered by metrics and indices."),
			mcp.WithString("metric",
				mcp.Description("Optional metric group to limit the response, e.g. nodes, metadata, routing_table."),
			),
			mcp.WithString("index",
				mcp.Description("Optional index to scope the state to."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting cluster state: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		metric := req.GetString("metric", "")
		index := req.GetString("index", "")
		if index != "" {
			if err := ts.validateIndex(t.Name(), index); err != nil {
				return fail(err)
			}
		}

		state, err := ts.client.ClusterState(ctx, metric, index)
		if err != nil {
			return fail(err)
		}

		message := "Cluster state information"
		if metric != "" {
			message += " for metric: " + metric
		}
		if index != "" {
			message += ", filtered by index: " + index
		}
		return mcp.NewToolResultText(message + ":\n" + formatJSON(state)), nil
	}
	return t
}

func (ts *Toolset) catNodesTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("CatNodesTool",
			mcp.WithDescription("Lists node-level information from the cluster, including operational metrics like CPU and memory usage."),
			mcp.WithString("metrics",
				mcp.Description("Optional comma-separated list of cat.nodes columns to return."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting node information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		metrics := req.GetString("metrics", "")

		rows, err := ts.client.CatNodes(ctx, metrics)
		if err != nil {
			return fail(err)
		}
		if len(rows) == 0 {
			return mcp.NewToolResultText("No nodes found in the cluster."), nil
		}

		message := "Node information for the cluster"
		if metrics != "" {
			message += fmt.Sprintf(" (metrics: %s)", metrics)
		}
		return mcp.NewToolResultText(message + ":\n" + formatTable(rows, tableColumns(rows))), nil
	}
	return t
}

func (ts *Toolset) getNodesTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetNodesTool",
			mcp.WithDescription("Gets detailed information about nodes in the cluster from the /_nodes endpoint, optionally scoped to specific nodes and metric groups."),
			mcp.WithString("node_id",
				mcp.Description("Optional comma-separated node identifiers to scope the response to."),
			),
			mcp.WithString("metric",
				mcp.Description("Optional comma-separated metric groups, e.g. os, jvm, process."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting nodes information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		nodeID := req.GetString("node_id", "")
		metric := req.GetString("metric", "")

		info, err := ts.client.NodesInfo(ctx, nodeID, metric)
		if err != nil {
			return fail(err)
		}

		message := "Detailed node information"
		if nodeID != "" {
			message += " for nodes: " + nodeID
		} else {
			message += " for all nodes"
		}
		if metric != "" {
			message += fmt.Sprintf(" (metrics: %s)", metric)
		}
		return mcp.NewToolResultText(message + ":\n" + formatJSON(info)), nil
	}
	return t
}

func (ts *Toolset) getNodesHotThreadsTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetNodesHotThreadsTool",
			mcp.WithDescription("Gets information about hot threads in the cluster nodes from the /_nodes/hot_threads endpoint."),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting hot threads information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}

		text, err := ts.client.HotThreads(ctx)
		if err != nil {
			return fail(err)
		}
		return mcp.NewToolResultText("Hot threads information from /_nodes/hot_threads endpoint:\n" + text), nil
	}
	return t
}

func (ts *Toolset) getLongRunningTasksTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetLongRunningTasksTool",
			mcp.WithDescription("Gets information about long-running tasks in the cluster, sorted by running time in descending order."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of tasks to return. Defaults to 10."),
			),
		),
		MinVersion:  "1.0.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting long-running tasks information: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}
		limit := req.GetInt("limit", 10)

		rows, err := ts.client.CatTasks(ctx, limit)
		if err != nil {
			return fail(err)
		}
		if len(rows) == 0 {
			return mcp.NewToolResultText("No tasks found in the cluster."), nil
		}
		message := fmt.Sprintf("Top %d long-running tasks sorted by running time", len(rows))
		return mcp.NewToolResultText(message + ":\n" + formatTable(rows, tableColumns(rows))), nil
	}
	return t
}

func (ts *Toolset) getQueryInsightsTool() Tool {
	t := Tool{
		Definition: mcp.NewTool("GetQueryInsightsTool",
			mcp.WithDescription("Gets query insights from the /_insights/top_queries endpoint, showing information about query patterns and performance."),
		),
		MinVersion:  "2.12.0",
		HTTPMethods: "GET",
	}
	t.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fail := func(err error) (*mcp.CallToolResult, error) {
			return ts.errorResult(t, "Error getting query insights: "+err.Error())
		}

		if err := ts.checkCompatibility(ctx, t); err != nil {
			return fail(err)
		}

		insights, err := ts.client.QueryInsights(ctx)
		if err != nil {
			return fail(err)
		}
		return mcp.NewToolResultText("Query insights from /_insights/top_queries endpoint:\n" + formatJSON(insights)), nil
	}
	return t
}
