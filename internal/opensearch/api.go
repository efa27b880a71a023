package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Row is one entry of a cat-style tabular response.
type Row map[string]any

// jsonFormat is the query string shared by all cat endpoints.
func jsonFormat() url.Values {
	return url.Values{"format": []string{"json"}}
}

// CatIndices lists indices. A non-empty index expression (comma-separated,
// wildcards welcome) narrows the listing; the cluster performs the
// expansion.
func (c *Client) CatIndices(ctx context.Context, index string) ([]Row, error) {
	var rows []Row
	if err := c.getJSON(ctx, joinPath("_cat", "indices", index), jsonFormat(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetIndex fetches the full definition of an index: mappings, settings,
// and aliases.
func (c *Client) GetIndex(ctx context.Context, index string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, joinPath(index), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMapping fetches mapping and setting information for an index.
func (c *Client) GetMapping(ctx context.Context, index string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, joinPath(index, "_mapping"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search runs a query-DSL search against an index.
func (c *Client) Search(ctx context.Context, index string, query json.RawMessage) (map[string]any, error) {
	data, err := c.do(ctx, http.MethodPost, joinPath(index, "_search"), nil, strings.NewReader(string(query)))
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexStats fetches statistics for an index, optionally narrowed to a
// metric group (docs, store, indexing, search, ...).
func (c *Client) IndexStats(ctx context.Context, index, metric string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, joinPath(index, "_stats", metric), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CatShards lists shards, optionally narrowed to an index expression.
func (c *Client) CatShards(ctx context.Context, index string) ([]Row, error) {
	var rows []Row
	if err := c.getJSON(ctx, joinPath("_cat", "shards", index), jsonFormat(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CatSegments lists Lucene segments, optionally narrowed to an index
// expression.
func (c *Client) CatSegments(ctx context.Context, index string) ([]Row, error) {
	var rows []Row
	if err := c.getJSON(ctx, joinPath("_cat", "segments", index), jsonFormat(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ClusterState fetches cluster state, optionally narrowed by metric and
// index. The index filter requires a metric; when only an index is given
// the _all metric is used, mirroring the REST API's path shape.
func (c *Client) ClusterState(ctx context.Context, metric, index string) (map[string]any, error) {
	if index != "" && metric == "" {
		metric = "_all"
	}
	var out map[string]any
	if err := c.getJSON(ctx, joinPath("_cluster", "state", metric, index), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CatNodes lists node-level information. A non-empty metrics value is
// passed as the column selector.
func (c *Client) CatNodes(ctx context.Context, metrics string) ([]Row, error) {
	q := jsonFormat()
	if metrics != "" {
		q.Set("h", metrics)
	}
	var rows []Row
	if err := c.getJSON(ctx, "/_cat/nodes", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// NodesInfo fetches detailed node information, optionally narrowed by
// node ID and metric.
func (c *Client) NodesInfo(ctx context.Context, nodeID, metric string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, joinPath("_nodes", nodeID, metric), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HotThreads fetches the plain-text hot threads report.
func (c *Client) HotThreads(ctx context.Context) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/_nodes/hot_threads", nil, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CatAllocation reports shard allocation across nodes.
func (c *Client) CatAllocation(ctx context.Context) ([]Row, error) {
	var rows []Row
	if err := c.getJSON(ctx, "/_cat/allocation", jsonFormat(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CatTasks lists tasks sorted by running time, longest first. A positive
// limit truncates the result.
func (c *Client) CatTasks(ctx context.Context, limit int) ([]Row, error) {
	q := jsonFormat()
	q.Set("s", "running_time:desc")
	var rows []Row
	if err := c.getJSON(ctx, "/_cat/tasks", q, &rows); err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// QueryInsights fetches the top-queries report. Requires the query
// insights plugin (OpenSearch 2.12+); callers gate on version.
func (c *Client) QueryInsights(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/_insights/top_queries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
