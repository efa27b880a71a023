package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCluster wires an httptest server that answers the root document
// (for version gating) plus any extra handlers a test registers.
func fakeCluster(t *testing.T, version string, extra map[string]http.HandlerFunc) *opensearch.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":         "node-1",
			"cluster_name": "test-cluster",
			"version":      map[string]any{"distribution": "opensearch", "number": version},
		})
	})
	for pattern, h := range extra {
		mux.HandleFunc(pattern, h)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := opensearch.New(opensearch.Config{URL: srv.URL}, discardLogger())
	if err != nil {
		t.Fatalf("opensearch.New() error = %v", err)
	}
	return client
}

func jsonHandler(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// setPolicy installs an access policy from env-style pattern lists.
// Tests using it must not run in parallel: the policy handle is process
// wide.
func setPolicy(t *testing.T, allowed, denied string) {
	t.Helper()
	t.Setenv(indexfilter.EnvAllowedPatterns, allowed)
	t.Setenv(indexfilter.EnvDeniedPatterns, denied)
	indexfilter.Load("", discardLogger())
	t.Cleanup(func() {
		os.Unsetenv(indexfilter.EnvAllowedPatterns)
		os.Unsetenv(indexfilter.EnvDeniedPatterns)
		indexfilter.Load("", discardLogger())
	})
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content blocks, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func findTool(t *testing.T, ts *Toolset, name string) Tool {
	t.Helper()
	r := NewRegistry()
	if err := ts.RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	tool, err := r.Get(name)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", name, err)
	}
	return tool
}

func TestRegisterAll_RegistersEveryTool(t *testing.T) {
	client := fakeCluster(t, "2.19.0", nil)
	ts := NewToolset(client, discardLogger(), nil)

	r := NewRegistry()
	if err := ts.RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}

	want := []string{
		"CatNodesTool",
		"GetAllocationTool",
		"GetClusterStateTool",
		"GetIndexInfoTool",
		"GetIndexStatsTool",
		"GetLongRunningTasksTool",
		"GetNodesHotThreadsTool",
		"GetNodesTool",
		"GetQueryInsightsTool",
		"GetSegmentsTool",
		"GetShardsTool",
		"IndexMappingTool",
		"ListIndexTool",
		"SearchIndexTool",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListIndexTool_NamesOnly(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/indices": jsonHandler([]map[string]any{
			{"index": "logs-1", "docs.count": "42"},
			{"index": "logs-2", "docs.count": "7"},
		}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "ListIndexTool")

	res, err := tool.Handler(context.Background(), callRequest("ListIndexTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Indices:\n") {
		t.Errorf("text = %q, want Indices prefix", text)
	}
	if !strings.Contains(text, "logs-1") || !strings.Contains(text, "logs-2") {
		t.Errorf("text missing index names: %q", text)
	}
	if strings.Contains(text, "docs.count") {
		t.Errorf("names-only listing leaked detail columns: %q", text)
	}
}

func TestListIndexTool_IncludeDetail(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/indices": jsonHandler([]map[string]any{
			{"index": "logs-1", "docs.count": "42"},
		}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "ListIndexTool")

	res, err := tool.Handler(context.Background(), callRequest("ListIndexTool", map[string]any{"include_detail": true}))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "All indices information:\n") {
		t.Errorf("text = %q, want detail prefix", text)
	}
	if !strings.Contains(text, "docs.count") {
		t.Errorf("detail listing missing columns: %q", text)
	}
}

func TestListIndexTool_NarrowsToAllowedPatterns(t *testing.T) {
	setPolicy(t, "logs-*,metrics-*", "")

	var gotPath string
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/indices/": func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewEncoder(w).Encode([]map[string]any{{"index": "logs-1"}})
		},
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "ListIndexTool")

	if _, err := tool.Handler(context.Background(), callRequest("ListIndexTool", nil)); err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if gotPath != "/_cat/indices/logs-*,metrics-*" {
		t.Errorf("request path = %q, want allowed-pattern scope", gotPath)
	}
}

func TestIndexMappingTool_FormatsMapping(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/logs/_mapping": jsonHandler(map[string]any{
			"logs": map[string]any{"mappings": map[string]any{}},
		}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "IndexMappingTool")

	res, err := tool.Handler(context.Background(), callRequest("IndexMappingTool", map[string]any{"index": "logs"}))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "Mapping for logs:\n") {
		t.Errorf("text = %q", text)
	}
}

func TestIndexMappingTool_RequiresIndex(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", nil)
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "IndexMappingTool")

	res, err := tool.Handler(context.Background(), callRequest("IndexMappingTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("missing index did not produce an error result")
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "Error getting mapping: ") {
		t.Errorf("text = %q", text)
	}
}

func TestSearchIndexTool_DeniedIndex(t *testing.T) {
	setPolicy(t, "", "secret-*")
	client := fakeCluster(t, "2.19.0", nil)

	var events []audit.Event
	auditLog := audit.NewLogger(audit.LoggerConfig{OnEvent: func(e audit.Event) { events = append(events, e) }})
	ts := NewToolset(client, discardLogger(), auditLog)
	tool := findTool(t, ts, "SearchIndexTool")

	res, err := tool.Handler(context.Background(), callRequest("SearchIndexTool", map[string]any{
		"index": "secret-payroll",
		"query": map[string]any{"query": map[string]any{"match_all": map[string]any{}}},
	}))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("denied index did not produce an error result")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Error searching index: Index access denied: ") {
		t.Errorf("text = %q", text)
	}
	if len(events) != 1 || events[0].Type != audit.EventAccessDenied {
		t.Fatalf("audit events = %+v, want one access_denied", events)
	}
	if events[0].Tool != "SearchIndexTool" {
		t.Errorf("audit tool = %q", events[0].Tool)
	}
}

func TestSearchIndexTool_PostsQuery(t *testing.T) {
	setPolicy(t, "", "")

	var gotBody map[string]any
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/logs/_search": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"total": map[string]any{"value": 1}}})
		},
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "SearchIndexTool")

	res, err := tool.Handler(context.Background(), callRequest("SearchIndexTool", map[string]any{
		"index": "logs",
		"query": map[string]any{"query": map[string]any{"match_all": map[string]any{}}},
	}))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "Search results from logs:\n") {
		t.Errorf("text = %q", text)
	}
	if _, ok := gotBody["query"]; !ok {
		t.Errorf("search body = %v, want query key", gotBody)
	}
}

func TestGetQueryInsightsTool_VersionGate(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.11.0", nil)
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetQueryInsightsTool")

	res, err := tool.Handler(context.Background(), callRequest("GetQueryInsightsTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("incompatible version did not produce an error result")
	}
	want := "Error getting query insights: Tool 'GetQueryInsightsTool' is not supported for this OpenSearch version (current version: 2.11.0). Supported version: 2.12.0 or later."
	if text := resultText(t, res); text != want {
		t.Errorf("text =\n  %q\nwant\n  %q", text, want)
	}
}

func TestGetShardsTool_FormatsTable(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/shards/": jsonHandler([]map[string]any{
			{
				"index": "logs", "shard": "0", "prirep": "p", "state": "STARTED",
				"docs": "42", "store": "1mb", "ip": "10.0.0.1", "node": "node-1",
			},
		}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetShardsTool")

	res, err := tool.Handler(context.Background(), callRequest("GetShardsTool", map[string]any{"index": "logs"}))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if lines[0] != "index | shard | prirep | state | docs | store | ip | node" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 2 || lines[1] != "logs | 0 | p | STARTED | 42 | 1mb | 10.0.0.1 | node-1" {
		t.Errorf("rows = %q", lines[1:])
	}
}

func TestGetSegmentsTool_AllIndices(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/segments": jsonHandler([]map[string]any{
			{"index": "logs", "shard": "0", "segment": "_0"},
		}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetSegmentsTool")

	res, err := tool.Handler(context.Background(), callRequest("GetSegmentsTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Segment information for all indices:\n") {
		t.Errorf("text = %q", text)
	}
	// Cells without data render as N/A.
	if !strings.Contains(text, "N/A") {
		t.Errorf("missing N/A placeholders: %q", text)
	}
}

func TestGetAllocationTool_Empty(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/allocation": jsonHandler([]map[string]any{}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetAllocationTool")

	res, err := tool.Handler(context.Background(), callRequest("GetAllocationTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if text := resultText(t, res); text != "No allocation information found in the cluster." {
		t.Errorf("text = %q", text)
	}
}

func TestCatNodesTool_NoNodes(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/nodes": jsonHandler([]map[string]any{}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "CatNodesTool")

	res, err := tool.Handler(context.Background(), callRequest("CatNodesTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if text := resultText(t, res); text != "No nodes found in the cluster." {
		t.Errorf("text = %q", text)
	}
}

func TestGetLongRunningTasksTool_LimitsAndHeads(t *testing.T) {
	setPolicy(t, "", "")
	tasks := make([]map[string]any, 15)
	for i := range tasks {
		tasks[i] = map[string]any{"action": "indices:data/write", "running_time": "1s"}
	}
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cat/tasks": jsonHandler(tasks),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetLongRunningTasksTool")

	res, err := tool.Handler(context.Background(), callRequest("GetLongRunningTasksTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Top 10 long-running tasks sorted by running time:\n") {
		t.Errorf("text = %q", text)
	}
}

func TestGetClusterStateTool_MessageShape(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_cluster/state/": jsonHandler(map[string]any{"cluster_name": "test-cluster"}),
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetClusterStateTool")

	res, err := tool.Handler(context.Background(), callRequest("GetClusterStateTool", map[string]any{
		"metric": "metadata",
		"index":  "logs",
	}))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Cluster state information for metric: metadata, filtered by index: logs:\n") {
		t.Errorf("text = %q", text)
	}
}

func TestGetNodesHotThreadsTool_PassesTextThrough(t *testing.T) {
	setPolicy(t, "", "")
	client := fakeCluster(t, "2.19.0", map[string]http.HandlerFunc{
		"/_nodes/hot_threads": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "::: {node-1}\n   0.0% cpu usage\n")
		},
	})
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "GetNodesHotThreadsTool")

	res, err := tool.Handler(context.Background(), callRequest("GetNodesHotThreadsTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Hot threads information from /_nodes/hot_threads endpoint:\n::: {node-1}") {
		t.Errorf("text = %q", text)
	}
}

func TestToolError_WhenClusterUnreachable(t *testing.T) {
	setPolicy(t, "", "")
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // unreachable on purpose

	client, err := opensearch.New(opensearch.Config{URL: srv.URL}, discardLogger())
	if err != nil {
		t.Fatalf("opensearch.New() error = %v", err)
	}
	ts := NewToolset(client, discardLogger(), nil)
	tool := findTool(t, ts, "ListIndexTool")

	res, err := tool.Handler(context.Background(), callRequest("ListIndexTool", nil))
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("unreachable cluster did not produce an error result")
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "Error listing indices: getting OpenSearch version: ") {
		t.Errorf("text = %q", text)
	}
}
