package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/tools"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, healthy bool) *opensearch.Client {
	t.Helper()

	var srv *httptest.Server
	if healthy {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name":         "node-1",
				"cluster_name": "test-cluster",
				"version":      map[string]any{"distribution": "opensearch", "number": "2.19.0"},
			})
		}))
		t.Cleanup(srv.Close)
	} else {
		srv = httptest.NewServer(http.NotFoundHandler())
		srv.Close()
	}

	client, err := opensearch.New(opensearch.Config{URL: srv.URL}, discardLogger())
	if err != nil {
		t.Fatalf("opensearch.New() error = %v", err)
	}
	return client
}

func testGateway(t *testing.T, healthy bool, configPath string, auditLog *audit.Logger) *Gateway {
	t.Helper()

	registry := tools.NewRegistry()
	ts := tools.NewToolset(testClient(t, true), discardLogger(), nil)
	if err := ts.RegisterAll(registry); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}

	return New(Config{Listen: "127.0.0.1:0"}, configPath, testClient(t, healthy), registry, nil, auditLog, discardLogger())
}

func TestHandleHealth_OK(t *testing.T) {
	g := testGateway(t, true, "", nil)

	rec := httptest.NewRecorder()
	g.handleHealth()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Cluster != "test-cluster" || resp.Version != "2.19.0" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandleHealth_Degraded(t *testing.T) {
	g := testGateway(t, false, "", nil)

	rec := httptest.NewRecorder()
	g.handleHealth()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Error == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandleStatus_ReportsToolsAndPolicy(t *testing.T) {
	t.Setenv(indexfilter.EnvAllowedPatterns, "logs-*")
	t.Setenv(indexfilter.EnvDeniedPatterns, "")
	indexfilter.Load("", discardLogger())
	t.Cleanup(func() {
		os.Unsetenv(indexfilter.EnvAllowedPatterns)
		os.Unsetenv(indexfilter.EnvDeniedPatterns)
		indexfilter.Load("", discardLogger())
	})

	g := testGateway(t, true, "", nil)

	rec := httptest.NewRecorder()
	g.handleStatus()(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessPolicy != "restricted" {
		t.Errorf("access_policy = %q, want restricted", resp.AccessPolicy)
	}
	if len(resp.AllowedPatterns) != 1 || resp.AllowedPatterns[0] != "logs-*" {
		t.Errorf("allowed_patterns = %v", resp.AllowedPatterns)
	}
	if len(resp.Tools) != 14 {
		t.Errorf("got %d tools, want 14", len(resp.Tools))
	}
}

func TestHandleReloadConfig_SwapsPolicy(t *testing.T) {
	t.Setenv(indexfilter.EnvAllowedPatterns, "")
	t.Setenv(indexfilter.EnvDeniedPatterns, "")
	indexfilter.Load("", discardLogger())
	t.Cleanup(func() { indexfilter.Load("", discardLogger()) })

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "index_security:\n  denied_index_patterns:\n    - secret-*\n"
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	var events []audit.Event
	auditLog := audit.NewLogger(audit.LoggerConfig{OnEvent: func(e audit.Event) { events = append(events, e) }})
	g := testGateway(t, true, path, auditLog)

	rec := httptest.NewRecorder()
	g.handleReloadConfig()(rec, httptest.NewRequest(http.MethodPost, "/config/reload", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ReloadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Reloaded || len(resp.DeniedPatterns) != 1 || resp.DeniedPatterns[0] != "secret-*" {
		t.Errorf("resp = %+v", resp)
	}

	if indexfilter.Validate("secret-payroll") == nil {
		t.Error("reloaded policy not enforced")
	}
	if len(events) != 1 || events[0].Type != audit.EventConfigReload {
		t.Errorf("audit events = %+v", events)
	}
}

func TestRouter_ServesMetrics(t *testing.T) {
	g := testGateway(t, true, "", nil)

	rec := httptest.NewRecorder()
	g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty metrics body")
	}
}

func TestRouter_MountsMCPHandler(t *testing.T) {
	registry := tools.NewRegistry()
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	g := New(Config{Listen: "127.0.0.1:0"}, "", testClient(t, true), registry, mcpHandler, nil, discardLogger())

	rec := httptest.NewRecorder()
	g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 from mounted handler", rec.Code)
	}
}
