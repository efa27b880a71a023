package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/security"
)

func TestLogger_WritesJSONL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fixedTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	logger := NewLogger(LoggerConfig{
		Writer: &buf,
		Now:    func() time.Time { return fixedTime },
	})

	logger.Log(Event{
		Type:   EventToolCall,
		Tool:   "SearchIndexTool",
		Index:  "logs-2026.01",
		Detail: "query executed",
	})

	var got Event
	if err := json.NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatalf("failed to decode JSONL: %v", err)
	}

	if got.Type != EventToolCall {
		t.Errorf("type = %q, want %q", got.Type, EventToolCall)
	}
	if got.Tool != "SearchIndexTool" {
		t.Errorf("tool = %q, want %q", got.Tool, "SearchIndexTool")
	}
	if got.Index != "logs-2026.01" {
		t.Errorf("index = %q, want %q", got.Index, "logs-2026.01")
	}
	if got.Timestamp != fixedTime {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, fixedTime)
	}
}

func TestLogger_TruncatesDetail(t *testing.T) {
	t.Parallel()

	var got Event
	logger := NewLogger(LoggerConfig{
		OnEvent: func(e Event) { got = e },
	})

	logger.Log(Event{
		Type:   EventToolResult,
		Detail: strings.Repeat("x", maxDetailLen+100),
	})

	if !strings.HasSuffix(got.Detail, "...(truncated)") {
		t.Errorf("detail missing truncation indicator: %q", got.Detail[len(got.Detail)-20:])
	}
	if len(got.Detail) > maxDetailLen+len("...(truncated)") {
		t.Errorf("detail too long: %d bytes", len(got.Detail))
	}
}

func TestLogger_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// A detail of multi-byte runes whose length is not a multiple of the
	// cap forces the cut to fall mid-rune.
	var got Event
	logger := NewLogger(LoggerConfig{
		OnEvent: func(e Event) { got = e },
	})

	logger.Log(Event{Detail: strings.Repeat("日", maxDetailLen)})

	cut := strings.TrimSuffix(got.Detail, "...(truncated)")
	for _, r := range cut {
		if r == '�' {
			t.Fatal("truncation split a multi-byte rune")
		}
	}
}

func TestLogger_RedactsDetailAndMetadata(t *testing.T) {
	t.Parallel()

	r := security.NewRedactor()
	r.AddLiteral("s3cret")

	var got Event
	logger := NewLogger(LoggerConfig{
		Redactor: r,
		OnEvent:  func(e Event) { got = e },
	})

	logger.Log(Event{
		Type:     EventToolCall,
		Detail:   "auth with s3cret",
		Metadata: map[string]string{"password": "s3cret"},
	})

	if strings.Contains(got.Detail, "s3cret") {
		t.Errorf("detail leaked: %q", got.Detail)
	}
	if strings.Contains(got.Metadata["password"], "s3cret") {
		t.Errorf("metadata leaked: %q", got.Metadata["password"])
	}
}

func TestLogger_DoesNotMutateCallerMetadata(t *testing.T) {
	t.Parallel()

	meta := map[string]string{"is_error": "false"}
	var got Event
	logger := NewLogger(LoggerConfig{
		OnEvent: func(e Event) { got = e },
	})

	logger.Log(Event{Type: EventToolResult, Metadata: meta})

	got.Metadata["is_error"] = "mutated"
	if meta["is_error"] != "false" {
		t.Error("caller metadata was mutated")
	}
}

func TestLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Log(Event{Type: EventToolCall, Tool: "ListIndexTool"})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", line, err)
		}
	}
}

func TestOpenFile_CreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/nested/dir/audit.jsonl"
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := f.Write([]byte("{}\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
