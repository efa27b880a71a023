// Package audit records security-relevant server activity as JSONL,
// optionally mirrored into a SQLite history store.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/security"
)

// EventType categorizes audit events.
type EventType string

// Audit event types covering every recorded interaction.
const (
	EventToolCall     EventType = "tool_call"
	EventToolResult   EventType = "tool_result"
	EventAccessDenied EventType = "access_denied"
	EventConfigReload EventType = "config_reload"
)

// Event is a single audit log entry.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	Tool      string            `json:"tool,omitempty"`
	Index     string            `json:"index,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// LoggerConfig configures the audit logger.
type LoggerConfig struct {
	// Writer is the destination for JSONL output. If nil, events are only
	// dispatched to the Store and OnEvent.
	Writer io.Writer

	// Store, if non-nil, receives every event for queryable history.
	Store *Store

	// Redactor, if non-nil, is applied to Detail and Metadata values
	// before writing.
	Redactor *security.Redactor

	// OnEvent, if non-nil, is called for every event (used in tests).
	OnEvent func(Event)

	// Now overrides time.Now for testing. Defaults to time.Now.
	Now func() time.Time
}

// Logger writes structured audit events as JSONL.
type Logger struct {
	writer   io.Writer
	store    *Store
	redactor *security.Redactor
	onEvent  func(Event)
	now      func() time.Time
	mu       sync.Mutex
}

// NewLogger creates an audit logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Logger{
		writer:   cfg.Writer,
		store:    cfg.Store,
		redactor: cfg.Redactor,
		onEvent:  cfg.OnEvent,
		now:      now,
	}
}

// OpenFile opens (creating parent directories as needed) an audit log
// file for appending.
func OpenFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("audit: create directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	return f, nil
}

// Log writes an audit event. The timestamp is set automatically and
// the detail is truncated to keep large tool payloads out of the log.
// The caller's Metadata map is never mutated.
func (l *Logger) Log(event Event) {
	event.Timestamp = l.now()
	event.Detail = truncateDetail(event.Detail)

	if len(event.Metadata) > 0 {
		cp := make(map[string]string, len(event.Metadata))
		for k, v := range event.Metadata {
			cp[k] = v
		}
		event.Metadata = cp
	}

	if l.redactor != nil {
		event.Detail = l.redactor.Redact(event.Detail)
		for k, v := range event.Metadata {
			event.Metadata[k] = l.redactor.Redact(v)
		}
	}

	// Dispatch and write under one lock so readers of the JSONL stream
	// see events in dispatch order.
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.onEvent != nil {
		l.onEvent(event)
	}
	if l.writer != nil {
		_ = json.NewEncoder(l.writer).Encode(event)
	}
	if l.store != nil {
		_ = l.store.Insert(event)
	}
}

// maxDetailLen is the maximum length of audit detail strings.
const maxDetailLen = 4096

// truncateDetail truncates a string to maxDetailLen, appending a
// truncation indicator. It walks back to a valid UTF-8 rune boundary to
// avoid splitting multi-byte characters.
func truncateDetail(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	i := maxDetailLen
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "...(truncated)"
}
