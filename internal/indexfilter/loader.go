package indexfilter

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the configuration file yields no
// patterns. Each accepts a JSON array literal or a comma-separated list.
const (
	EnvAllowedPatterns = "OPENSEARCH_ALLOWED_INDEX_PATTERNS"
	EnvDeniedPatterns  = "OPENSEARCH_DENIED_INDEX_PATTERNS"
)

var (
	current  atomic.Pointer[Policy]
	initOnce sync.Once
)

// Load resolves the pattern lists and installs the result as the
// process-wide policy. Resolution order, first non-empty source wins as a
// whole: the index_security section of the YAML document at path (when
// path is non-empty), then the OPENSEARCH_*_INDEX_PATTERNS environment
// variables, then an empty allow-all policy. Load never fails: unreadable
// or malformed sources are logged and treated as empty.
//
// Repeated calls replace the installed policy atomically. In-flight
// evaluations observe either the previous or the new policy, never a
// partially constructed one.
func Load(path string, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := loadFile(path, logger)
	if len(cfg.AllowedIndexPatterns) == 0 && len(cfg.DeniedIndexPatterns) == 0 {
		cfg.AllowedIndexPatterns = parseEnvPatterns(EnvAllowedPatterns, logger)
		cfg.DeniedIndexPatterns = parseEnvPatterns(EnvDeniedPatterns, logger)
	}

	policy := NewPolicy(cfg, logger)
	current.Store(policy)
	return policy
}

// Current returns the process-wide policy, loading one with no file path
// on first use. The lazy initialization is guarded so concurrent callers
// never construct two policies from two separate environment reads.
func Current() *Policy {
	if p := current.Load(); p != nil {
		return p
	}
	initOnce.Do(func() {
		if current.Load() == nil {
			Load("", nil)
		}
	})
	return current.Load()
}

// loadFile reads the index_security section from the YAML document at
// path. Any failure is logged and reported as an empty config so the
// caller falls through to the next source.
func loadFile(path string, logger *slog.Logger) Config {
	if path == "" {
		return Config{}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("reading index security config", "path", path, "error", err)
		return Config{}
	}

	var doc struct {
		IndexSecurity Config `yaml:"index_security"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		logger.Error("parsing index security config", "path", path, "error", err)
		return Config{}
	}

	if len(doc.IndexSecurity.AllowedIndexPatterns) > 0 || len(doc.IndexSecurity.DeniedIndexPatterns) > 0 {
		logger.Info("loaded index security config", "path", path)
	}
	return doc.IndexSecurity
}

// parseEnvPatterns reads one pattern-list environment variable. A value
// starting with '[' is parsed as a JSON array of strings; anything else
// is split on commas with empty segments discarded. Parse failures are
// logged and yield no patterns.
func parseEnvPatterns(key string, logger *slog.Logger) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var patterns []string
		if err := json.Unmarshal([]byte(raw), &patterns); err != nil {
			logger.Error("parsing index pattern environment variable", "var", key, "error", err)
			return nil
		}
		logger.Info("loaded index patterns from environment", "var", key, "patterns", patterns)
		return patterns
	}

	var patterns []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) > 0 {
		logger.Info("loaded index patterns from environment", "var", key, "patterns", patterns)
	}
	return patterns
}
