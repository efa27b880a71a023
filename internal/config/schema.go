// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for the opensearch-mcp daemon.
package config

import (
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
)

// Config is the top-level configuration structure.
type Config struct {
	// OpenSearch holds the connection settings for the target cluster.
	OpenSearch OpenSearchConfig `yaml:"opensearch"`

	// IndexSecurity holds the allow/deny index pattern lists. The same
	// section is read independently by the index filter loader, which
	// must stay tolerant of a missing or malformed file; validation here
	// applies only when the daemon loads the full config.
	IndexSecurity indexfilter.Config `yaml:"index_security"`

	// Gateway configures the operational HTTP surface (health, status,
	// metrics, reload).
	Gateway GatewayConfig `yaml:"gateway"`

	// Audit configures the audit trail. Disabled when Path and DBPath
	// are both empty.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry configures OTLP trace export. Disabled when
	// OTLPEndpoint is empty.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// OpenSearchConfig holds connection settings for one cluster.
type OpenSearchConfig struct {
	// URL is the cluster base URL, e.g. https://localhost:9200.
	URL string `yaml:"url"`

	// Username and Password enable basic auth when both are set.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// InsecureSkipTLSVerify disables certificate verification. Intended
	// for clusters running with self-signed demo certificates.
	InsecureSkipTLSVerify bool `yaml:"insecure_skip_tls_verify,omitempty"`

	// TimeoutSeconds bounds each request to the cluster. Zero means the
	// default of 30 seconds.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// GatewayConfig configures the admin/ops HTTP listener.
type GatewayConfig struct {
	// Listen is the host:port the gateway binds to, e.g. 127.0.0.1:8085.
	// Empty disables the gateway in stdio mode.
	Listen string `yaml:"listen,omitempty"`
}

// AuditConfig configures the audit trail destinations.
type AuditConfig struct {
	// Path is the JSONL audit log file. Empty disables file output.
	Path string `yaml:"path,omitempty"`

	// DBPath is the SQLite history database. Empty disables retention.
	DBPath string `yaml:"db_path,omitempty"`
}

// TelemetryConfig configures OTLP/HTTP trace export.
type TelemetryConfig struct {
	// OTLPEndpoint is the collector host:port, e.g. localhost:4318.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`

	// Insecure allows plain-HTTP export (development collectors).
	Insecure bool `yaml:"insecure,omitempty"`

	// SampleRate is the trace sampling rate in [0, 1]. The loader
	// defaults it to 1 when an endpoint is set and no rate is given.
	SampleRate float64 `yaml:"sample_rate,omitempty"`
}
