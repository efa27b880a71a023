package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config. It verifies the
// cluster URL, listener address, timeout, sampling rate, and the optional
// policy reload schedule. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.OpenSearch.URL == "" {
		errs = append(errs, errors.New("config: opensearch.url is required"))
	} else if u, err := url.Parse(cfg.OpenSearch.URL); err != nil {
		errs = append(errs, fmt.Errorf("config: opensearch.url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("config: opensearch.url: unsupported scheme %q", u.Scheme))
	}

	if cfg.OpenSearch.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("config: opensearch.timeout_seconds must not be negative, got %d", cfg.OpenSearch.TimeoutSeconds))
	}

	if (cfg.OpenSearch.Username == "") != (cfg.OpenSearch.Password == "") {
		errs = append(errs, errors.New("config: opensearch.username and opensearch.password must be set together"))
	}

	if cfg.Gateway.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Gateway.Listen); err != nil {
			errs = append(errs, fmt.Errorf("config: gateway.listen: %w", err))
		}
	}

	if s := cfg.IndexSecurity.ReloadSchedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			errs = append(errs, fmt.Errorf("config: index_security.reload_schedule: %w", err))
		}
	}

	if r := cfg.Telemetry.SampleRate; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.sample_rate must be in [0, 1], got %g", r))
	}

	return errors.Join(errs...)
}
