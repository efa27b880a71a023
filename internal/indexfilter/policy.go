// Package indexfilter decides whether cluster operations may touch a given
// index. A Policy holds ordered denied and allowed pattern lists; denied
// patterns always win over allowed ones, and an empty policy allows
// everything. Policies are immutable once constructed — reconfiguration
// swaps the process-wide handle rather than mutating a policy in place.
package indexfilter

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config holds the raw pattern lists for index filtering, as they appear
// under the index_security section of the configuration file.
type Config struct {
	// AllowedIndexPatterns lists patterns an index must match when the
	// list is non-empty. An empty list imposes no allow-side restriction.
	AllowedIndexPatterns []string `yaml:"allowed_index_patterns"`

	// DeniedIndexPatterns lists patterns that block access outright.
	// Deny takes precedence over allow.
	DeniedIndexPatterns []string `yaml:"denied_index_patterns"`

	// ReloadSchedule is an optional cron expression for periodic policy
	// reload. Ignored by the evaluator itself.
	ReloadSchedule string `yaml:"reload_schedule,omitempty"`
}

// Decision is the outcome of evaluating an index name or expression.
type Decision struct {
	// Allowed reports whether the operation may proceed.
	Allowed bool

	// Reason names the offending pattern and index when Allowed is false.
	// Always empty when Allowed is true.
	Reason string
}

// allow is the zero-reason passing decision.
var allow = Decision{Allowed: true}

// Policy evaluates single index names against the configured allow/deny
// pattern lists. The pattern lists are compiled once at construction and
// never mutated afterwards, so a Policy is safe for concurrent use.
type Policy struct {
	denied  []Pattern
	allowed []Pattern
	logger  *slog.Logger
}

// NewPolicy compiles the configured pattern lists into an immutable Policy.
func NewPolicy(cfg Config, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}

	denied := make([]Pattern, len(cfg.DeniedIndexPatterns))
	for i, raw := range cfg.DeniedIndexPatterns {
		denied[i] = CompilePattern(raw, logger)
	}
	allowed := make([]Pattern, len(cfg.AllowedIndexPatterns))
	for i, raw := range cfg.AllowedIndexPatterns {
		allowed[i] = CompilePattern(raw, logger)
	}

	return &Policy{denied: denied, allowed: allowed, logger: logger}
}

// Evaluate decides access for one already-atomic index name (no comma
// splitting — see CheckAccess). The order is fixed: empty names and
// caller-supplied wildcard expressions pass unconditionally, denied
// patterns are checked before allowed ones, and a non-empty allowed list
// requires at least one match.
func (p *Policy) Evaluate(name string) Decision {
	if name == "" {
		return allow
	}

	// A wildcard in the request cannot be validated here: only the
	// cluster knows what it expands to. Let it through and rely on the
	// cluster-side expansion.
	if strings.ContainsAny(name, "*?") {
		p.logger.Debug("index expression contains wildcards, deferring to cluster expansion", "index", name)
		return allow
	}

	for _, pat := range p.denied {
		if pat.Matches(name) {
			reason := fmt.Sprintf("Index %q matches denied pattern: %s", name, pat)
			p.logger.Warn(reason)
			return Decision{Reason: reason}
		}
	}

	if len(p.allowed) > 0 {
		for _, pat := range p.allowed {
			if pat.Matches(name) {
				p.logger.Debug("index matches allowed pattern", "index", name, "pattern", pat.String())
				return allow
			}
		}
		reason := fmt.Sprintf("Index %q does not match any allowed patterns", name)
		p.logger.Warn(reason)
		return Decision{Reason: reason}
	}

	return allow
}

// CheckAccess splits a caller-supplied index expression on commas, trims
// each segment, and evaluates the segments in order. The first denial is
// returned as-is; later segments are not evaluated after a denial.
func (p *Policy) CheckAccess(expr string) Decision {
	if expr == "" {
		return allow
	}

	for _, segment := range strings.Split(expr, ",") {
		if d := p.Evaluate(strings.TrimSpace(segment)); !d.Allowed {
			return d
		}
	}
	return allow
}

// IsRestricted reports whether any patterns are configured.
func (p *Policy) IsRestricted() bool {
	return len(p.denied) > 0 || len(p.allowed) > 0
}

// AllowedPatterns returns the configured allowed patterns as strings, in
// order. Used to narrow unscoped index listings to what the policy permits.
func (p *Policy) AllowedPatterns() []string {
	out := make([]string, len(p.allowed))
	for i, pat := range p.allowed {
		out[i] = pat.String()
	}
	return out
}

// DeniedPatterns returns the configured denied patterns as strings, in order.
func (p *Policy) DeniedPatterns() []string {
	out := make([]string, len(p.denied))
	for i, pat := range p.denied {
		out[i] = pat.String()
	}
	return out
}
