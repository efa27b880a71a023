package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
)

// PolicyReloadJob periodically re-reads the index access policy so
// pattern changes made on disk or in the environment take effect
// without a restart.
type PolicyReloadJob struct {
	ConfigPath   string
	Logger       *slog.Logger
	Audit        *audit.Logger // nil disables audit events
	ScheduleExpr string        // empty = default "*/5 * * * *"
}

var _ Job = (*PolicyReloadJob)(nil)

// Name implements Job.
func (j *PolicyReloadJob) Name() string {
	return "policy_reload"
}

// Schedule implements Job.
func (j *PolicyReloadJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run swaps in a freshly loaded policy.
func (j *PolicyReloadJob) Run(_ context.Context) error {
	policy := indexfilter.Load(j.ConfigPath, j.Logger)
	j.Logger.Debug("cron: access policy reloaded",
		"allowed", len(policy.AllowedPatterns()),
		"denied", len(policy.DeniedPatterns()),
	)
	if j.Audit != nil {
		j.Audit.Log(audit.Event{
			Type: audit.EventConfigReload,
			Detail: fmt.Sprintf("scheduled reload: allowed=%d denied=%d",
				len(policy.AllowedPatterns()), len(policy.DeniedPatterns())),
		})
	}
	return nil
}
