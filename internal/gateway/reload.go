package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
)

// ReloadResponse is the JSON response for POST /config/reload.
type ReloadResponse struct {
	Reloaded        bool     `json:"reloaded"`
	AllowedPatterns []string `json:"allowed_patterns,omitempty"`
	DeniedPatterns  []string `json:"denied_patterns,omitempty"`
}

// handleReloadConfig re-reads the index access policy from its sources
// and swaps it in. In-flight tool calls keep the policy they started
// with.
func (g *Gateway) handleReloadConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		policy := indexfilter.Load(g.configPath, g.logger)

		g.logger.Info("access policy reloaded",
			"allowed", len(policy.AllowedPatterns()),
			"denied", len(policy.DeniedPatterns()),
		)
		if g.audit != nil {
			g.audit.Log(audit.Event{
				Type: audit.EventConfigReload,
				Detail: fmt.Sprintf("allowed=%d denied=%d",
					len(policy.AllowedPatterns()), len(policy.DeniedPatterns())),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ReloadResponse{
			Reloaded:        true,
			AllowedPatterns: policy.AllowedPatterns(),
			DeniedPatterns:  policy.DeniedPatterns(),
		})
	}
}
