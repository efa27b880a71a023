package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds   float64  `json:"uptime_seconds"`
	Tools           []string `json:"tools"`
	AccessPolicy    string   `json:"access_policy"` // "restricted" or "allow_all"
	AllowedPatterns []string `json:"allowed_patterns,omitempty"`
	DeniedPatterns  []string `json:"denied_patterns,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		policy := indexfilter.Current()

		resp := StatusResponse{
			UptimeSeconds:   time.Since(g.startedAt).Truncate(time.Second).Seconds(),
			Tools:           g.registry.Names(),
			AccessPolicy:    "allow_all",
			AllowedPatterns: policy.AllowedPatterns(),
			DeniedPatterns:  policy.DeniedPatterns(),
		}
		if policy.IsRestricted() {
			resp.AccessPolicy = "restricted"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
