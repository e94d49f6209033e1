package gateway

import "net/http"

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Model    string `json:"model,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when the chat backend is wired, 503 while it is not.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.sessions != nil {
			resp.Sessions = g.sessions.Len()
		}
		if g.provider != nil {
			resp.Model = g.provider.ModelName()
		}
		if g.runner == nil {
			resp.Status = "degraded"
		}

		code := http.StatusOK
		if resp.Status == "degraded" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}
