package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caffinecoder/skillnav/pkg/metrics"
)

// HealthHandler serves Prometheus metrics.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests with the metrics of the
// custom registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

type statusResponse struct {
	Status         string   `json:"status"`
	Endpoints      []string `json:"endpoints"`
	AuthConfigured bool     `json:"auth_configured"`
	AIConfigured   bool     `json:"ai_configured"`
}

// handleRoot answers GET / with the service status and every other unknown
// path with a JSON 404.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeNotFound(w)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, methodNotAllowedResponse{Error: "Method not allowed", Hint: methodHint})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:         "Server is running",
		Endpoints:      []string{"/analyze", "/auth/verify"},
		AuthConfigured: s.auth != nil && s.auth.Configured(),
		AIConfigured:   s.deps.AIEnabled(),
	})
}
