package controller

import (
	"net/http"
	"time"
)

// ReadinessChecker reports whether the gateway can serve payment calls.
type ReadinessChecker interface {
	Ready() error
}

type HealthController struct {
	checker ReadinessChecker
	now     func() time.Time
}

func NewHealthController(checker ReadinessChecker) *HealthController {
	return &HealthController{checker: checker, now: time.Now}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Message:   "PIX gateway is running",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "alive"})
}

func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
			Reason: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
