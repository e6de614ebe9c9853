package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readinessFunc func() error

func (f readinessFunc) Ready() error { return f() }

func TestHealthController_Health(t *testing.T) {
	h := NewHealthController(readinessFunc(func() error { return nil }))
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"PIX gateway is running","timestamp":"2026-10-19T12:00:00Z"}`, w.Body.String())
}

func TestHealthController_HealthIgnoresReadiness(t *testing.T) {
	h := NewHealthController(readinessFunc(func() error { return domainErrors.ErrMissingCredentials }))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, err := time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)
}

func TestHealthController_Liveness(t *testing.T) {
	h := NewHealthController(readinessFunc(func() error { return nil }))

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestHealthController_Readiness(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedState  string
	}{
		{"ready", nil, http.StatusOK, "ready"},
		{"missing credentials", domainErrors.NewConfigurationError("provider.secret_key", ""), http.StatusServiceUnavailable, "not ready"},
		{"circuit open", fmt.Errorf("pix: %w", domainErrors.ErrProviderUnavailable), http.StatusServiceUnavailable, "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthController(readinessFunc(func() error { return tt.err }))

			w := httptest.NewRecorder()
			h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedState, body.Status)
			if tt.err != nil {
				assert.NotEmpty(t, body.Reason)
			}
		})
	}
}
