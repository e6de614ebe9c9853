package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"ok", http.StatusOK, "info"},
		{"client error", http.StatusBadRequest, "warn"},
		{"server error", http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			r := chi.NewRouter()
			r.Use(chimw.RequestID)
			r.Use(RequestLogger(logger))
			r.Get("/transactions/{transactionId}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte("body"))
			})

			req := httptest.NewRequest(http.MethodGet, "/transactions/tx_1?verbose=1", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, "http_request", line["message"])
			assert.Equal(t, "GET", line["method"])
			assert.Equal(t, "/transactions/tx_1?verbose=1", line["path"])
			assert.Equal(t, float64(tt.statusCode), line["status"])
			assert.Equal(t, float64(4), line["bytes"])
			assert.NotEmpty(t, line["request_id"])
		})
	}
}

func TestRequestLogger_ExposesLoggerToHandlers(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusNoContent)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, buf.String(), "inside handler")
}
