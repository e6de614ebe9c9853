package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// gatewayRouter mirrors the route layout of the gateway with handlers that
// reply with status.
func gatewayRouter(mw func(http.Handler) http.Handler, status int) *chi.Mux {
	reply := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/health", reply)
	r.Get("/metrics", reply)
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", reply)
		r.Get("/{transactionId}", reply)
	})
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestMetrics_GatewayRouteLabels(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	r := gatewayRouter(Metrics(m), http.StatusOK)

	serve(r, http.MethodPost, "/transactions")
	serve(r, http.MethodPost, "/transactions/")
	serve(r, http.MethodGet, "/transactions/tx_1")
	serve(r, http.MethodGet, "/transactions/tx_2")
	serve(r, http.MethodGet, "/health")

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/transactions", "200")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/transactions/{transactionId}", "200")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 3, promtestutil.CollectAndCount(m.HTTPRequestsTotal))
	assert.Equal(t, 3, promtestutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestMetrics_UnknownPathsShareOneSeries(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	r := gatewayRouter(Metrics(m), http.StatusOK)

	for i := range 25 {
		w := serve(r, http.MethodGet, fmt.Sprintf("/wp-admin/%d.php", i))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 25.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1, promtestutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestMetrics_ScrapesAreNotCounted(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	r := gatewayRouter(Metrics(m), http.StatusOK)

	for range 3 {
		serve(r, http.MethodGet, "/metrics")
	}

	assert.Zero(t, promtestutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestMetrics_StatusLabel(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"fee rejected", http.StatusBadRequest, "400"},
		{"provider outage mirrored", http.StatusServiceUnavailable, "503"},
		{"unknown transaction", http.StatusNotFound, "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := observability.NewMetrics("test", prometheus.NewRegistry())
			r := gatewayRouter(Metrics(m), tt.status)

			serve(r, http.MethodPost, "/transactions")

			assert.Equal(t, 1.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/transactions", tt.want)))
		})
	}
}

func TestMetrics_ImplicitOK(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	serve(r, http.MethodGet, "/health")

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
}

func TestRouteLabel_WithoutRouter(t *testing.T) {
	assert.Equal(t, "unmatched", routeLabel(httptest.NewRequest(http.MethodGet, "/transactions/tx_1", nil)))
}
