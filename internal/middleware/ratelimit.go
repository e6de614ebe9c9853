package middleware

import (
	"net/http"
	"time"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/go-chi/httprate"
)

var limitHints = map[string]string{
	"create": "wait before creating more charges",
	"status": "poll the transaction status less often",
}

// RateLimit allows each client IP requestsPerMinute creates and, separately,
// requestsPerMinute status lookups. Lookups of different transaction ids
// share one budget. m may be nil.
func RateLimit(requestsPerMinute int, m *observability.Metrics) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, keyByOperation),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			op := operation(r)
			if m != nil {
				m.RateLimited.WithLabelValues(op).Inc()
			}
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded", "rate_limit", limitHints[op])
		}),
	)
}

func keyByOperation(r *http.Request) (string, error) {
	return operation(r), nil
}

func operation(r *http.Request) string {
	if r.Method == http.MethodPost {
		return "create"
	}
	return "status"
}
