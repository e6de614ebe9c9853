package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request. Once chi has routed the request
// the span is renamed to the route label, so /transactions/{transactionId}
// does not produce one span name per id.
func Tracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		renamed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			trace.SpanFromContext(r.Context()).SetName(spanName(r))
		})
		return otelhttp.NewHandler(renamed, "http.request",
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != metricsPath
			}),
		)
	}
}

func spanName(r *http.Request) string {
	return r.Method + " " + routeLabel(r)
}
