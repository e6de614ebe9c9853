package controller

import (
	"net/http"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/pixgateway/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Service is everything the router serves: the transaction endpoints and
// the readiness probe.
type Service interface {
	PaymentService
	ReadinessChecker
}

type RouterDeps struct {
	Service  Service
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
	Server   config.ServerConfig
	Auth     config.AuthConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if deps.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(deps.Server.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Server.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: deps.Server.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}
	r.Use(customMW.SecurityHeaders())

	healthH := NewHealthController(deps.Service)
	transactionH := NewTransactionController(deps.Service)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/transactions", func(r chi.Router) {
		if deps.Server.RateLimitPerMinute > 0 {
			r.Use(customMW.RateLimit(deps.Server.RateLimitPerMinute, deps.Metrics))
		}
		if deps.Auth.JWTSecret != "" {
			r.Use(customMW.RequireAuth(deps.Auth.JWTSecret))
		}

		r.Post("/", transactionH.Create)
		r.Get("/{transactionId}", transactionH.Get)
	})

	return r
}
