package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/cassiomorais/pixgateway/internal/controller"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/cassiomorais/pixgateway/internal/normalizer"
	"github.com/cassiomorais/pixgateway/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Service  *service.PixService

	tracer *sdktrace.TracerProvider
}

// New loads configuration from the environment and builds the application.
func New(serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewFromConfig(cfg, serviceName, metricsNamespace, os.Stdout)
}

// NewFromConfig builds the application from an already validated config.
func NewFromConfig(cfg *config.Config, serviceName, metricsNamespace string, logOutput io.Writer) (*App, error) {
	logger := observability.InitLogger(cfg.Observability.LogLevel, serviceName, logOutput)
	log.Logger = logger
	logger.Info().
		Str("provider_mode", cfg.Provider.Mode).
		Str("amount_policy", cfg.Provider.AmountPolicy).
		Str("secret_key", observability.MaskSecret(cfg.Provider.SecretKey)).
		Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Msg("Tracing enabled")
		}
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = observability.NewMetrics(metricsNamespace, app.Registry)

	policy, err := normalizer.LookupAmountPolicy(cfg.Provider.AmountPolicy)
	if err != nil {
		return nil, err
	}
	decoder, err := normalizer.LookupAmountDecoder(cfg.Provider.ResponseAmountPolicy)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(cfg, policy, logger)
	if err != nil {
		return nil, err
	}
	factory := providers.NewFactory(breakerSettings(cfg.Provider.CircuitBreaker), app.onBreakerStateChange, provider)
	_, breaker, err := factory.Get(provider.Name())
	if err != nil {
		return nil, err
	}
	app.Metrics.CircuitBreakerState.WithLabelValues(breaker.Name()).Set(float64(breaker.State()))

	var outboundOpts []normalizer.OutboundOption
	if cfg.Provider.CompanyID != "" {
		outboundOpts = append(outboundOpts, normalizer.WithCompanyID(cfg.Provider.CompanyID))
	}

	app.Service = service.NewPixService(
		provider,
		breaker,
		normalizer.NewOutbound(policy, outboundOpts...),
		normalizer.NewInbound(decoder),
		app.Metrics,
		logger,
	)

	if err := app.Service.Ready(); err != nil {
		logger.Warn().Err(err).Msg("Provider not ready; payment calls will fail until configured")
	}

	return app, nil
}

// Router returns the HTTP handler serving the gateway API.
func (a *App) Router() http.Handler {
	deps := controller.RouterDeps{
		Service: a.Service,
		Logger:  a.Logger,
		Server:  a.Config.Server,
		Auth:    a.Config.Auth,
	}
	if a.Config.Observability.EnableMetrics {
		deps.Metrics = a.Metrics
		deps.Gatherer = a.Registry
	}
	return controller.NewRouter(deps)
}

// Close flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	if a.tracer == nil {
		return nil
	}
	return observability.Shutdown(ctx, a.tracer)
}

func (a *App) onBreakerStateChange(name string, from, to gobreaker.State) {
	a.Metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	a.Logger.Warn().
		Str("breaker", name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Circuit breaker state changed")
}

func newProvider(cfg *config.Config, policy normalizer.AmountPolicy, logger zerolog.Logger) (providers.Provider, error) {
	if cfg.Provider.Mode == config.ProviderModeSandbox {
		floor, err := policy.Convert(decimal.NewFromFloat(cfg.Sandbox.FeeFloor))
		if err != nil {
			return nil, fmt.Errorf("sandbox.fee_floor: %w", err)
		}
		return providers.NewSandboxProvider(cfg.Provider.Name,
			providers.WithLatency(cfg.Sandbox.Latency),
			providers.WithFailureRate(cfg.Sandbox.FailureRate),
			providers.WithFeeFloor(floor),
		), nil
	}
	return providers.NewHTTPProvider(
		cfg.Provider.Name,
		cfg.Provider.BaseURL,
		cfg.Provider.SecretKey,
		cfg.Provider.Timeout,
		providers.WithMaxResponseBytes(cfg.Provider.MaxResponseBytes),
		providers.WithLogger(logger),
	), nil
}

func breakerSettings(c config.CircuitBreakerConfig) providers.BreakerSettings {
	return providers.BreakerSettings{
		MinRequests:  c.MinRequests,
		FailureRatio: c.FailureRatio,
		Interval:     c.Interval,
		Timeout:      c.Timeout,
	}
}
