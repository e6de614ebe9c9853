package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cassiomorais/pixgateway/internal/normalizer"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderModeLive    = "live"
	ProviderModeSandbox = "sandbox"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Provider      ProviderConfig      `mapstructure:"provider"`
	Sandbox       SandboxConfig       `mapstructure:"sandbox"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Auth          AuthConfig          `mapstructure:"auth"`
}

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	CORS               CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ProviderConfig describes the upstream PIX provider. SecretKey is not
// validated at startup; a missing key is reported per request.
type ProviderConfig struct {
	Mode                 string               `mapstructure:"mode"`
	Name                 string               `mapstructure:"name"`
	BaseURL              string               `mapstructure:"base_url"`
	SecretKey            string               `mapstructure:"secret_key"`
	CompanyID            string               `mapstructure:"company_id"`
	Timeout              time.Duration        `mapstructure:"timeout"`
	AmountPolicy         string               `mapstructure:"amount_policy"`
	ResponseAmountPolicy string               `mapstructure:"response_amount_policy"`
	MaxResponseBytes     int64                `mapstructure:"max_response_bytes"`
	CircuitBreaker       CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SandboxConfig tunes the in-process provider. FeeFloor is in reais.
type SandboxConfig struct {
	Latency     time.Duration `mapstructure:"latency"`
	FeeFloor    float64       `mapstructure:"fee_floor"`
	FailureRate float64       `mapstructure:"failure_rate"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	// A .env file is a local convenience; real deployments set the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("PIXGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pixgateway")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv accepts the un-prefixed variable names older deployments use.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("provider.secret_key", "PIXGW_PROVIDER_SECRET_KEY", "PIX_PROVIDER_SECRET_KEY", "SECRET_KEY")
	_ = v.BindEnv("provider.company_id", "PIXGW_PROVIDER_COMPANY_ID", "COMPANY_ID")
	_ = v.BindEnv("server.port", "PIXGW_SERVER_PORT", "PORT")
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit_per_minute must not be negative"))
	}

	switch c.Provider.Mode {
	case ProviderModeLive:
		if c.Provider.BaseURL == "" {
			errs = append(errs, fmt.Errorf("provider.base_url is required in live mode"))
		}
	case ProviderModeSandbox:
	default:
		errs = append(errs, fmt.Errorf("provider.mode must be %q or %q, got %q", ProviderModeLive, ProviderModeSandbox, c.Provider.Mode))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("provider.timeout must be positive"))
	}
	if _, err := normalizer.LookupAmountPolicy(c.Provider.AmountPolicy); err != nil {
		errs = append(errs, fmt.Errorf("provider.amount_policy: %w", err))
	}
	if _, err := normalizer.LookupAmountDecoder(c.Provider.ResponseAmountPolicy); err != nil {
		errs = append(errs, fmt.Errorf("provider.response_amount_policy: %w", err))
	}
	if c.Provider.MaxResponseBytes <= 0 {
		errs = append(errs, fmt.Errorf("provider.max_response_bytes must be positive"))
	}
	if r := c.Provider.CircuitBreaker.FailureRatio; r <= 0 || r > 1 {
		errs = append(errs, fmt.Errorf("provider.circuit_breaker.failure_ratio must be in (0, 1]"))
	}

	if r := c.Sandbox.FailureRate; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("sandbox.failure_rate must be in [0, 1]"))
	}

	// Production environment checks
	env := os.Getenv("ENV")
	if env == "production" || env == "prod" {
		if c.Provider.Mode == ProviderModeSandbox {
			errs = append(errs, fmt.Errorf("provider.mode sandbox is not allowed in production"))
		}
		if !strings.HasPrefix(c.Provider.BaseURL, "https://") {
			errs = append(errs, fmt.Errorf("provider.base_url must use https in production"))
		}
	}

	// JWT secret length validation
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least 32 characters"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.request_timeout", "25s")
	v.SetDefault("server.rate_limit_per_minute", 120)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Provider defaults
	v.SetDefault("provider.mode", ProviderModeLive)
	v.SetDefault("provider.name", "pix")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.secret_key", "")
	v.SetDefault("provider.company_id", "")
	v.SetDefault("provider.timeout", "15s")
	v.SetDefault("provider.amount_policy", "minor_units")
	v.SetDefault("provider.response_amount_policy", "minor_units")
	v.SetDefault("provider.max_response_bytes", 1<<20)
	v.SetDefault("provider.circuit_breaker.min_requests", 10)
	v.SetDefault("provider.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("provider.circuit_breaker.interval", "60s")
	v.SetDefault("provider.circuit_breaker.timeout", "30s")

	// Sandbox defaults
	v.SetDefault("sandbox.latency", "150ms")
	v.SetDefault("sandbox.fee_floor", 1.0)
	v.SetDefault("sandbox.failure_rate", 0.0)

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", false)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
}
