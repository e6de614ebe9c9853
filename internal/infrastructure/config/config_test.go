package config

import (
	"testing"
	"time"

	"github.com/cassiomorais/pixgateway/internal/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Provider: ProviderConfig{
			Mode:                 ProviderModeLive,
			BaseURL:              "https://api.provider.test/v1",
			Timeout:              15 * time.Second,
			AmountPolicy:         "minor_units",
			ResponseAmountPolicy: "minor_units",
			MaxResponseBytes:     1 << 20,
			CircuitBreaker:       CircuitBreakerConfig{MinRequests: 10, FailureRatio: 0.6},
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_MissingSecretKeyIsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.SecretKey = ""

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_Provider(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown mode", func(c *Config) { c.Provider.Mode = "mock" }, "provider.mode"},
		{"live without base url", func(c *Config) { c.Provider.BaseURL = "" }, "provider.base_url"},
		{"zero timeout", func(c *Config) { c.Provider.Timeout = 0 }, "provider.timeout"},
		{"unknown amount policy", func(c *Config) { c.Provider.AmountPolicy = "cents" }, "provider.amount_policy"},
		{"unknown response policy", func(c *Config) { c.Provider.ResponseAmountPolicy = "major_units_2dp" }, "provider.response_amount_policy"},
		{"zero response limit", func(c *Config) { c.Provider.MaxResponseBytes = 0 }, "provider.max_response_bytes"},
		{"failure ratio above one", func(c *Config) { c.Provider.CircuitBreaker.FailureRatio = 1.5 }, "failure_ratio"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth.jwt_secret"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitPerMinute = -1 }, "rate_limit_per_minute"},
		{"sandbox failure rate above one", func(c *Config) { c.Sandbox.FailureRate = 2 }, "sandbox.failure_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate_AcceptsRegisteredPolicies(t *testing.T) {
	for _, name := range normalizer.AmountPolicyNames() {
		cfg := validConfig()
		cfg.Provider.AmountPolicy = name
		assert.NoError(t, cfg.Validate(), name)
	}
	for _, name := range normalizer.AmountDecoderNames() {
		cfg := validConfig()
		cfg.Provider.ResponseAmountPolicy = name
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestConfig_Validate_SandboxWithoutBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.Mode = ProviderModeSandbox
	cfg.Provider.BaseURL = ""

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_Production(t *testing.T) {
	t.Setenv("ENV", "production")

	cfg := validConfig()
	cfg.Provider.Mode = ProviderModeSandbox
	cfg.Provider.BaseURL = "http://insecure.test"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sandbox is not allowed")
	assert.Contains(t, err.Error(), "https")
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "server.read_timeout")
	assert.Contains(t, err.Error(), "provider.mode")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PIXGW_PROVIDER_MODE", "sandbox")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "minor_units", cfg.Provider.AmountPolicy)
	assert.Equal(t, "minor_units", cfg.Provider.ResponseAmountPolicy)
	assert.Equal(t, int64(1<<20), cfg.Provider.MaxResponseBytes)
	assert.Equal(t, uint32(10), cfg.Provider.CircuitBreaker.MinRequests)
	assert.Equal(t, ProviderModeSandbox, cfg.Provider.Mode)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PIXGW_PROVIDER_BASE_URL", "https://api.provider.test/v1")
	t.Setenv("PIXGW_PROVIDER_AMOUNT_POLICY", "major_units")
	t.Setenv("PIXGW_PROVIDER_TIMEOUT", "5s")
	t.Setenv("SECRET_KEY", "sk_live_legacy")
	t.Setenv("COMPANY_ID", "comp_1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderModeLive, cfg.Provider.Mode)
	assert.Equal(t, "https://api.provider.test/v1", cfg.Provider.BaseURL)
	assert.Equal(t, "major_units", cfg.Provider.AmountPolicy)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "sk_live_legacy", cfg.Provider.SecretKey)
	assert.Equal(t, "comp_1", cfg.Provider.CompanyID)
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv("PIXGW_PROVIDER_MODE", "live")
	t.Setenv("PIXGW_PROVIDER_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider.base_url")
}
