package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	transactionsPath        = "/transactions"
	defaultMaxResponseBytes = 1 << 20
	secretKeyHint           = "set PIXGW_PROVIDER_SECRET_KEY (or SECRET_KEY) to the provider secret key and restart"
)

// HTTPProvider talks to the live provider API over HTTPS.
type HTTPProvider struct {
	name      string
	baseURL   string
	secretKey string
	client    *http.Client
	maxBody   int64
	logger    zerolog.Logger
}

type HTTPOption func(*HTTPProvider)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

// WithMaxResponseBytes bounds how much of a reply body is read.
func WithMaxResponseBytes(n int64) HTTPOption {
	return func(p *HTTPProvider) { p.maxBody = n }
}

func WithLogger(l zerolog.Logger) HTTPOption {
	return func(p *HTTPProvider) { p.logger = l }
}

func NewHTTPProvider(name, baseURL, secretKey string, timeout time.Duration, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		name:      name,
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxBody: defaultMaxResponseBytes,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// BasicAuthorization builds the provider's Authorization header. The
// provider takes the secret key as the user name and a fixed "x" password.
func BasicAuthorization(secretKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(secretKey+":x"))
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Configured() error {
	if p.secretKey == "" {
		return domainErrors.NewConfigurationError("provider.secret_key", secretKeyHint)
	}
	return nil
}

func (p *HTTPProvider) CreateTransaction(ctx context.Context, req *pix.ProviderRequest) (*pix.RawResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal provider request: %w", err)
	}
	return p.do(ctx, http.MethodPost, transactionsPath, body)
}

func (p *HTTPProvider) GetTransaction(ctx context.Context, transactionID string) (*pix.RawResponse, error) {
	return p.do(ctx, http.MethodGet, transactionsPath+"/"+url.PathEscape(transactionID), nil)
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, body []byte) (*pix.RawResponse, error) {
	if err := p.Configured(); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Authorization", BasicAuthorization(p.secretKey))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn().Err(err).Str("provider", p.name).Str("method", method).Str("path", path).
			Dur("elapsed", time.Since(start)).Msg("provider request failed")
		return nil, domainErrors.NewTransportError(classifyTransportError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		return nil, domainErrors.NewTransportError(fmt.Errorf("read provider response: %w", err))
	}

	p.logger.Debug().Str("provider", p.name).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Int("bytes", len(data)).Dur("elapsed", time.Since(start)).
		Msg("provider responded")

	return &pix.RawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// classifyTransportError tags deadline failures with ErrProviderTimeout.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", domainErrors.ErrProviderTimeout, err)
	}
	return err
}
