package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/google/uuid"
)

const sandboxIDPrefix = "sbx_"

// SandboxProvider answers like the live provider without leaving the
// process. It reproduces the provider's quirks: the numeric prefix on fee
// errors and plain-text outage pages.
type SandboxProvider struct {
	name        string
	latency     time.Duration
	failureRate float64 // 0.0 to 1.0
	feeFloor    int64   // in provider amount units
	now         func() time.Time
}

type SandboxOption func(*SandboxProvider)

func WithLatency(d time.Duration) SandboxOption {
	return func(p *SandboxProvider) { p.latency = d }
}

// WithFailureRate makes a share of calls return a plain-text 503.
func WithFailureRate(rate float64) SandboxOption {
	return func(p *SandboxProvider) { p.failureRate = rate }
}

// WithFeeFloor rejects charges below min with the provider's fee error.
func WithFeeFloor(min int64) SandboxOption {
	return func(p *SandboxProvider) { p.feeFloor = min }
}

func withSandboxClock(now func() time.Time) SandboxOption {
	return func(p *SandboxProvider) { p.now = now }
}

func NewSandboxProvider(name string, opts ...SandboxOption) *SandboxProvider {
	p := &SandboxProvider{
		name:    name,
		latency: 100 * time.Millisecond,
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *SandboxProvider) Name() string { return p.name }

func (p *SandboxProvider) Configured() error { return nil }

func (p *SandboxProvider) CreateTransaction(ctx context.Context, req *pix.ProviderRequest) (*pix.RawResponse, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if resp := p.maybeFail(); resp != nil {
		return resp, nil
	}

	if req.Amount < p.feeFloor {
		return &pix.RawResponse{
			StatusCode: http.StatusOK,
			Body:       []byte(`0 {"status":"error","message":"Valor somado com as taxas excede o valor da transação"}`),
		}, nil
	}

	id := sandboxIDPrefix + uuid.New().String()[:8]
	now := p.now().UTC()
	return p.jsonResponse(http.StatusCreated, map[string]any{
		"id":            id,
		"status":        "waiting_payment",
		"amount":        req.Amount,
		"paymentMethod": req.PaymentMethod,
		"createdAt":     now.Format(time.RFC3339),
		"pix": map[string]any{
			"qrcode":         sandboxPayload(id, req.Amount),
			"expirationDate": now.AddDate(0, 0, req.Pix.ExpiresInDays).Format("2006-01-02"),
		},
	})
}

func (p *SandboxProvider) GetTransaction(ctx context.Context, transactionID string) (*pix.RawResponse, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if resp := p.maybeFail(); resp != nil {
		return resp, nil
	}

	if !strings.HasPrefix(transactionID, sandboxIDPrefix) {
		return p.jsonResponse(http.StatusNotFound, map[string]any{"message": "Transaction not found"})
	}
	return p.jsonResponse(http.StatusOK, map[string]any{
		"id":        transactionID,
		"status":    "waiting_payment",
		"createdAt": p.now().UTC().Format(time.RFC3339),
	})
}

func (p *SandboxProvider) wait(ctx context.Context) error {
	select {
	case <-time.After(p.latency):
		return nil
	case <-ctx.Done():
		return domainErrors.NewTransportError(ctx.Err())
	}
}

func (p *SandboxProvider) maybeFail() *pix.RawResponse {
	if p.failureRate > 0 && rand.Float64() < p.failureRate {
		return &pix.RawResponse{
			StatusCode: http.StatusServiceUnavailable,
			Body:       []byte("Service Temporarily Unavailable"),
		}
	}
	return nil
}

func (p *SandboxProvider) jsonResponse(status int, body map[string]any) (*pix.RawResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode sandbox response: %w", p.name, err)
	}
	return &pix.RawResponse{StatusCode: status, Body: data}, nil
}

// sandboxPayload returns a copy-paste string shaped like a BR Code.
func sandboxPayload(id string, amount int64) string {
	return fmt.Sprintf("00020101021226580014br.gov.bcb.pix0136%s520400005303986540%d5802BR5907SANDBOX6009SAO PAULO6304ABCD",
		id, amount)
}
