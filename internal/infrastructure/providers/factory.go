package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/sony/gobreaker/v2"
)

// Breaker guards calls to one provider.
type Breaker = gobreaker.CircuitBreaker[*pix.RawResponse]

// errUpstreamFailure marks a 5xx reply so the breaker counts it while the
// caller still receives the body.
var errUpstreamFailure = errors.New("provider responded with a server error")

type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	Timeout      time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  10,
		FailureRatio: 0.6,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
	}
}

// StateChangeFunc is notified when a provider's breaker changes state.
type StateChangeFunc func(name string, from, to gobreaker.State)

type Factory struct {
	settings        BreakerSettings
	onStateChange   StateChangeFunc
	providers       map[string]Provider
	circuitBreakers map[string]*Breaker
}

func NewFactory(settings BreakerSettings, onStateChange StateChangeFunc, providersList ...Provider) *Factory {
	f := &Factory{
		settings:        settings,
		onStateChange:   onStateChange,
		providers:       make(map[string]Provider),
		circuitBreakers: make(map[string]*Breaker),
	}
	for _, p := range providersList {
		f.Register(p)
	}
	return f
}

func (f *Factory) Register(p Provider) {
	s := f.settings
	f.providers[p.Name()] = p
	f.circuitBreakers[p.Name()] = gobreaker.NewCircuitBreaker[*pix.RawResponse](gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: s.MinRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailureRatio
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if f.onStateChange != nil {
				f.onStateChange(name, from, to)
			}
		},
	})
}

func (f *Factory) Get(name string) (Provider, *Breaker, error) {
	p, ok := f.providers[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown provider %q: %w", name, domainErrors.ErrProviderNotFound)
	}
	return p, f.circuitBreakers[name], nil
}

// isSuccessful decides what the breaker counts as a provider failure.
// Client cancellations and missing credentials say nothing about provider
// health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, domainErrors.ErrMissingCredentials)
}

// Execute runs call through cb. Replies with a 5xx status count as breaker
// failures but are still returned for parsing. An open breaker is reported
// as ErrProviderUnavailable.
func Execute(cb *Breaker, call func() (*pix.RawResponse, error)) (*pix.RawResponse, error) {
	resp, err := cb.Execute(func() (*pix.RawResponse, error) {
		resp, err := call()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstreamFailure
		}
		return resp, nil
	})
	switch {
	case errors.Is(err, errUpstreamFailure):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%s: %w", cb.Name(), domainErrors.ErrProviderUnavailable)
	}
	return resp, err
}
