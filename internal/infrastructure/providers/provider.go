package providers

import (
	"context"

	"github.com/cassiomorais/pixgateway/internal/domain/pix"
)

// Provider is the interface that PIX providers implement. Implementations
// return the raw reply for any HTTP status; only transport failures and
// missing configuration are reported as errors.
type Provider interface {
	// Name returns the provider name.
	Name() string
	// Configured returns a ConfigurationError when the provider cannot be called.
	Configured() error
	// CreateTransaction submits a PIX charge.
	CreateTransaction(ctx context.Context, req *pix.ProviderRequest) (*pix.RawResponse, error)
	// GetTransaction fetches a charge by provider transaction id.
	GetTransaction(ctx context.Context, transactionID string) (*pix.RawResponse, error)
}
