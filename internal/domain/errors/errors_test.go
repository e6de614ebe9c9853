package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("customer.email", "is required")

	assert.Equal(t, "validation failed for field customer.email: is required", err.Error())
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("provider.secret_key", "set PIXGW_PROVIDER_SECRET_KEY")

	assert.Equal(t, "configuration error: provider.secret_key is not set", err.Error())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(fmt.Errorf("create payment: %w", err), &cfgErr))
	assert.Equal(t, "set PIXGW_PROVIDER_SECRET_KEY", cfgErr.Hint)
}

func TestProviderError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected int
	}{
		{"fee insufficient ignores provider status", NewFeeInsufficientError(200, "taxa"), http.StatusBadRequest},
		{"text error mirrors provider status", NewProviderTextError(503, "Internal Server Error"), http.StatusServiceUnavailable},
		{"text error without status", NewProviderTextError(0, "oops"), http.StatusInternalServerError},
		{"text error on success status", NewProviderTextError(200, "oops"), http.StatusInternalServerError},
		{"rejected mirrors provider status", NewProviderRejectedError(422, "invalid document", "{}"), http.StatusUnprocessableEntity},
		{"transport error", NewTransportError(context.DeadlineExceeded), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.HTTPStatus())
		})
	}
}

func TestProviderError_Is(t *testing.T) {
	err := fmt.Errorf("create payment: %w", NewFeeInsufficientError(400, "Valor somado"))

	assert.ErrorIs(t, err, ErrFeeInsufficient)
	assert.NotErrorIs(t, err, ErrProviderText)

	transport := NewTransportError(context.DeadlineExceeded)
	assert.ErrorIs(t, transport, ErrProviderUnreachable)
	assert.ErrorIs(t, transport, context.DeadlineExceeded)
}

func TestProviderError_Error(t *testing.T) {
	assert.Equal(t, "invalid document", NewProviderRejectedError(400, "invalid document", "").Error())
	assert.Equal(t, "failed to reach payment provider: connection refused",
		NewTransportError(errors.New("connection refused")).Error())

	bare := &ProviderError{Kind: ErrProviderText}
	assert.Equal(t, ErrProviderText.Error(), bare.Error())
}
