package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Provider errors
	ErrProviderNotFound    = errors.New("payment provider not found")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrProviderRejected    = errors.New("payment rejected by provider")
	ErrProviderText        = errors.New("provider returned an unparseable response")
	ErrProviderUnreachable = errors.New("payment provider unreachable")
	ErrProviderTimeout     = errors.New("provider request timeout")
	ErrFeeInsufficient     = errors.New("amount does not cover provider fees")

	// Configuration errors
	ErrMissingCredentials = errors.New("provider credentials not configured")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ConfigurationError reports a missing or unusable setting. It is raised at
// request time so the process can still serve health checks.
type ConfigurationError struct {
	Setting string
	Hint    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingCredentials
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(setting, hint string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Hint: hint}
}

// ProviderError is any failure attributed to the payment provider. Kind is
// one of ErrFeeInsufficient, ErrProviderText, ErrProviderRejected or
// ErrProviderUnreachable and is matched by errors.Is.
type ProviderError struct {
	Kind       error
	StatusCode int    // HTTP status returned by the provider, 0 when none
	Message    string // client-facing message
	Detail     string // raw provider text
	Hint       string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return e.Kind == target
}

// HTTPStatus is the status surfaced to the gateway's client.
func (e *ProviderError) HTTPStatus() int {
	switch e.Kind {
	case ErrFeeInsufficient:
		return http.StatusBadRequest
	case ErrProviderUnreachable:
		return http.StatusInternalServerError
	}
	if e.StatusCode >= http.StatusBadRequest && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// NewFeeInsufficientError reports an amount the provider rejected after fees.
func NewFeeInsufficientError(status int, detail string) *ProviderError {
	return &ProviderError{
		Kind:       ErrFeeInsufficient,
		StatusCode: status,
		Message:    "amount is too low to cover the provider fees",
		Detail:     detail,
		Hint:       "increase the amount and try again",
	}
}

// NewProviderTextError reports a non-JSON provider body.
func NewProviderTextError(status int, detail string) *ProviderError {
	return &ProviderError{
		Kind:       ErrProviderText,
		StatusCode: status,
		Message:    "provider returned an error",
		Detail:     detail,
	}
}

// NewProviderRejectedError reports a JSON provider body describing a failure.
func NewProviderRejectedError(status int, message, detail string) *ProviderError {
	return &ProviderError{
		Kind:       ErrProviderRejected,
		StatusCode: status,
		Message:    message,
		Detail:     detail,
	}
}

// NewTransportError reports a network failure reaching the provider.
func NewTransportError(err error) *ProviderError {
	return &ProviderError{
		Kind:    ErrProviderUnreachable,
		Message: "failed to reach payment provider",
		Err:     err,
	}
}
