package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/cassiomorais/pixgateway/internal/normalizer"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opCreate = "create"
	opStatus = "status"
)

// PixService creates PIX charges and looks up their status. It holds no
// per-request state; each call makes at most one provider request.
type PixService struct {
	provider providers.Provider
	breaker  *providers.Breaker
	outbound *normalizer.Outbound
	inbound  *normalizer.Inbound
	metrics  *observability.Metrics
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewPixService creates a new PixService.
func NewPixService(
	provider providers.Provider,
	breaker *providers.Breaker,
	outbound *normalizer.Outbound,
	inbound *normalizer.Inbound,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *PixService {
	return &PixService{
		provider: provider,
		breaker:  breaker,
		outbound: outbound,
		inbound:  inbound,
		metrics:  metrics,
		logger:   logger.With().Str("component", "pix_service").Str("provider", provider.Name()).Logger(),
		tracer:   observability.Tracer(),
	}
}

// CreatePayment validates req, submits it to the provider and normalizes the reply.
func (s *PixService) CreatePayment(ctx context.Context, req pix.PaymentRequest) (result *pix.PaymentResult, err error) {
	ctx, span := s.tracer.Start(ctx, "PixService.CreatePayment")
	defer func() { s.finish(span, opCreate, err) }()

	prepared, body, err := s.outbound.Build(req)
	if err != nil {
		return nil, err
	}
	if err := s.provider.Configured(); err != nil {
		s.logger.Error().Err(err).Msg("provider credentials missing")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("pix.amount_policy", s.outbound.Policy().Name),
		attribute.Int64("pix.provider_amount", body.Amount),
		attribute.String("pix.external_ref", prepared.ExternalRef),
	)
	s.metrics.PaymentAmount.WithLabelValues(s.outbound.Policy().Name).Observe(prepared.Amount.InexactFloat64())

	resp, err := s.call(opCreate, func() (*pix.RawResponse, error) {
		return s.provider.CreateTransaction(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	result, format, err := s.inbound.ParsePayment(*resp, prepared.Amount)
	s.metrics.ProviderResponses.WithLabelValues(string(format)).Inc()
	if err != nil {
		s.logRejection(err, opCreate, resp, format)
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", result.TransactionID).
		Str("status", string(result.Status)).
		Str("amount", result.Amount.StringFixed(2)).
		Int64("provider_amount", body.Amount).
		Str("amount_policy", s.outbound.Policy().Name).
		Str("response_amount_policy", s.inbound.Decoder().Name).
		Str("format", string(format)).
		Msg("pix charge created")
	return result, nil
}

// GetPaymentStatus fetches the provider's view of transactionID.
func (s *PixService) GetPaymentStatus(ctx context.Context, transactionID string) (result *pix.StatusResult, err error) {
	ctx, span := s.tracer.Start(ctx, "PixService.GetPaymentStatus")
	defer func() { s.finish(span, opStatus, err) }()

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domainErrors.NewValidationError("transactionId", "is required")
	}
	span.SetAttributes(attribute.String("pix.transaction_id", transactionID))

	if err := s.provider.Configured(); err != nil {
		s.logger.Error().Err(err).Msg("provider credentials missing")
		return nil, err
	}

	resp, err := s.call(opStatus, func() (*pix.RawResponse, error) {
		return s.provider.GetTransaction(ctx, transactionID)
	})
	if err != nil {
		return nil, err
	}

	result, format, err := s.inbound.ParseStatus(*resp, transactionID)
	s.metrics.ProviderResponses.WithLabelValues(string(format)).Inc()
	if err != nil {
		s.logRejection(err, opStatus, resp, format)
		return nil, err
	}

	s.logger.Debug().
		Str("transaction_id", result.TransactionID).
		Str("status", string(result.Status)).
		Msg("pix status fetched")
	return result, nil
}

// Ready reports whether payment calls can currently succeed.
func (s *PixService) Ready() error {
	if err := s.provider.Configured(); err != nil {
		return err
	}
	if s.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", s.breaker.Name(), domainErrors.ErrProviderUnavailable)
	}
	return nil
}

func (s *PixService) call(op string, fn func() (*pix.RawResponse, error)) (*pix.RawResponse, error) {
	start := time.Now()
	resp, err := providers.Execute(s.breaker, fn)
	s.metrics.ProviderRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := "success"
	if err != nil {
		result = "failure"
		s.logger.Warn().Err(err).Str("operation", op).Dur("elapsed", time.Since(start)).Msg("provider call failed")
	}
	s.metrics.CircuitBreakerRequests.WithLabelValues(s.breaker.Name(), result).Inc()
	return resp, err
}

func (s *PixService) logRejection(err error, op string, resp *pix.RawResponse, format normalizer.Format) {
	event := s.logger.Warn()
	var pe *domainErrors.ProviderError
	if errors.As(err, &pe) {
		event = event.Str("detail", truncate(pe.Detail, 512))
	}
	event.Err(err).
		Str("operation", op).
		Int("provider_status", resp.StatusCode).
		Str("format", string(format)).
		Msg("provider rejected request")
}

// finish records the outcome of op on span and in metrics.
func (s *PixService) finish(span trace.Span, op string, err error) {
	outcome := Outcome(err)
	span.SetAttributes(attribute.String("pix.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()

	var ve *domainErrors.ValidationError
	if errors.As(err, &ve) {
		s.metrics.ValidationErrors.WithLabelValues(ve.Field).Inc()
	}

	switch op {
	case opCreate:
		s.metrics.PaymentsCreated.WithLabelValues(outcome).Inc()
	case opStatus:
		s.metrics.StatusLookups.WithLabelValues(outcome).Inc()
	}
	if outcome != "validation_error" && outcome != "configuration_error" {
		s.metrics.ProviderRequests.WithLabelValues(op, outcome).Inc()
	}
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	var ve *domainErrors.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "validation_error"
	case errors.Is(err, domainErrors.ErrMissingCredentials):
		return "configuration_error"
	case errors.Is(err, domainErrors.ErrFeeInsufficient):
		return "fee_insufficient"
	case errors.Is(err, domainErrors.ErrProviderText):
		return "provider_text_error"
	case errors.Is(err, domainErrors.ErrProviderRejected):
		return "provider_error"
	case errors.Is(err, domainErrors.ErrProviderUnreachable):
		return "transport_error"
	case errors.Is(err, domainErrors.ErrProviderUnavailable):
		return "circuit_open"
	default:
		return "error"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
