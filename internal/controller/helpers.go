package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// maxRequestBody bounds client request bodies.
const maxRequestBody = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrProviderUnavailable, http.StatusServiceUnavailable, "provider_unavailable"},
	{domainErrors.ErrProviderNotFound, http.StatusInternalServerError, "configuration_error"},
}

var providerErrorCodes = []struct {
	kind error
	code string
}{
	{domainErrors.ErrFeeInsufficient, "fee_insufficient"},
	{domainErrors.ErrProviderText, "provider_text_error"},
	{domainErrors.ErrProviderRejected, "provider_error"},
	{domainErrors.ErrProviderUnreachable, "transport_error"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	var configErr *domainErrors.ConfigurationError
	if errors.As(err, &configErr) {
		log.Error().Err(err).Str("setting", configErr.Setting).Msg("gateway is not configured")
		resp.Code = "configuration_error"
		resp.Hint = configErr.Hint
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	var providerErr *domainErrors.ProviderError
	if errors.As(err, &providerErr) {
		resp.Error = providerErr.Message
		resp.Code = "provider_error"
		for _, c := range providerErrorCodes {
			if errors.Is(providerErr, c.kind) {
				resp.Code = c.code
				break
			}
		}
		resp.Hint = providerErr.Hint
		resp.Details = providerErr.Detail
		writeJSON(w, providerErr.HTTPStatus(), resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			writeJSON(w, m.status, resp)
			return
		}
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return domainErrors.NewValidationError(fieldPath(ve[0]), validationMessage(ve[0]))
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}

// fieldPath drops the struct name from the namespace: customer.document.number.
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return fe.Tag() + " validation failed"
	}
}
