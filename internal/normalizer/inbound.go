package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/shopspring/decimal"
)

// Format describes how a provider body was decoded.
type Format string

const (
	FormatJSON         Format = "json"
	FormatPrefixedJSON Format = "prefixed_json"
	FormatText         Format = "text"
)

// The provider sometimes prepends an unrelated number to the body, as in
// `0 {"status":"error",...}`.
var leadingToken = regexp.MustCompile(`^[0-9]+\s+`)

var feePhrases = []string{"taxas", "taxa", "Valor somado"}

var errNotObject = errors.New("body is not a JSON object")

// Inbound parses raw provider replies into canonical results.
type Inbound struct {
	decoder AmountDecoder
}

// NewInbound returns an Inbound that decodes create-payment amounts with
// decoder. Status lookups always use DecodeMinorUnits.
func NewInbound(decoder AmountDecoder) *Inbound {
	return &Inbound{decoder: decoder}
}

// Decoder returns the configured response amount decoder.
func (in *Inbound) Decoder() AmountDecoder {
	return in.decoder
}

// Decode turns body into a JSON object, stripping a leading numeric token if
// needed. ok is false when the body is plain text.
func Decode(body []byte) (doc map[string]any, format Format, ok bool) {
	text := bytes.TrimSpace(body)
	if doc, err := decodeObject(text); err == nil {
		return doc, FormatJSON, true
	}
	if loc := leadingToken.FindIndex(text); loc != nil {
		if doc, err := decodeObject(text[loc[1]:]); err == nil {
			return doc, FormatPrefixedJSON, true
		}
	}
	return nil, FormatText, false
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return doc, nil
}

// ParsePayment normalizes a create-payment reply. requested is used when the
// provider does not echo an amount.
func (in *Inbound) ParsePayment(resp pix.RawResponse, requested decimal.Decimal) (*pix.PaymentResult, Format, error) {
	doc, format, err := decodeReply(resp)
	if err != nil {
		return nil, format, err
	}

	result := &pix.PaymentResult{
		Amount: requested,
		Status: statusOf(doc),
	}
	result.Payload, _ = PayloadRules.First(doc)
	result.QRCode, _ = QRCodeRules.First(doc)
	result.QRCodeURL, _ = QRCodeURLRules.First(doc)
	result.TransactionID, _ = TransactionIDRules.First(doc)
	result.ExpirationDate, _ = ExpirationDateRules.First(doc)
	if amount, ok := amountOf(doc); ok {
		result.Amount = in.decoder.Decode(amount)
	}
	return result, format, nil
}

// ParseStatus normalizes a status-lookup reply. Amounts are always read as
// minor units.
func (in *Inbound) ParseStatus(resp pix.RawResponse, requestedID string) (*pix.StatusResult, Format, error) {
	doc, format, err := decodeReply(resp)
	if err != nil {
		return nil, format, err
	}

	result := &pix.StatusResult{
		TransactionID: requestedID,
		Status:        statusOf(doc),
	}
	if id, ok := TransactionIDRules.First(doc); ok {
		result.TransactionID = id
	}
	if amount, ok := amountOf(doc); ok {
		major := DecodeMinorUnits.Decode(amount)
		result.Amount = &major
	}
	if paidAt, ok := PaidAtRules.First(doc); ok {
		result.PaidAt = &paidAt
	}
	if createdAt, ok := CreatedAtRules.First(doc); ok {
		result.CreatedAt = &createdAt
	}
	return result, format, nil
}

// decodeReply decodes resp and maps every failure shape to a ProviderError.
func decodeReply(resp pix.RawResponse) (map[string]any, Format, error) {
	raw := strings.TrimSpace(string(resp.Body))

	doc, format, ok := Decode(resp.Body)
	if !ok {
		if hasFeePhrase(raw) {
			return nil, format, domainErrors.NewFeeInsufficientError(resp.StatusCode, raw)
		}
		return nil, format, domainErrors.NewProviderTextError(resp.StatusCode, raw)
	}

	if resp.StatusCode >= http.StatusBadRequest || strings.EqualFold(statusField(doc), string(pix.StatusError)) {
		msg := errorMessage(doc)
		if msg == "" {
			msg = raw
		}
		if hasFeePhrase(msg) {
			return nil, format, domainErrors.NewFeeInsufficientError(resp.StatusCode, raw)
		}
		return nil, format, domainErrors.NewProviderRejectedError(resp.StatusCode, msg, raw)
	}
	return doc, format, nil
}

func hasFeePhrase(s string) bool {
	for _, phrase := range feePhrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

// errorMessage returns the first of error, message or details. Objects
// contribute their own "message" when present, otherwise their JSON text.
func errorMessage(doc map[string]any) string {
	for _, key := range []string{"error", "message", "details"} {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := scalarString(v); ok {
			if s != "" {
				return s
			}
			continue
		}
		if m, ok := v.(map[string]any); ok {
			if s, ok := scalarString(m["message"]); ok && s != "" {
				return s
			}
		}
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return ""
}

func statusField(doc map[string]any) string {
	s, _ := StatusRules.First(doc)
	return s
}

func statusOf(doc map[string]any) pix.Status {
	if s := statusField(doc); s != "" {
		return pix.Status(s)
	}
	return pix.StatusPending
}

func amountOf(doc map[string]any) (decimal.Decimal, bool) {
	v, ok := doc["amount"]
	if !ok {
		return decimal.Zero, false
	}
	s, ok := scalarString(v)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
