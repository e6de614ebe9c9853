package controller

import (
	"encoding/json"

	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/shopspring/decimal"
)

// --- Request DTOs ---
// Presence is checked here; content rules (positive amount, digits in
// phone and document) belong to the normalizer.

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	Customer      *CustomerDTO     `json:"customer" validate:"required"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	ExpiresInDays *int             `json:"expiresInDays,omitempty" validate:"omitempty,gt=0"`
	ProductName   string           `json:"productName,omitempty"`
	ExternalRef   string           `json:"externalRef,omitempty"`
}

type CustomerDTO struct {
	Name     string       `json:"name" validate:"required"`
	Email    string       `json:"email" validate:"required"`
	Phone    string       `json:"phone" validate:"required"`
	Document *DocumentDTO `json:"document" validate:"required"`
}

type DocumentDTO struct {
	Number string `json:"number" validate:"required"`
	Type   string `json:"type,omitempty"`
}

// ToPaymentRequest converts the DTO into the service input.
func (r *CreateTransactionRequest) ToPaymentRequest() pix.PaymentRequest {
	req := pix.PaymentRequest{
		Customer: pix.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
			Document: pix.Document{
				Number: r.Customer.Document.Number,
				Type:   r.Customer.Document.Type,
			},
		},
		Amount:      *r.Amount,
		ProductName: r.ProductName,
		ExternalRef: r.ExternalRef,
	}
	if r.ExpiresInDays != nil {
		req.ExpiresInDays = *r.ExpiresInDays
	}
	return req
}

// --- Response DTOs ---

// PaymentResponse is the canonical create-payment reply.
type PaymentResponse struct {
	Payload        string      `json:"payload"`
	QRCode         string      `json:"qrCode"`
	QRCodeURL      string      `json:"qrCodeUrl"`
	TransactionID  string      `json:"transactionId"`
	Amount         json.Number `json:"amount"`
	Status         string      `json:"status"`
	ExpirationDate string      `json:"expirationDate,omitempty"`
}

// StatusResponse is the canonical status-lookup reply. Unknown values are
// rendered as null.
type StatusResponse struct {
	TransactionID string       `json:"transactionId"`
	Status        string       `json:"status"`
	Amount        *json.Number `json:"amount"`
	PaidAt        *string      `json:"paidAt"`
	CreatedAt     *string      `json:"createdAt"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Hint    string `json:"hint,omitempty"`
	Details string `json:"details,omitempty"`
}

// --- Conversion helpers ---

func FromPaymentResult(r *pix.PaymentResult) *PaymentResponse {
	return &PaymentResponse{
		Payload:        r.Payload,
		QRCode:         r.QRCode,
		QRCodeURL:      r.QRCodeURL,
		TransactionID:  r.TransactionID,
		Amount:         money(r.Amount),
		Status:         string(r.Status),
		ExpirationDate: r.ExpirationDate,
	}
}

func FromStatusResult(r *pix.StatusResult) *StatusResponse {
	resp := &StatusResponse{
		TransactionID: r.TransactionID,
		Status:        string(r.Status),
		PaidAt:        r.PaidAt,
		CreatedAt:     r.CreatedAt,
	}
	if r.Amount != nil {
		amount := money(*r.Amount)
		resp.Amount = &amount
	}
	return resp
}

// money renders d with two decimals as a JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
