package testutil

import (
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/shopspring/decimal"
)

// Recorded provider replies, one per known response shape.
const (
	ProviderCreatedBody = `{"id":"tx_1","status":"pending","amount":3000,"pix":{"qrcode":"000201010212","expirationDate":"2026-10-20"}}`
	ProviderPaidBody    = `{"id":"tx_1","status":"paid","amount":3000,"paidAt":"2026-10-19T12:05:00Z","createdAt":"2026-10-19T12:00:00Z"}`
	ProviderFeeBody     = `0 {"status":"error","message":"Valor somado com as taxas excede o valor da transação"}`
	ProviderOutageBody  = `Internal Server Error`
)

// NewTestPaymentRequest returns a valid request for 30.00 BRL.
func NewTestPaymentRequest() pix.PaymentRequest {
	return pix.PaymentRequest{
		Customer: pix.Customer{
			Name:  "Maria Silva",
			Email: "maria@example.com",
			Phone: "(11) 98765-4321",
			Document: pix.Document{
				Number: "123.456.789-09",
				Type:   "CPF",
			},
		},
		Amount: decimal.RequireFromString("30.00"),
	}
}
