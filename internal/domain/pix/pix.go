package pix

import (
	"github.com/shopspring/decimal"
)

const (
	// PaymentMethod is the discriminator the provider expects for PIX charges.
	PaymentMethod = "PIX"

	DefaultDocumentType  = "CPF"
	DefaultExpiresInDays = 1
)

// Status represents a provider transaction status. Providers report more
// values than listed here; unknown values are passed through unchanged.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusError   Status = "error"
)

// Document identifies the payer (CPF or CNPJ).
type Document struct {
	Number string
	Type   string
}

// Customer is the payer of a PIX charge.
type Customer struct {
	Name     string
	Email    string
	Phone    string
	Document Document
}

// PaymentRequest is the client's create-payment input. Amount is in major
// currency units (reais).
type PaymentRequest struct {
	Customer      Customer
	Amount        decimal.Decimal
	ExpiresInDays int
	ProductName   string
	ExternalRef   string
}

// --- Provider wire format ---

// ProviderRequest is the body POSTed to the provider's transactions endpoint.
type ProviderRequest struct {
	Customer      ProviderCustomer `json:"customer"`
	PaymentMethod string           `json:"paymentMethod"`
	Pix           ProviderPix      `json:"pix"`
	Amount        int64            `json:"amount"`
	Items         []ProviderItem   `json:"items"`
	CompanyID     string           `json:"companyId,omitempty"`
}

type ProviderCustomer struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Document ProviderDocument `json:"document"`
}

type ProviderDocument struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type ProviderPix struct {
	ExpiresInDays int `json:"expiresInDays"`
}

type ProviderItem struct {
	Title       string `json:"title"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	ExternalRef string `json:"externalRef"`
}

// RawResponse is an unparsed provider reply.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// --- Canonical results ---

// PaymentResult is the normalized outcome of a create-payment call.
type PaymentResult struct {
	Payload        string
	QRCode         string
	QRCodeURL      string
	TransactionID  string
	Amount         decimal.Decimal
	Status         Status
	ExpirationDate string
}

// StatusResult is the normalized outcome of a status lookup. Amount is nil
// when the provider did not report one.
type StatusResult struct {
	TransactionID string
	Status        Status
	Amount        *decimal.Decimal
	PaidAt        *string
	CreatedAt     *string
}
