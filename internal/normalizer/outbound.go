package normalizer

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
)

// Outbound turns a client PaymentRequest into the provider wire body.
type Outbound struct {
	policy      AmountPolicy
	companyID   string
	now         func() time.Time
	productName func() string
}

type OutboundOption func(*Outbound)

// WithCompanyID adds companyId to every provider request.
func WithCompanyID(id string) OutboundOption {
	return func(o *Outbound) { o.companyID = id }
}

// WithClock replaces time.Now for generated external references.
func WithClock(now func() time.Time) OutboundOption {
	return func(o *Outbound) { o.now = now }
}

// WithProductNamer replaces the generated "#pedidoNNNN" product name.
func WithProductNamer(fn func() string) OutboundOption {
	return func(o *Outbound) { o.productName = fn }
}

func NewOutbound(policy AmountPolicy, opts ...OutboundOption) *Outbound {
	o := &Outbound{
		policy: policy,
		now:    time.Now,
		productName: func() string {
			return fmt.Sprintf("#pedido%04d", rand.IntN(10000))
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Policy returns the configured amount policy.
func (o *Outbound) Policy() AmountPolicy {
	return o.policy
}

// Prepare validates req and returns a copy with sanitized contact fields and
// defaults filled in.
func (o *Outbound) Prepare(req pix.PaymentRequest) (pix.PaymentRequest, error) {
	c := req.Customer
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = DigitsOnly(c.Phone)
	c.Document.Number = DigitsOnly(c.Document.Number)
	c.Document.Type = strings.TrimSpace(c.Document.Type)

	switch {
	case c.Name == "":
		return req, domainErrors.NewValidationError("customer.name", "is required")
	case c.Email == "":
		return req, domainErrors.NewValidationError("customer.email", "is required")
	case c.Phone == "":
		return req, domainErrors.NewValidationError("customer.phone", "must contain digits")
	case c.Document.Number == "":
		return req, domainErrors.NewValidationError("customer.document.number", "must contain digits")
	}
	if !req.Amount.IsPositive() {
		return req, domainErrors.NewValidationError("amount", "must be greater than zero")
	}
	if req.ExpiresInDays < 0 {
		return req, domainErrors.NewValidationError("expiresInDays", "must be a positive integer")
	}

	if c.Document.Type == "" {
		c.Document.Type = pix.DefaultDocumentType
	}
	req.Customer = c
	if req.ExpiresInDays == 0 {
		req.ExpiresInDays = pix.DefaultExpiresInDays
	}
	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		req.ProductName = o.productName()
	}
	req.ExternalRef = strings.TrimSpace(req.ExternalRef)
	if req.ExternalRef == "" {
		req.ExternalRef = fmt.Sprintf("ref-%d", o.now().UnixMilli())
	}
	return req, nil
}

// Build prepares req and renders the provider body. The amount is converted
// once and used for both the total and the single line item.
func (o *Outbound) Build(req pix.PaymentRequest) (pix.PaymentRequest, *pix.ProviderRequest, error) {
	prepared, err := o.Prepare(req)
	if err != nil {
		return req, nil, err
	}

	amount, err := o.policy.Convert(prepared.Amount)
	if err != nil {
		return req, nil, domainErrors.NewValidationError("amount",
			fmt.Sprintf("%s is too large for the %s policy", prepared.Amount.String(), o.policy.Name))
	}
	if amount <= 0 {
		return req, nil, domainErrors.NewValidationError("amount",
			fmt.Sprintf("%s converts to %d under the %s policy", prepared.Amount.String(), amount, o.policy.Name))
	}

	c := prepared.Customer
	body := &pix.ProviderRequest{
		Customer: pix.ProviderCustomer{
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
			Document: pix.ProviderDocument{
				Number: c.Document.Number,
				Type:   c.Document.Type,
			},
		},
		PaymentMethod: pix.PaymentMethod,
		Pix:           pix.ProviderPix{ExpiresInDays: prepared.ExpiresInDays},
		Amount:        amount,
		Items: []pix.ProviderItem{{
			Title:       prepared.ProductName,
			UnitPrice:   amount,
			Quantity:    1,
			ExternalRef: prepared.ExternalRef,
		}},
		CompanyID: o.companyID,
	}
	return prepared, body, nil
}
