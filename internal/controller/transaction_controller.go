package controller

import (
	"context"
	"net/http"

	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/go-chi/chi/v5"
)

// PaymentService is the behaviour the transaction endpoints need.
type PaymentService interface {
	CreatePayment(ctx context.Context, req pix.PaymentRequest) (*pix.PaymentResult, error)
	GetPaymentStatus(ctx context.Context, transactionID string) (*pix.StatusResult, error)
}

// TransactionController handles PIX transaction HTTP requests.
type TransactionController struct {
	service PaymentService
}

// NewTransactionController creates a new TransactionController.
func NewTransactionController(service PaymentService) *TransactionController {
	return &TransactionController{service: service}
}

// Create handles POST /transactions
func (h *TransactionController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.CreatePayment(r.Context(), req.ToPaymentRequest())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentResult(result))
}

// Get handles GET /transactions/{transactionId}
func (h *TransactionController) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetPaymentStatus(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromStatusResult(result))
}
