package http

import (
	"context"
	"net/http"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/payment"
	"github.com/google/uuid"
)

type CashBackend interface {
	PlaceOrder(ctx context.Context, order domain.Order, orderID string) (*payment.CashConfirmation, error)
}

type PayPalBackend interface {
	CreateOrder(ctx context.Context, order domain.Order, requestID string) (*payment.PayPalOrder, error)
}

type IntentCreator interface {
	CreateIntent(ctx context.Context, order domain.Order, idempotencyKey string) (*payment.Intent, error)
}

// BackendHandler serves the payment backends over HTTP for clients that
// drive a payment themselves.
type BackendHandler struct {
	cash   CashBackend
	paypal PayPalBackend
	card   IntentCreator
}

func NewBackendHandler(cash CashBackend, paypal PayPalBackend, card IntentCreator) *BackendHandler {
	return &BackendHandler{cash: cash, paypal: paypal, card: card}
}

type PayPalOrderResponseDTO struct {
	OrderID     string `json:"orderId"`
	ApprovalURL string `json:"approvalUrl"`
}

// POST /api/checkout/cash
func (h *BackendHandler) Cash(w http.ResponseWriter, r *http.Request) {
	order, ok := decodeOrder(w, r)
	if !ok {
		return
	}

	confirmation, err := h.cash.PlaceOrder(r.Context(), order, "")
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, confirmation)
}

// POST /api/checkout/paypal
func (h *BackendHandler) PayPal(w http.ResponseWriter, r *http.Request) {
	order, ok := decodeOrder(w, r)
	if !ok {
		return
	}

	created, err := h.paypal.CreateOrder(r.Context(), order, "order-"+uuid.NewString())
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PayPalOrderResponseDTO{OrderID: created.ID, ApprovalURL: created.ApprovalURL})
}

// POST /api/checkout/stripe
func (h *BackendHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	order, ok := decodeOrder(w, r)
	if !ok {
		return
	}

	intent, err := h.card.CreateIntent(r.Context(), order, uuid.NewString())
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, intent)
}

func decodeOrder(w http.ResponseWriter, r *http.Request) (domain.Order, bool) {
	var order domain.Order
	if err := decodeJSON(r, &order); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return order, false
	}
	return order, true
}
