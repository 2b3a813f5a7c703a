package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/gizmo_store/internal/cart"
	"github.com/fjod/gizmo_store/internal/checkout"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/logger"
	"go.uber.org/zap"
)

type Checkout interface {
	Submit(ctx context.Context, c checkout.Cart, form domain.CheckoutForm) (checkout.Outcome, error)
	ResolvePayPal(ctx context.Context, c checkout.Cart, orderID string, approved bool) (checkout.Outcome, error)
	Status(sessionID string) checkout.StatusInfo
}

type CheckoutHandler struct {
	carts    SessionProvider
	checkout Checkout
	logger   *zap.Logger
}

func NewCheckoutHandler(carts SessionProvider, c Checkout, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		checkout: c,
		logger:   logger,
	}
}

type CheckoutResponseDTO struct {
	checkout.Outcome
	Cart cart.View `json:"cart"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form domain.CheckoutForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	out, err := h.checkout.Submit(r.Context(), session, form)
	h.respond(w, r, session, out, err)
}

// GET /api/v1/checkout/paypal/return?token=
func (h *CheckoutHandler) PayPalReturn(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// GET /api/v1/checkout/paypal/cancel?token=
func (h *CheckoutHandler) PayPalCancel(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

// GET /api/v1/checkout/status
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.checkout.Status(sessionID(r)))
}

func (h *CheckoutHandler) resolve(w http.ResponseWriter, r *http.Request, approved bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing_token", "token is required")
		return
	}

	session, ok := h.session(w, r)
	if !ok {
		return
	}

	out, err := h.checkout.ResolvePayPal(r.Context(), session, token, approved)
	h.respond(w, r, session, out, err)
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*cart.Session, bool) {
	session, err := h.carts.Session(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart is temporarily unavailable")
		return nil, false
	}
	return session, true
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, session *cart.Session, out checkout.Outcome, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, CheckoutResponseDTO{Outcome: out, Cart: session.View()})
		return
	}

	var ve *checkout.ValidationError
	var ae *checkout.AdapterError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Code: "validation_error", Details: ve.Field})
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrNoPendingApproval):
		respondError(w, http.StatusNotFound, "no_pending_approval", err.Error())
	case errors.As(err, &ae):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{Error: ae.Message, Code: "payment_failed", Details: ae.Method})
	default:
		logger.FromContext(r.Context(), h.logger).Error("checkout failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
