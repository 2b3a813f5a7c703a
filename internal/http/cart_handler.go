package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/gizmo_store/internal/cart"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/go-chi/chi/v5"
)

type SessionProvider interface {
	Session(ctx context.Context, id string) (*cart.Session, error)
}

// CheckoutGuard reports whether a session has a checkout in flight.
type CheckoutGuard interface {
	InFlight(sessionID string) bool
}

type CartHandler struct {
	carts   SessionProvider
	guard   CheckoutGuard
	timeout time.Duration
}

func NewCartHandler(carts SessionProvider, guard CheckoutGuard, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		guard:   guard,
		timeout: timeout,
	}
}

// GET /api/v1/cart
// An unreadable persisted cart is answered with the empty, unhydrated view.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, _ := h.carts.Session(ctx, sessionID(r))
	respondJSON(w, http.StatusOK, session.View())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemCandidate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.mutate(w, r, true, func(s *cart.Session) cart.View {
		return s.AddItem(req)
	})
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, true, func(s *cart.Session) cart.View {
		return s.RemoveItem(id)
	})
}

// POST /api/v1/cart/items/{id}/increase
func (h *CartHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, true, func(s *cart.Session) cart.View {
		return s.IncreaseQuantity(id)
	})
}

// POST /api/v1/cart/items/{id}/decrease
func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, true, func(s *cart.Session) cart.View {
		return s.DecreaseQuantity(id)
	})
}

// DELETE /api/v1/cart/message
func (h *CartHandler) ClearMessage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, false, func(s *cart.Session) cart.View {
		return s.ClearMessage()
	})
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, true, func(s *cart.Session) cart.View {
		return s.ClearCart()
	})
}

// mutate refuses to change a cart whose persisted state has not been read,
// since the read would later overwrite the change. Item changes are also
// refused while a checkout holds the session.
func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, items bool, fn func(*cart.Session) cart.View) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.carts.Session(ctx, sessionID(r))
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart is temporarily unavailable")
		return
	}
	if items && h.guard != nil && h.guard.InFlight(session.ID()) {
		respondError(w, http.StatusConflict, "checkout_in_progress", "cart cannot change while a checkout is in progress")
		return
	}

	respondJSON(w, http.StatusOK, fn(session))
}
