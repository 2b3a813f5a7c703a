package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/gizmo_store/internal/auth"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/logger"
	"go.uber.org/zap"
)

const recentOrdersLimit = 50

type Authenticator interface {
	TokenVerifier
	Login(ctx context.Context, username, password string) (string, error)
}

type OrderLister interface {
	ListOrders(ctx context.Context, limit int) ([]*domain.PlacedOrder, error)
}

type AdminHandler struct {
	auth    Authenticator
	orders  OrderLister
	secure  bool
	timeout time.Duration
	logger  *zap.Logger
}

func NewAdminHandler(a Authenticator, orders OrderLister, secure bool, timeout time.Duration, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		auth:    a,
		orders:  orders,
		secure:  secure,
		timeout: timeout,
		logger:  logger,
	}
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := h.auth.Login(ctx, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("admin login failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/admin/me
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	if _, ok := adminFromRequest(r, h.auth); !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// GET /api/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, recentOrdersLimit)
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to list orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []*domain.PlacedOrder{}
	}
	respondJSON(w, http.StatusOK, orders)
}
