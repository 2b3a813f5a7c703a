package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/gizmo_store/internal/payment"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondBackendError writes a payment backend failure with the status the
// backend chose.
func respondBackendError(w http.ResponseWriter, err error) {
	var be *payment.BackendError
	if !errors.As(err, &be) {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	code := "payment_error"
	switch {
	case be.StatusCode == http.StatusBadRequest:
		code = "invalid_request"
	case be.StatusCode == http.StatusServiceUnavailable:
		code = "service_unavailable"
	case be.StatusCode >= http.StatusInternalServerError:
		code = "internal_error"
	}
	respondError(w, be.StatusCode, code, be.Message)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
