package payment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/gizmo_store/internal/domain"
)

// BackendError is a failure reported by a payment backend. Message is safe to
// show to the customer; Err holds the underlying cause.
type BackendError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed when sent again.
func (e *BackendError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

func badRequest(message string) *BackendError {
	return &BackendError{StatusCode: http.StatusBadRequest, Message: message}
}

func internal(message string, err error) *BackendError {
	return &BackendError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// MessageOf extracts the customer facing message from err.
func MessageOf(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}

const (
	MessageNoItems         = "No items in cart"
	MessageCustomerMissing = "Customer information is required"
	MessageInvalidTotal    = "Invalid total amount"
	MessageInvalidItem     = "Invalid item in cart"
	MessageTotalMismatch   = "Total amount does not match cart items"
)

// ValidateOrder applies the checks shared by every backend.
func ValidateOrder(o domain.Order) error {
	if len(o.Items) == 0 {
		return badRequest(MessageNoItems)
	}

	customer := o.CustomerInfo.Trimmed()
	if customer.FullName == "" || customer.Address == "" {
		return badRequest(MessageCustomerMissing)
	}

	if !o.TotalAmount.IsPositive() {
		return badRequest(MessageInvalidTotal)
	}

	for _, item := range o.Items {
		if item.Quantity < 1 || item.Price.IsNegative() || item.Name == "" {
			return badRequest(MessageInvalidItem)
		}
	}

	if !o.TotalAmount.Round(2).Equal(o.ItemsTotal().Round(2)) {
		return badRequest(MessageTotalMismatch)
	}

	return nil
}
