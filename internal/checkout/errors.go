package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrInvalidAmount        = errors.New("order total must be greater than zero")
	ErrSubmissionInProgress = errors.New("a checkout is already in progress for this session")
	ErrNoPendingApproval    = errors.New("no payment is waiting for approval")
)

const (
	MessageFullNameRequired      = "Full name is required"
	MessageAddressRequired       = "Address is required"
	MessageContactNumberRequired = "Contact number is required"
	MessageCardTypeRequired      = "Please select a card type"
	MessagePaymentMethodRequired = "Please select a payment method"
	MessageEmptyCart             = "Your cart is empty"
	MessageInvalidAmount         = "Invalid total amount"
)

// ValidationError rejects a submission before any payment backend is called.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AdapterError carries the message a payment backend failed with.
type AdapterError struct {
	Method  string
	Message string
}

func (e *AdapterError) Error() string {
	return e.Method + " payment failed: " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
