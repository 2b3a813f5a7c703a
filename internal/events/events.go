package events

import (
	"context"
	"time"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	TopicCheckoutCompleted = "checkout-completed"
	TypeCheckoutCompleted  = "CheckoutCompleted"
)

// CheckoutCompleted is emitted once a checkout attempt has been paid for.
type CheckoutCompleted struct {
	CheckoutID    string              `json:"checkout_id"`
	SessionID     string              `json:"session_id"`
	PaymentMethod string              `json:"payment_method"`
	ReferenceID   string              `json:"reference_id"`
	Customer      domain.CustomerInfo `json:"customer"`
	Items         []domain.CartItem   `json:"items"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Currency      string              `json:"currency"`
	CompletedAt   time.Time           `json:"completed_at"`
}

type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, event CheckoutCompleted) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckoutCompleted(context.Context, CheckoutCompleted) error {
	return nil
}
