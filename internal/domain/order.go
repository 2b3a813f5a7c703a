package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPaid      OrderStatus = "paid"
)

// PlacedOrder is an order accepted by a payment backend.
type PlacedOrder struct {
	ID                string          `json:"orderId"`
	PaymentMethod     string          `json:"paymentMethod"`
	Status            OrderStatus     `json:"status"`
	CustomerInfo      CustomerInfo    `json:"customerInfo"`
	Items             []CartItem      `json:"items"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Currency          string          `json:"currency"`
	CreatedAt         time.Time       `json:"createdAt"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
}
