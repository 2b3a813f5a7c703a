package payment

import (
	"context"
	"sync"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/shopspring/decimal"
)

func testOrder() domain.Order {
	return domain.Order{
		Items: []domain.CartItem{
			{ID: "1", Name: "Neon Gaming Headset", Price: decimal.RequireFromString("10.00"), ImageURL: "u", Quantity: 1},
			{ID: "2", Name: "LED Gaming Mousepad", Price: decimal.RequireFromString("5.00"), ImageURL: "u", Quantity: 2},
		},
		CustomerInfo: domain.CustomerInfo{FullName: "Ada Lovelace", Address: "1 Analytical St", ContactNumber: "555-0100"},
		TotalAmount:  decimal.RequireFromString("20.00"),
	}
}

// MockOrderStore implements OrderStore for testing
type MockOrderStore struct {
	mu     sync.RWMutex
	Orders []*domain.PlacedOrder
	Errs   []error // returned in order, one per call
}

func (m *MockOrderStore) CreateOrder(_ context.Context, order *domain.PlacedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return err
		}
	}
	m.Orders = append(m.Orders, order)
	return nil
}
