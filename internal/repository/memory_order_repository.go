package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/gizmo_store/internal/domain"
)

// MemoryOrderRepository stores orders in process when no database is configured.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.PlacedOrder
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*domain.PlacedOrder)}
}

func (r *MemoryOrderRepository) CreateOrder(_ context.Context, order *domain.PlacedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return ErrDuplicateOrder
	}
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *MemoryOrderRepository) GetOrder(_ context.Context, id string) (*domain.PlacedOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := *order
	return &out, nil
}

func (r *MemoryOrderRepository) ListOrders(_ context.Context, limit int) ([]*domain.PlacedOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*domain.PlacedOrder, 0, len(r.orders))
	for _, order := range r.orders {
		out := *order
		orders = append(orders, &out)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}
