package cart

import (
	"context"

	"github.com/fjod/gizmo_store/internal/cache"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// View is what callers are shown. Until the session is hydrated it reads as
// an empty cart.
type View struct {
	Items       []domain.CartItem `json:"items"`
	Message     string            `json:"message,omitempty"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	ItemCount   int               `json:"itemCount"`
	Hydrated    bool              `json:"hydrated"`
}

// Session binds one visitor's Store to its Persister.
type Session struct {
	id        string
	store     *Store
	persister *Persister
}

func NewSession(id string, storage cache.Store, namespace string, logger *zap.Logger) *Session {
	store := NewStore()
	persister := NewPersister(storage, Key(namespace, id), logger.With(zap.String("session_id", id)))
	store.Subscribe(persister.Save)

	return &Session{
		id:        id,
		store:     store,
		persister: persister,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Hydrated() bool {
	return s.persister.Hydrated()
}

func (s *Session) Hydrate(ctx context.Context) error {
	return s.persister.Hydrate(ctx, s.store)
}

// Snapshot is the cart as the checkout sees it.
func (s *Session) Snapshot() domain.CartState {
	if !s.Hydrated() {
		return domain.CartState{Items: []domain.CartItem{}}
	}
	return s.store.State()
}

func (s *Session) View() View {
	return s.view(s.store.State())
}

func (s *Session) AddItem(c domain.ItemCandidate) View {
	return s.view(s.store.AddItem(c))
}

func (s *Session) RemoveItem(id string) View {
	return s.view(s.store.RemoveItem(id))
}

func (s *Session) IncreaseQuantity(id string) View {
	return s.view(s.store.IncreaseQuantity(id))
}

func (s *Session) DecreaseQuantity(id string) View {
	return s.view(s.store.DecreaseQuantity(id))
}

func (s *Session) ClearMessage() View {
	return s.view(s.store.ClearMessage())
}

func (s *Session) ClearCart() View {
	return s.view(s.store.ClearCart())
}

func (s *Session) RemovePaid(paid []domain.CartItem) View {
	return s.view(s.store.RemovePaid(paid))
}

func (s *Session) view(state domain.CartState) View {
	if !s.Hydrated() {
		return View{Items: []domain.CartItem{}, Message: state.Message, TotalAmount: decimal.Zero}
	}
	return View{
		Items:       state.Items,
		Message:     state.Message,
		TotalAmount: state.Total(),
		ItemCount:   state.Count(),
		Hydrated:    true,
	}
}
