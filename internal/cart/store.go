package cart

import (
	"fmt"
	"sync"

	"github.com/fjod/gizmo_store/internal/domain"
)

const (
	MessageIncompleteProduct = "Unable to add product to cart. Product data is incomplete."
	MessageCartCleared       = "Cart cleared successfully!"
)

// Listener observes every committed state. It runs under the store lock, so
// listeners see states in commit order.
type Listener func(state domain.CartState)

// Store owns the cart state of one session. Every mutation is a pure
// transition from the previous state, committed atomically.
type Store struct {
	mu        sync.Mutex
	state     domain.CartState
	listeners []Listener
}

func NewStore() *Store {
	return &Store{state: domain.CartState{Items: []domain.CartItem{}}}
}

func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Load replaces the items wholesale.
func (s *Store) Load(items []domain.CartItem) domain.CartState {
	return s.apply(func(domain.CartState) domain.CartState {
		loaded := make([]domain.CartItem, len(items))
		copy(loaded, items)
		return domain.CartState{Items: loaded}
	})
}

func (s *Store) AddItem(c domain.ItemCandidate) domain.CartState {
	return s.apply(func(prev domain.CartState) domain.CartState {
		if !c.Complete() {
			prev.Message = MessageIncompleteProduct
			return prev
		}
		if _, exists := prev.Find(c.ID); exists {
			prev.Message = fmt.Sprintf("%s is already in your cart.", c.Name)
			return prev
		}
		return domain.CartState{
			Items: append(prev.Items, domain.CartItem{
				ID:       c.ID,
				Name:     c.Name,
				Price:    *c.Price,
				ImageURL: c.ImageURL,
				Quantity: 1,
			}),
			Message: fmt.Sprintf("%s added to cart!", c.Name),
		}
	})
}

func (s *Store) RemoveItem(id string) domain.CartState {
	return s.apply(func(prev domain.CartState) domain.CartState {
		items := make([]domain.CartItem, 0, len(prev.Items))
		for _, item := range prev.Items {
			if item.ID != id {
				items = append(items, item)
			}
		}
		return domain.CartState{Items: items}
	})
}

func (s *Store) IncreaseQuantity(id string) domain.CartState {
	return s.apply(func(prev domain.CartState) domain.CartState {
		for i := range prev.Items {
			if prev.Items[i].ID == id {
				prev.Items[i].Quantity++
			}
		}
		return domain.CartState{Items: prev.Items}
	})
}

// DecreaseQuantity drops the item once its quantity reaches zero.
func (s *Store) DecreaseQuantity(id string) domain.CartState {
	return s.apply(func(prev domain.CartState) domain.CartState {
		items := make([]domain.CartItem, 0, len(prev.Items))
		for _, item := range prev.Items {
			if item.ID == id {
				item.Quantity--
			}
			if item.Quantity > 0 {
				items = append(items, item)
			}
		}
		return domain.CartState{Items: items}
	})
}

func (s *Store) ClearMessage() domain.CartState {
	return s.apply(func(prev domain.CartState) domain.CartState {
		prev.Message = ""
		return prev
	})
}

func (s *Store) ClearCart() domain.CartState {
	return s.apply(func(domain.CartState) domain.CartState {
		return domain.CartState{Items: []domain.CartItem{}, Message: MessageCartCleared}
	})
}

// RemovePaid takes the charged quantities out of the cart. Lines added or
// raised after the charge stay; an emptied cart reads as cleared.
func (s *Store) RemovePaid(paid []domain.CartItem) domain.CartState {
	return s.apply(func(prev domain.CartState) domain.CartState {
		charged := make(map[string]int, len(paid))
		for _, item := range paid {
			charged[item.ID] += item.Quantity
		}

		items := make([]domain.CartItem, 0, len(prev.Items))
		for _, item := range prev.Items {
			item.Quantity -= charged[item.ID]
			if item.Quantity > 0 {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return domain.CartState{Items: items, Message: MessageCartCleared}
		}
		return domain.CartState{Items: items}
	})
}

func (s *Store) apply(transition func(domain.CartState) domain.CartState) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := transition(s.state.Clone())
	if next.Items == nil {
		next.Items = []domain.CartItem{}
	}
	s.state = next

	for _, l := range s.listeners {
		l(next.Clone())
	}
	return next.Clone()
}
