package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity for a single line
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemCandidate is what a caller offers to the cart. Price is a pointer so an
// absent price can be told apart from a zero price.
type ItemCandidate struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	ImageURL string           `json:"imageUrl"`
}

// Complete reports whether every field the cart needs is present and the
// price is not negative.
func (c ItemCandidate) Complete() bool {
	return c.ID != "" && c.Name != "" && c.Price != nil && !c.Price.IsNegative() && c.ImageURL != ""
}

type CartState struct {
	Items   []CartItem `json:"items"`
	Message string     `json:"message,omitempty"`
}

func (s CartState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the sum of quantities, the number shown on the cart badge
func (s CartState) Count() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s CartState) Find(id string) (CartItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// Clone returns a copy that shares no backing array with s.
func (s CartState) Clone() CartState {
	items := make([]CartItem, len(s.Items))
	copy(items, s.Items)
	return CartState{Items: items, Message: s.Message}
}
