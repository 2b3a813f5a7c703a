package cart

import (
	"testing"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func candidate(id, name, p string) domain.ItemCandidate {
	return domain.ItemCandidate{ID: id, Name: name, Price: price(p), ImageURL: "https://img/" + id}
}

func TestAddItem_NewItem(t *testing.T) {
	s := NewStore()

	state := s.AddItem(candidate("1", "Neon Gaming Headset", "89.99"))

	require.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, "Neon Gaming Headset added to cart!", state.Message)
}

func TestAddItem_ExistingDoesNotBumpQuantity(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "Neon Gaming Headset", "89.99"))
	s.IncreaseQuantity("1")

	state := s.AddItem(candidate("1", "Neon Gaming Headset", "89.99"))

	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
	assert.Equal(t, "Neon Gaming Headset is already in your cart.", state.Message)
}

func TestAddItem_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		c    domain.ItemCandidate
	}{
		{"missing id", domain.ItemCandidate{Name: "X", Price: price("1"), ImageURL: "u"}},
		{"missing name", domain.ItemCandidate{ID: "1", Price: price("1"), ImageURL: "u"}},
		{"missing price", domain.ItemCandidate{ID: "1", Name: "X", ImageURL: "u"}},
		{"missing image", domain.ItemCandidate{ID: "1", Name: "X", Price: price("1")}},
		{"negative price", domain.ItemCandidate{ID: "1", Name: "X", Price: price("-50.00"), ImageURL: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			state := s.AddItem(tt.c)
			assert.Empty(t, state.Items)
			assert.Equal(t, MessageIncompleteProduct, state.Message)
		})
	}
}

func TestAddItem_ZeroPriceIsAccepted(t *testing.T) {
	s := NewStore()
	state := s.AddItem(candidate("free", "Sticker", "0"))
	assert.Len(t, state.Items, 1)
}

func TestAddItem_NegativePriceKeepsItems(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "Neon Gaming Headset", "10.00"))

	state := s.AddItem(candidate("x", "Neg", "-50.00"))

	require.Len(t, state.Items, 1)
	assert.Equal(t, "1", state.Items[0].ID)
	assert.True(t, state.Total().Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, MessageIncompleteProduct, state.Message)
}

func TestRemovePaid_KeepsLinesAddedAfterCharge(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "Neon Gaming Headset", "10.00"))
	s.AddItem(candidate("2", "LED Gaming Mousepad", "5.00"))
	paid := s.State().Items

	s.IncreaseQuantity("2")
	s.AddItem(candidate("3", "Mechanical Keyboard", "99.00"))

	state := s.RemovePaid(paid)

	require.Len(t, state.Items, 2)
	assert.Equal(t, "2", state.Items[0].ID)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, "3", state.Items[1].ID)
	assert.True(t, state.Total().Equal(decimal.RequireFromString("104.00")))
	assert.Empty(t, state.Message)
}

func TestRemovePaid_EmptiedCartReadsCleared(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "Neon Gaming Headset", "10.00"))

	state := s.RemovePaid(s.State().Items)

	assert.Empty(t, state.Items)
	assert.Equal(t, MessageCartCleared, state.Message)
}

func TestDecreaseQuantity_ToZeroRemoves(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))
	s.AddItem(candidate("2", "B", "5"))

	state := s.DecreaseQuantity("1")

	require.Len(t, state.Items, 1)
	assert.Equal(t, "2", state.Items[0].ID)
	_, found := state.Find("1")
	assert.False(t, found)
}

func TestDecreaseQuantity_KeepsPositive(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))
	s.IncreaseQuantity("1")
	s.IncreaseQuantity("1")

	state := s.DecreaseQuantity("1")
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
}

func TestMutations_UnknownIDAreNoOps(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))

	for _, state := range []domain.CartState{
		s.IncreaseQuantity("missing"),
		s.DecreaseQuantity("missing"),
		s.RemoveItem("missing"),
	} {
		require.Len(t, state.Items, 1)
		assert.Equal(t, 1, state.Items[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))

	state := s.RemoveItem("1")
	assert.Empty(t, state.Items)
	assert.NotNil(t, state.Items)
	assert.Empty(t, state.Message)
}

func TestClearMessage_KeepsItems(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))

	state := s.ClearMessage()
	assert.Len(t, state.Items, 1)
	assert.Empty(t, state.Message)
}

func TestClearCart(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))

	state := s.ClearCart()
	assert.Empty(t, state.Items)
	assert.Equal(t, MessageCartCleared, state.Message)
}

func TestLoad_ReplacesItemsWithoutMessage(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10"))

	state := s.Load([]domain.CartItem{{ID: "9", Name: "Z", Price: decimal.NewFromInt(3), ImageURL: "u", Quantity: 4}})

	require.Len(t, state.Items, 1)
	assert.Equal(t, "9", state.Items[0].ID)
	assert.Empty(t, state.Message)
}

func TestTotal_MatchesLines(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "10.00"))
	s.AddItem(candidate("2", "B", "0.10"))
	s.IncreaseQuantity("2")
	s.IncreaseQuantity("2")

	state := s.State()
	assert.True(t, decimal.RequireFromString("10.30").Equal(state.Total()))
}

func TestNoDuplicateIDsAcrossOperations(t *testing.T) {
	s := NewStore()
	ops := []func() domain.CartState{
		func() domain.CartState { return s.AddItem(candidate("1", "A", "1")) },
		func() domain.CartState { return s.AddItem(candidate("2", "B", "1")) },
		func() domain.CartState { return s.AddItem(candidate("1", "A", "1")) },
		func() domain.CartState { return s.IncreaseQuantity("1") },
		func() domain.CartState { return s.DecreaseQuantity("2") },
		func() domain.CartState { return s.AddItem(candidate("2", "B", "1")) },
	}

	for _, op := range ops {
		state := op()
		seen := map[string]bool{}
		for _, item := range state.Items {
			assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
			assert.GreaterOrEqual(t, item.Quantity, 1)
			seen[item.ID] = true
		}
	}
}

func TestState_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddItem(candidate("1", "A", "1"))

	state := s.State()
	state.Items[0].Quantity = 42

	assert.Equal(t, 1, s.State().Items[0].Quantity)
}

func TestSubscribe_SeesEveryCommit(t *testing.T) {
	s := NewStore()
	var seen []int
	s.Subscribe(func(state domain.CartState) { seen = append(seen, state.Count()) })

	s.AddItem(candidate("1", "A", "1"))
	s.IncreaseQuantity("1")
	s.DecreaseQuantity("1")

	assert.Equal(t, []int{1, 2, 1}, seen)
}
