package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/gizmo_store/internal/cache"
	"github.com/fjod/gizmo_store/internal/cart"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/events"
	"github.com/fjod/gizmo_store/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPayers implements CashPayer, PayPalPayer and CardPayer for testing
type MockPayers struct {
	mu sync.RWMutex

	CashResult    payment.Result
	CreateResult  payment.Result
	CaptureResult payment.Result
	CardResult    payment.Result

	// block, when set, holds every call until closed
	block chan struct{}

	Orders   []domain.Order
	Captured []string
	Details  []domain.CardDetails
	CtxErrs  []error // ctx.Err() seen by each call
	calls    int
}

func (m *MockPayers) wait() {
	if m.block != nil {
		<-m.block
	}
}

func (m *MockPayers) record(ctx context.Context, order domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.Orders = append(m.Orders, order)
	m.CtxErrs = append(m.CtxErrs, ctx.Err())
}

func (m *MockPayers) PlaceOrder(ctx context.Context, order domain.Order) payment.Result {
	m.record(ctx, order)
	m.wait()
	return m.CashResult
}

func (m *MockPayers) CreateOrder(ctx context.Context, order domain.Order) payment.Result {
	m.record(ctx, order)
	m.wait()
	return m.CreateResult
}

func (m *MockPayers) CaptureOrder(ctx context.Context, orderID string) payment.Result {
	m.mu.Lock()
	m.calls++
	m.Captured = append(m.Captured, orderID)
	m.CtxErrs = append(m.CtxErrs, ctx.Err())
	m.mu.Unlock()
	return m.CaptureResult
}

func (m *MockPayers) Pay(ctx context.Context, order domain.Order, details domain.CardDetails) payment.Result {
	m.record(ctx, order)
	m.mu.Lock()
	m.Details = append(m.Details, details)
	m.mu.Unlock()
	m.wait()
	return m.CardResult
}

func (m *MockPayers) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// MockPublisher implements events.Publisher for testing
type MockPublisher struct {
	mu     sync.RWMutex
	Events []events.CheckoutCompleted
	Err    error
}

func (m *MockPublisher) PublishCheckoutCompleted(_ context.Context, e events.CheckoutCompleted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, e)
	return m.Err
}

func (m *MockPublisher) Published() []events.CheckoutCompleted {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]events.CheckoutCompleted(nil), m.Events...)
}

var errPublish = errors.New("broker down")

func newTestOrchestrator(p *MockPayers, pub *MockPublisher) *Orchestrator {
	return NewOrchestrator(p, p, p, pub, Options{}, zap.NewNop())
}

func candidate(id, name, p string) domain.ItemCandidate {
	d := decimal.RequireFromString(p)
	return domain.ItemCandidate{ID: id, Name: name, Price: &d, ImageURL: "https://img/" + id}
}

// newCart returns a hydrated session holding 10.00 x1 and 5.00 x2.
func newCart(t *testing.T, id string) *cart.Session {
	t.Helper()
	s := cart.NewSession(id, cache.NewMemoryCache(), cart.DefaultNamespace, zap.NewNop())
	require.NoError(t, s.Hydrate(context.Background()))
	s.AddItem(candidate("1", "Neon Gaming Headset", "10.00"))
	s.AddItem(candidate("2", "LED Gaming Mousepad", "5.00"))
	s.IncreaseQuantity("2")
	return s
}

func form(method domain.PaymentMethod, card domain.CardBrand) domain.CheckoutForm {
	return domain.CheckoutForm{
		FullName:        "  Ada Lovelace ",
		Address:         "1 Analytical St",
		ContactNumber:   "555-0100",
		PaymentMethod:   method,
		CardType:        card,
		PaymentMethodID: "pm_card_visa",
	}
}
