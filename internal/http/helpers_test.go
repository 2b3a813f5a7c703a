package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/gizmo_store/internal/auth"
	"github.com/fjod/gizmo_store/internal/cache"
	"github.com/fjod/gizmo_store/internal/cart"
	"github.com/fjod/gizmo_store/internal/catalog"
	"github.com/fjod/gizmo_store/internal/checkout"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/payment"
	"github.com/fjod/gizmo_store/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSession = "7d3f4b4e-2c1a-4f53-9f44-0d7c2a2b9e11"

// MockPayers implements the checkout payers for testing
type MockPayers struct {
	mu           sync.RWMutex
	CashResult   payment.Result
	CreateResult payment.Result
	CaptureRes   payment.Result
	CardResult   payment.Result
	calls        int
}

func (m *MockPayers) count() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *MockPayers) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockPayers) PlaceOrder(context.Context, domain.Order) payment.Result {
	m.count()
	return m.CashResult
}

func (m *MockPayers) CreateOrder(context.Context, domain.Order) payment.Result {
	m.count()
	return m.CreateResult
}

func (m *MockPayers) CaptureOrder(context.Context, string) payment.Result {
	m.count()
	return m.CaptureRes
}

func (m *MockPayers) Pay(context.Context, domain.Order, domain.CardDetails) payment.Result {
	m.count()
	return m.CardResult
}

// FailingStorage implements cache.Store and fails every read
type FailingStorage struct{}

func (FailingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errStorageDown
}

func (FailingStorage) Set(context.Context, string, []byte) error {
	return errStorageDown
}

type storageError string

func (e storageError) Error() string { return string(e) }

const errStorageDown = storageError("storage down")

type testEnv struct {
	router  http.Handler
	payers  *MockPayers
	storage *cache.MemoryCache
	orders  *repository.MemoryOrderRepository
	auth    *auth.Service
	carts   *cart.Manager
}

func newTestEnvWithStorage(t *testing.T, storage cache.Store) *testEnv {
	t.Helper()
	log := zap.NewNop()

	carts := cart.NewManager(storage, cart.Options{}, log)
	t.Cleanup(carts.Close)

	payers := &MockPayers{}
	orch := checkout.NewOrchestrator(payers, payers, payers, nil, checkout.Options{}, log)

	repo, err := repository.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { repo.Close() })

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, repo.CreateAdmin(context.Background(), &domain.Admin{
		ID: "admin-1", Username: "root", PasswordHash: hash, CreatedAt: time.Now(),
	}))
	authSvc := auth.NewService(repo, "test-secret")

	orders := repository.NewMemoryOrderRepository()
	cash := payment.NewCashService(orders, log)
	sandbox := payment.NewSandboxProcessor(payment.RandomStatus{})
	paypal := payment.NewPayPalClient(payment.PayPalConfig{}, http.DefaultClient, log)

	router := NewRouter(Handlers{
		Cart:     NewCartHandler(carts, orch, time.Second),
		Checkout: NewCheckoutHandler(carts, orch, log),
		Backend:  NewBackendHandler(cash, paypal, sandbox),
		Products: NewProductHandler(catalog.NewService(repo), time.Second, log),
		Admin:    NewAdminHandler(authSvc, orders, false, time.Second, log),
		Verifier: authSvc,
	}, RouterConfig{RequestTimeout: 5 * time.Second})

	env := &testEnv{router: router, payers: payers, orders: orders, auth: authSvc, carts: carts}
	if mc, ok := storage.(*cache.MemoryCache); ok {
		env.storage = mc
	}
	return env
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStorage(t, cache.NewMemoryCache())
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func session() *http.Cookie {
	return &http.Cookie{Name: SessionCookie, Value: testSession}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type viewDTO struct {
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Message     string `json:"message"`
	TotalAmount string `json:"totalAmount"`
	ItemCount   int    `json:"itemCount"`
	Hydrated    bool   `json:"hydrated"`
}

func addItem(t *testing.T, e *testEnv, id, name string, price any) *httptest.ResponseRecorder {
	return e.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"id": id, "name": name, "price": price, "imageUrl": "https://img/" + id,
	}, session())
}
