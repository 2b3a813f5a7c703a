package payment

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var cashIDPattern = regexp.MustCompile(`^CASH-\d+-[0-9A-Z]{9}$`)

func TestNewCashOrderID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewCashOrderID(now)

	assert.Regexp(t, cashIDPattern, id)
	assert.Contains(t, id, "CASH-1700000000123-")
	assert.NotEqual(t, id, NewCashOrderID(now))
}

func TestCashService_PlaceOrder(t *testing.T) {
	store := &MockOrderStore{}
	svc := NewCashService(store, zap.NewNop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	confirmation, err := svc.PlaceOrder(context.Background(), testOrder(), "")
	require.NoError(t, err)

	assert.Regexp(t, cashIDPattern, confirmation.OrderID)
	assert.Equal(t, MessageCashConfirmed, confirmation.Message)
	assert.Equal(t, domain.OrderStatusConfirmed, confirmation.Order.Status)
	assert.Equal(t, "cash", confirmation.Order.PaymentMethod)
	assert.Equal(t, now.Add(72*time.Hour), confirmation.Order.EstimatedDelivery)
	require.Len(t, store.Orders, 1)
	assert.Equal(t, confirmation.OrderID, store.Orders[0].ID)
}

func TestCashService_ValidationFailure(t *testing.T) {
	store := &MockOrderStore{}
	svc := NewCashService(store, zap.NewNop())

	order := testOrder()
	order.Items = nil
	_, err := svc.PlaceOrder(context.Background(), order, "")

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 400, be.StatusCode)
	assert.Empty(t, store.Orders)
}

func TestCashService_DuplicateOrderIsIdempotent(t *testing.T) {
	store := &MockOrderStore{Errs: []error{repository.ErrDuplicateOrder}}
	svc := NewCashService(store, zap.NewNop())

	confirmation, err := svc.PlaceOrder(context.Background(), testOrder(), "CASH-1-ABCDEFGHI")
	require.NoError(t, err)
	assert.Equal(t, "CASH-1-ABCDEFGHI", confirmation.OrderID)
}

func TestCashService_StoreFailure(t *testing.T) {
	store := &MockOrderStore{Errs: []error{errors.New("db down")}}
	svc := NewCashService(store, zap.NewNop())

	_, err := svc.PlaceOrder(context.Background(), testOrder(), "")

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 500, be.StatusCode)
	assert.True(t, be.Retryable())
}

type countingCashBackend struct {
	calls    int
	orderIDs []string
	errs     []error
}

func (b *countingCashBackend) PlaceOrder(_ context.Context, _ domain.Order, orderID string) (*CashConfirmation, error) {
	b.calls++
	b.orderIDs = append(b.orderIDs, orderID)
	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &CashConfirmation{OrderID: orderID, Message: MessageCashConfirmed}, nil
}

func newTestCashAdapter(backend CashBackend) *CashAdapter {
	a := NewCashAdapter(backend, time.Second, 2, zap.NewNop())
	a.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return a
}

func TestCashAdapter_Success(t *testing.T) {
	backend := &countingCashBackend{}
	result := newTestCashAdapter(backend).PlaceOrder(context.Background(), testOrder())

	assert.True(t, result.OK)
	assert.Regexp(t, cashIDPattern, result.ReferenceID)
	assert.Equal(t, 1, backend.calls)
}

func TestCashAdapter_RetriesServerErrorsWithSameOrderID(t *testing.T) {
	backend := &countingCashBackend{errs: []error{
		internal("Failed to process cash order", errors.New("conn reset")),
		internal("Failed to process cash order", errors.New("conn reset")),
	}}

	result := newTestCashAdapter(backend).PlaceOrder(context.Background(), testOrder())

	assert.True(t, result.OK)
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, backend.orderIDs[0], backend.orderIDs[2])
}

func TestCashAdapter_GivesUpAfterMaxRetries(t *testing.T) {
	fail := internal("Failed to process cash order", errors.New("conn reset"))
	backend := &countingCashBackend{errs: []error{fail, fail, fail, fail}}

	result := newTestCashAdapter(backend).PlaceOrder(context.Background(), testOrder())

	assert.False(t, result.OK)
	assert.Equal(t, "Failed to process cash order", result.Message)
	assert.Equal(t, 3, backend.calls)
}

func TestCashAdapter_DoesNotRetryClientErrors(t *testing.T) {
	backend := &countingCashBackend{errs: []error{badRequest(MessageNoItems)}}

	result := newTestCashAdapter(backend).PlaceOrder(context.Background(), testOrder())

	assert.False(t, result.OK)
	assert.Equal(t, MessageNoItems, result.Message)
	assert.Equal(t, 1, backend.calls)
}
