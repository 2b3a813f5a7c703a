package payment

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MessageCashConfirmed = "Order confirmed successfully"

	deliveryWindow = 3 * 24 * time.Hour
	orderIDSuffix  = 9
)

// OrderStore persists placed orders. CreateOrder returns
// repository.ErrDuplicateOrder when the id is already taken.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.PlacedOrder) error
}

type CashConfirmation struct {
	OrderID string              `json:"orderId"`
	Message string              `json:"message"`
	Order   *domain.PlacedOrder `json:"order"`
}

// CashService is the cash on delivery backend.
type CashService struct {
	orders OrderStore
	logger *zap.Logger
	now    func() time.Time
}

func NewCashService(orders OrderStore, logger *zap.Logger) *CashService {
	return &CashService{orders: orders, logger: logger, now: time.Now}
}

// PlaceOrder validates and records a cash order. An empty orderID gets a
// generated one; a repeated orderID is treated as the same order.
func (s *CashService) PlaceOrder(ctx context.Context, order domain.Order, orderID string) (*CashConfirmation, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}

	now := s.now()
	if orderID == "" {
		orderID = NewCashOrderID(now)
	}

	placed := &domain.PlacedOrder{
		ID:                orderID,
		PaymentMethod:     "cash",
		Status:            domain.OrderStatusConfirmed,
		CustomerInfo:      order.CustomerInfo.Trimmed(),
		Items:             order.Items,
		TotalAmount:       order.TotalAmount,
		Currency:          domain.CurrencyUSD,
		CreatedAt:         now,
		EstimatedDelivery: now.Add(deliveryWindow),
	}

	err := s.orders.CreateOrder(ctx, placed)
	if err != nil && !errors.Is(err, repository.ErrDuplicateOrder) {
		s.logger.Error("cash order insert failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, internal("Failed to process cash order", err)
	}

	s.logger.Info("cash order confirmed",
		zap.String("order_id", orderID),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	return &CashConfirmation{
		OrderID: orderID,
		Message: MessageCashConfirmed,
		Order:   placed,
	}, nil
}

// NewCashOrderID returns CASH-<unix millis>-<9 base36 characters>.
func NewCashOrderID(now time.Time) string {
	u := uuid.New()
	suffix := strings.ToUpper(new(big.Int).SetBytes(u[:]).Text(36))
	if len(suffix) < orderIDSuffix {
		suffix = strings.Repeat("0", orderIDSuffix-len(suffix)) + suffix
	}
	return fmt.Sprintf("CASH-%d-%s", now.UnixMilli(), suffix[len(suffix)-orderIDSuffix:])
}

type CashBackend interface {
	PlaceOrder(ctx context.Context, order domain.Order, orderID string) (*CashConfirmation, error)
}

// CashAdapter retries server side failures. The order id is fixed before
// the first attempt so a retry cannot place a second order.
type CashAdapter struct {
	backend    CashBackend
	timeout    time.Duration
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
	now        func() time.Time
}

func NewCashAdapter(backend CashBackend, timeout time.Duration, maxRetries uint64, logger *zap.Logger) *CashAdapter {
	return &CashAdapter{
		backend:    backend,
		timeout:    timeout,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logger,
		now:        time.Now,
	}
}

func (a *CashAdapter) PlaceOrder(ctx context.Context, order domain.Order) Result {
	orderID := NewCashOrderID(a.now())

	var confirmation *CashConfirmation
	attempt := 0
	operation := func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		c, err := a.backend.PlaceOrder(callCtx, order, orderID)
		if err != nil {
			var be *BackendError
			if errors.As(err, &be) && !be.Retryable() {
				return backoff.Permanent(err)
			}
			a.logger.Warn("cash order attempt failed",
				zap.String("order_id", orderID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		confirmation = c
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(a.newBackOff(), a.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return Failure(MessageOf(err, "Failed to place order. Please try again."))
	}

	return Success(confirmation.OrderID)
}
