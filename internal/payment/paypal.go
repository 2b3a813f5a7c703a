package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/gizmo_store/internal/circuitbreaker"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/google/uuid"
	"github.com/plutov/paypal/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	PayPalSandboxURL    = paypal.APIBaseSandBox
	PayPalProductionURL = paypal.APIBaseLive

	MessagePayPalConfigMissing = "PayPal configuration missing"
	MessagePayPalCreateFailed  = "Failed to create PayPal order"
	MessagePayPalCaptureFailed = "Failed to capture PayPal order"
	MessagePayPalNotCompleted  = "PayPal payment was not completed"

	paypalStatusCompleted = "COMPLETED"
	paypalRequestIDHeader = "PayPal-Request-Id"
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	ReturnURL    string
	CancelURL    string
	BrandName    string
}

type PayPalOrder struct {
	ID          string `json:"orderId"`
	Status      string `json:"-"`
	ApprovalURL string `json:"approvalUrl"`
}

type PayPalCapture struct {
	ID     string
	Status string
}

// PayPalClient talks to the PayPal orders API through the paypal SDK, which
// fetches and caches the client credentials token.
type PayPalClient struct {
	cfg     PayPalConfig
	api     *paypal.Client
	breaker *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
}

func NewPayPalClient(cfg PayPalConfig, base *http.Client, logger *zap.Logger) *PayPalClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PayPalSandboxURL
	}
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}

	c := &PayPalClient{
		cfg:     cfg,
		breaker: circuitbreaker.New[any]("paypal", logger, isPayPalClientError),
		logger:  logger,
	}

	// NewClient refuses empty credentials; the client then stays unconfigured.
	api, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.BaseURL)
	if err == nil {
		transport := base.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		api.SetHTTPClient(&http.Client{
			Timeout:   base.Timeout,
			Transport: requestIDTransport{base: transport},
		})
		c.api = api
	}
	return c
}

func (c *PayPalClient) Configured() bool {
	return c.api != nil
}

// CreateOrder creates a CAPTURE intent order and returns the approval link.
func (c *PayPalClient) CreateOrder(ctx context.Context, order domain.Order, requestID string) (*PayPalOrder, error) {
	if !c.Configured() {
		return nil, internal(MessagePayPalConfigMissing, nil)
	}
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}

	ctx = withPayPalRequestID(ctx, requestID)
	created, err := call(c, func() (*paypal.Order, error) {
		return c.api.CreateOrder(ctx, paypal.OrderIntentCapture,
			[]paypal.PurchaseUnitRequest{purchaseUnit(order)}, nil, c.applicationContext())
	})
	if err != nil {
		c.logger.Error("paypal order creation failed", paypalErrorFields(err)...)
		return nil, internal(MessagePayPalCreateFailed, err)
	}
	if created.ID == "" {
		return nil, internal(MessagePayPalCreateFailed, errors.New("paypal order without id"))
	}

	result := &PayPalOrder{ID: created.ID, Status: created.Status}
	for _, link := range created.Links {
		if link.Rel == "approve" {
			result.ApprovalURL = link.Href
			break
		}
	}
	return result, nil
}

// CaptureOrder captures an approved order. Anything but COMPLETED is a failure.
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID, requestID string) (*PayPalCapture, error) {
	if !c.Configured() {
		return nil, internal(MessagePayPalConfigMissing, nil)
	}

	ctx = withPayPalRequestID(ctx, requestID)
	captured, err := call(c, func() (*paypal.CaptureOrderResponse, error) {
		return c.api.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	})
	if err != nil {
		fields := append(paypalErrorFields(err), zap.String("paypal_order_id", orderID))
		c.logger.Error("paypal capture failed", fields...)

		var apiErr *paypal.ErrorResponse
		if errors.As(err, &apiErr) {
			return nil, &BackendError{StatusCode: http.StatusBadGateway, Message: MessagePayPalCaptureFailed, Err: err}
		}
		return nil, internal(MessagePayPalCaptureFailed, err)
	}
	if captured.Status != paypalStatusCompleted {
		return nil, &BackendError{StatusCode: http.StatusPaymentRequired, Message: MessagePayPalNotCompleted,
			Err: fmt.Errorf("capture status %s", captured.Status)}
	}

	return &PayPalCapture{ID: captured.ID, Status: captured.Status}, nil
}

func purchaseUnit(order domain.Order) paypal.PurchaseUnitRequest {
	total := order.TotalAmount.StringFixed(2)
	customer := order.CustomerInfo.Trimmed()

	unit := paypal.PurchaseUnitRequest{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: domain.CurrencyUSD,
			Value:    total,
			Breakdown: &paypal.PurchaseUnitAmountBreakdown{
				ItemTotal: &paypal.Money{Currency: domain.CurrencyUSD, Value: total},
			},
		},
		Shipping: &paypal.ShippingDetail{
			Name: &paypal.Name{FullName: customer.FullName},
			Address: &paypal.ShippingDetailAddressPortable{
				AddressLine1: customer.Address,
				CountryCode:  "US",
			},
		},
	}
	for _, item := range order.Items {
		unit.Items = append(unit.Items, paypal.Item{
			Name:       item.Name,
			UnitAmount: &paypal.Money{Currency: domain.CurrencyUSD, Value: item.Price.StringFixed(2)},
			Quantity:   strconv.Itoa(item.Quantity),
			Category:   "PHYSICAL_GOODS",
		})
	}
	return unit
}

func (c *PayPalClient) applicationContext() *paypal.ApplicationContext {
	return &paypal.ApplicationContext{
		BrandName:   c.cfg.BrandName,
		LandingPage: "NO_PREFERENCE",
		UserAction:  "PAY_NOW",
		ReturnURL:   c.cfg.ReturnURL,
		CancelURL:   c.cfg.CancelURL,
	}
}

// call runs fn through the shared breaker.
func call[T any](c *PayPalClient, fn func() (T, error)) (T, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// isPayPalClientError keeps rejected requests from tripping the breaker.
func isPayPalClientError(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *paypal.ErrorResponse
	return errors.As(err, &apiErr) && apiErr.Response != nil &&
		apiErr.Response.StatusCode < http.StatusInternalServerError
}

func paypalErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var apiErr *paypal.ErrorResponse
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("name", apiErr.Name), zap.String("debug_id", apiErr.DebugID))
		if apiErr.Response != nil {
			fields = append(fields, zap.Int("status", apiErr.Response.StatusCode))
		}
	}
	return fields
}

type paypalRequestIDKey struct{}

func withPayPalRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, paypalRequestIDKey{}, id)
}

// requestIDTransport copies the request id from the context into the
// PayPal-Request-Id header, which the SDK has no option for.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id, _ := req.Context().Value(paypalRequestIDKey{}).(string)
	if id == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set(paypalRequestIDHeader, id)
	return t.base.RoundTrip(req)
}

type PayPalBackend interface {
	CreateOrder(ctx context.Context, order domain.Order, requestID string) (*PayPalOrder, error)
	CaptureOrder(ctx context.Context, orderID, requestID string) (*PayPalCapture, error)
}

// PayPalAdapter normalizes PayPal calls to Result. Calls are never retried;
// PayPal-Request-Id makes a resend by the caller safe.
type PayPalAdapter struct {
	backend PayPalBackend
	timeout time.Duration
}

func NewPayPalAdapter(backend PayPalBackend, timeout time.Duration) *PayPalAdapter {
	return &PayPalAdapter{backend: backend, timeout: timeout}
}

func (a *PayPalAdapter) CreateOrder(ctx context.Context, order domain.Order) Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	created, err := a.backend.CreateOrder(ctx, order, "order-"+uuid.NewString())
	if err != nil {
		return Failure(MessageOf(err, MessagePayPalCreateFailed))
	}
	if created.ApprovalURL == "" {
		return Failure(MessagePayPalCreateFailed)
	}

	return Result{OK: true, ReferenceID: created.ID, ApprovalURL: created.ApprovalURL}
}

func (a *PayPalAdapter) CaptureOrder(ctx context.Context, orderID string) Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if _, err := a.backend.CaptureOrder(ctx, orderID, "capture-"+orderID); err != nil {
		return Failure(MessageOf(err, MessagePayPalCaptureFailed))
	}
	return Success(orderID)
}
