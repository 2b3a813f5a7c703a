package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/gizmo_store/internal/circuitbreaker"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

const MessageCardUnavailable = "Card payments are temporarily unavailable"

// StripeProcessor is the Stripe PaymentIntents backed CardProcessor.
type StripeProcessor struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[*stripe.PaymentIntent]
	logger  *zap.Logger
}

// NewStripeProcessor builds a processor for secretKey. backends may be nil to
// use the default Stripe endpoints.
func NewStripeProcessor(secretKey string, backends *stripe.Backends, logger *zap.Logger) *StripeProcessor {
	return &StripeProcessor{
		api:     client.New(secretKey, backends),
		breaker: circuitbreaker.New[*stripe.PaymentIntent]("stripe", logger, isStripeClientError),
		logger:  logger,
	}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, order domain.Order, idempotencyKey string) (*Intent, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, internal(MessageIntentFailed, err)
	}
	customer := order.CustomerInfo.Trimmed()

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToCents(order.TotalAmount)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodAutomatic)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	params.AddMetadata("customerName", customer.FullName)
	params.AddMetadata("customerAddress", customer.Address)
	params.AddMetadata("customerPhone", customer.ContactNumber)
	params.AddMetadata("items", string(itemsJSON))

	pi, err := p.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return p.api.PaymentIntents.New(params)
	})
	if err != nil {
		p.logger.Error("stripe payment intent creation failed", zap.Error(err))
		return nil, p.convertError(err, MessageIntentFailed)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (p *StripeProcessor) ConfirmIntent(ctx context.Context, intentID string, details domain.CardDetails, idempotencyKey string) (*Intent, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(details.PaymentMethodID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := p.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return p.api.PaymentIntents.Confirm(intentID, params)
	})
	if err != nil {
		p.logger.Warn("stripe confirmation failed", zap.String("payment_intent_id", intentID), zap.Error(err))
		return nil, p.convertError(err, MessagePaymentFailed)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// convertError keeps Stripe's own message for card errors, which are written
// for the customer.
func (p *StripeProcessor) convertError(err error, fallback string) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &BackendError{StatusCode: http.StatusServiceUnavailable, Message: MessageCardUnavailable, Err: err}
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		status := stripeErr.HTTPStatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		message := fallback
		if stripeErr.Type == stripe.ErrorTypeCard && stripeErr.Msg != "" {
			message = stripeErr.Msg
		}
		return &BackendError{StatusCode: status, Message: message, Err: err}
	}

	return internal(fallback, err)
}

// isStripeClientError keeps declines and bad requests from tripping the breaker.
func isStripeClientError(err error) bool {
	if err == nil {
		return true
	}
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode > 0 && stripeErr.HTTPStatusCode < http.StatusInternalServerError
}

// ToCents converts a dollar amount to the smallest currency unit, rounding
// half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
