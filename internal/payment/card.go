package payment

import (
	"context"
	"time"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/google/uuid"
)

const (
	IntentStatusSucceeded = "succeeded"

	MessageIntentFailed       = "Failed to create payment intent"
	MessagePaymentFailed      = "Payment failed"
	MessageCardDetailsMissing = "Card details are required"

	MessagePaymentNotCompleted = "Payment was not completed"
	MessagePaymentNeedsAction  = "Your bank needs additional verification. Please try another card."
	MessagePaymentProcessing   = "Your payment is still processing. Please check back shortly."
	MessagePaymentRejected     = "Your card was not accepted. Please try another card."
	MessagePaymentCancelled    = "Payment was cancelled"
)

// statusMessages are the customer facing texts for intents that did not succeed.
var statusMessages = map[string]string{
	"requires_action":         MessagePaymentNeedsAction,
	"requires_confirmation":   MessagePaymentNotCompleted,
	"requires_capture":        MessagePaymentNotCompleted,
	"processing":              MessagePaymentProcessing,
	"requires_payment_method": MessagePaymentRejected,
	"canceled":                MessagePaymentCancelled,
}

func incompleteMessage(status string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return MessagePaymentNotCompleted
}

// Intent is a card payment intent as seen by this service.
type Intent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"-"`
}

// CardProcessor is a two phase card backend: create an intent for the
// amount, then confirm it with the customer's payment method.
type CardProcessor interface {
	CreateIntent(ctx context.Context, order domain.Order, idempotencyKey string) (*Intent, error)
	ConfirmIntent(ctx context.Context, intentID string, details domain.CardDetails, idempotencyKey string) (*Intent, error)
}

// CardAdapter runs both phases and reports a single Result. Only an intent
// that reached "succeeded" is a successful payment.
type CardAdapter struct {
	processor CardProcessor
	timeout   time.Duration
}

func NewCardAdapter(processor CardProcessor, timeout time.Duration) *CardAdapter {
	return &CardAdapter{processor: processor, timeout: timeout}
}

func (a *CardAdapter) Pay(ctx context.Context, order domain.Order, details domain.CardDetails) Result {
	if details.PaymentMethodID == "" {
		return Failure(MessageCardDetailsMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	key := uuid.NewString()
	intent, err := a.processor.CreateIntent(ctx, order, key+"-create")
	if err != nil {
		return Failure(MessageOf(err, MessageIntentFailed))
	}

	confirmed, err := a.processor.ConfirmIntent(ctx, intent.ID, details, key+"-confirm")
	if err != nil {
		return Failure(MessageOf(err, MessagePaymentFailed))
	}
	if confirmed.Status != IntentStatusSucceeded {
		return Failure(incompleteMessage(confirmed.Status))
	}

	return Success(confirmed.ID)
}
