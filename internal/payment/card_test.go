package payment

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProcessor implements CardProcessor for testing
type MockProcessor struct {
	CreateErr     error
	ConfirmErr    error
	ConfirmStatus string
	CreateCalls   int
	ConfirmCalls  int
	LastDetails   domain.CardDetails
}

func (m *MockProcessor) CreateIntent(_ context.Context, _ domain.Order, _ string) (*Intent, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return &Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method"}, nil
}

func (m *MockProcessor) ConfirmIntent(_ context.Context, intentID string, details domain.CardDetails, _ string) (*Intent, error) {
	m.ConfirmCalls++
	m.LastDetails = details
	if m.ConfirmErr != nil {
		return nil, m.ConfirmErr
	}
	status := m.ConfirmStatus
	if status == "" {
		status = IntentStatusSucceeded
	}
	return &Intent{ID: intentID, Status: status}, nil
}

var visa = domain.CardDetails{PaymentMethodID: "pm_card_visa"}

func TestCardAdapter_Success(t *testing.T) {
	processor := &MockProcessor{}
	result := NewCardAdapter(processor, time.Second).Pay(context.Background(), testOrder(), visa)

	assert.True(t, result.OK)
	assert.Equal(t, "pi_123", result.ReferenceID)
	assert.Equal(t, "pm_card_visa", processor.LastDetails.PaymentMethodID)
}

func TestCardAdapter_NonSucceededStatusIsFailure(t *testing.T) {
	tests := []struct {
		status  string
		message string
	}{
		{"requires_action", MessagePaymentNeedsAction},
		{"processing", MessagePaymentProcessing},
		{"requires_payment_method", MessagePaymentRejected},
		{"canceled", MessagePaymentCancelled},
		{"something_new", MessagePaymentNotCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			processor := &MockProcessor{ConfirmStatus: tt.status}
			result := NewCardAdapter(processor, time.Second).Pay(context.Background(), testOrder(), visa)

			assert.False(t, result.OK)
			assert.Equal(t, tt.message, result.Message)
			assert.NotContains(t, result.Message, tt.status)
		})
	}
}

func TestCardAdapter_CreateFailure(t *testing.T) {
	processor := &MockProcessor{CreateErr: internal(MessageIntentFailed, nil)}
	result := NewCardAdapter(processor, time.Second).Pay(context.Background(), testOrder(), visa)

	assert.False(t, result.OK)
	assert.Equal(t, MessageIntentFailed, result.Message)
	assert.Equal(t, 0, processor.ConfirmCalls)
}

func TestCardAdapter_ConfirmDeclinedKeepsProcessorMessage(t *testing.T) {
	processor := &MockProcessor{ConfirmErr: &BackendError{StatusCode: http.StatusPaymentRequired, Message: "Your card was declined."}}
	result := NewCardAdapter(processor, time.Second).Pay(context.Background(), testOrder(), visa)

	assert.False(t, result.OK)
	assert.Equal(t, "Your card was declined.", result.Message)
}

func TestCardAdapter_MissingDetails(t *testing.T) {
	processor := &MockProcessor{}
	result := NewCardAdapter(processor, time.Second).Pay(context.Background(), testOrder(), domain.CardDetails{})

	assert.False(t, result.OK)
	assert.Equal(t, MessageCardDetailsMissing, result.Message)
	require.Equal(t, 0, processor.CreateCalls)
}
