package payment

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/google/uuid"
)

// Refusal is why the sandbox declined a card.
type Refusal int

const (
	RefusalUnknown Refusal = iota
	RefusalInsufficientFunds
	RefusalCardDeclined
	RefusalExpiredCard
	RefusalIncorrectCVC
	RefusalProcessingError
)

func (r Refusal) Message() string {
	switch r {
	case RefusalInsufficientFunds:
		return "Your card has insufficient funds."
	case RefusalCardDeclined:
		return "Your card was declined."
	case RefusalExpiredCard:
		return "Your card has expired."
	case RefusalIncorrectCVC:
		return "Your card's security code is incorrect."
	case RefusalProcessingError:
		return "An error occurred while processing your card. Try again in a little bit."
	}
	return "Payment failed: unknown reason"
}

type GetResponseStatus interface {
	GetStatus() (bool, Refusal)
}

type RandomStatus struct{}

func (r RandomStatus) GetStatus() (bool, Refusal) {
	randomInt := rand.Intn(101) // 101 because Intn is exclusive of the upper bound
	return calcStatus(randomInt)
}

func calcStatus(randomInt int) (bool, Refusal) {
	if randomInt < 95 {
		return true, RefusalUnknown
	}
	otherReason := randomInt - 95
	if otherReason == 0 || otherReason > 5 {
		return false, RefusalUnknown
	}

	return false, Refusal(otherReason)
}

const (
	// SandboxIntentTTL is how long an intent can be confirmed after creation.
	SandboxIntentTTL = time.Hour
	// SandboxMaxIntents caps the live intents held in memory.
	SandboxMaxIntents = 10000
)

type sandboxIntent struct {
	intent    *Intent
	createdAt time.Time
}

// SandboxProcessor is an in process CardProcessor for development. Most
// confirmations succeed; the rest fail with one of the Refusal reasons.
// Intents expire after SandboxIntentTTL.
type SandboxProcessor struct {
	status     GetResponseStatus
	ttl        time.Duration
	maxIntents int
	now        func() time.Time

	mu      sync.Mutex
	intents map[string]sandboxIntent
}

func NewSandboxProcessor(s GetResponseStatus) *SandboxProcessor {
	return &SandboxProcessor{
		status:     s,
		ttl:        SandboxIntentTTL,
		maxIntents: SandboxMaxIntents,
		now:        time.Now,
		intents:    make(map[string]sandboxIntent),
	}
}

// Len reports how many intents are held.
func (p *SandboxProcessor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.intents)
}

// sweepLocked drops expired intents. Callers hold p.mu.
func (p *SandboxProcessor) sweepLocked(now time.Time) {
	for id, held := range p.intents {
		if now.Sub(held.createdAt) >= p.ttl {
			delete(p.intents, id)
		}
	}
}

func (p *SandboxProcessor) CreateIntent(_ context.Context, order domain.Order, _ string) (*Intent, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}

	id := "pi_sandbox_" + uuid.NewString()
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString(),
		Status:       "requires_payment_method",
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.sweepLocked(now)
	if len(p.intents) >= p.maxIntents {
		return nil, &BackendError{StatusCode: http.StatusServiceUnavailable, Message: MessageCardUnavailable}
	}
	p.intents[id] = sandboxIntent{intent: intent, createdAt: now}

	out := *intent
	return &out, nil
}

func (p *SandboxProcessor) ConfirmIntent(ctx context.Context, intentID string, details domain.CardDetails, _ string) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held, ok := p.intents[intentID]
	if ok && p.now().Sub(held.createdAt) >= p.ttl {
		delete(p.intents, intentID)
		ok = false
	}
	if !ok {
		return nil, &BackendError{StatusCode: http.StatusNotFound, Message: "Payment intent not found"}
	}
	intent := held.intent
	if intent.Status == IntentStatusSucceeded {
		out := *intent
		return &out, nil
	}
	if details.PaymentMethodID == "" {
		return nil, badRequest(MessageCardDetailsMissing)
	}

	succeeded, refusal := p.status.GetStatus()
	if !succeeded {
		intent.Status = "requires_payment_method"
		return nil, &BackendError{StatusCode: http.StatusPaymentRequired, Message: refusal.Message()}
	}

	intent.Status = IntentStatusSucceeded
	out := *intent
	return &out, nil
}
