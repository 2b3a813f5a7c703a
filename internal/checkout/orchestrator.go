package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/gizmo_store/internal/cart"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/events"
	"github.com/fjod/gizmo_store/internal/logger"
	"github.com/fjod/gizmo_store/internal/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultApprovalTTL bounds how long a PayPal approval may hold a session.
const DefaultApprovalTTL = 30 * time.Minute

type CashPayer interface {
	PlaceOrder(ctx context.Context, order domain.Order) payment.Result
}

type PayPalPayer interface {
	CreateOrder(ctx context.Context, order domain.Order) payment.Result
	CaptureOrder(ctx context.Context, orderID string) payment.Result
}

type CardPayer interface {
	Pay(ctx context.Context, order domain.Order, details domain.CardDetails) payment.Result
}

// Cart is the part of a cart session the checkout needs.
type Cart interface {
	ID() string
	Snapshot() domain.CartState
	RemovePaid(paid []domain.CartItem) cart.View
}

type Outcome struct {
	CheckoutID  string                `json:"checkoutId"`
	Status      domain.CheckoutStatus `json:"status"`
	Method      string                `json:"paymentMethod"`
	ReferenceID string                `json:"referenceId,omitempty"`
	ApprovalURL string                `json:"approvalUrl,omitempty"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
}

type StatusInfo struct {
	CheckoutID string                `json:"checkoutId,omitempty"`
	Status     domain.CheckoutStatus `json:"status,omitempty"`
	InFlight   bool                  `json:"inFlight"`
}

type Options struct {
	ApprovalTTL time.Duration
}

type attempt struct {
	id        string
	method    string
	status    domain.CheckoutStatus
	order     domain.Order
	reference string
	expiresAt time.Time
	held      bool
	resolving bool
}

// Orchestrator runs checkout attempts. At most one attempt per session holds
// the guard at a time; a PayPal attempt keeps holding it while the customer
// approves the payment.
type Orchestrator struct {
	cash      CashPayer
	paypal    PayPalPayer
	card      CardPayer
	publisher events.Publisher
	logger    *zap.Logger

	approvalTTL time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.Mutex
	attempts map[string]*attempt // latest attempt per session
}

func NewOrchestrator(cash CashPayer, paypal PayPalPayer, card CardPayer, publisher events.Publisher, opts Options, logger *zap.Logger) *Orchestrator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.ApprovalTTL <= 0 {
		opts.ApprovalTTL = DefaultApprovalTTL
	}
	return &Orchestrator{
		cash:        cash,
		paypal:      paypal,
		card:        card,
		publisher:   publisher,
		logger:      logger,
		approvalTTL: opts.ApprovalTTL,
		now:         time.Now,
		newID:       uuid.NewString,
		attempts:    make(map[string]*attempt),
	}
}

// Submit validates the form and the cart, then pays with the selected
// backend. The cart is cleared only after a successful payment. A PayPal
// submission returns AWAITING_APPROVAL with the approval URL and is finished
// by ResolvePayPal.
func (o *Orchestrator) Submit(ctx context.Context, c Cart, form domain.CheckoutForm) (Outcome, error) {
	customer, sel, err := Validate(form)
	if err != nil {
		return Outcome{}, err
	}

	snapshot := c.Snapshot()
	if snapshot.IsEmpty() {
		return Outcome{}, &ValidationError{Field: "cart", Message: MessageEmptyCart, Err: ErrEmptyCart}
	}
	total := snapshot.Total()
	if !total.IsPositive() {
		return Outcome{}, &ValidationError{Field: "totalAmount", Message: MessageInvalidAmount, Err: ErrInvalidAmount}
	}

	order := domain.Order{
		Items:        snapshot.Items,
		CustomerInfo: customer,
		TotalAmount:  total,
	}

	a, err := o.begin(c.ID(), sel.Method(), order)
	if err != nil {
		return Outcome{}, err
	}

	log := logger.FromContext(ctx, o.logger).With(
		zap.String("checkout_id", a.id),
		zap.String("payment_method", a.method))
	log.Info("checkout started", zap.String("total", total.StringFixed(2)))

	o.transition(a, domain.CheckoutStatusPaymentPending)

	// A charge accepted upstream must be recorded even if the client goes
	// away; the adapters bound the call with their own timeouts.
	payCtx := context.WithoutCancel(ctx)

	switch s := sel.(type) {
	case domain.CashSelection:
		defer o.release(a)
		return o.finish(ctx, c, a, o.cash.PlaceOrder(payCtx, order), log)

	case domain.CardSelection:
		defer o.release(a)
		return o.finish(ctx, c, a, o.card.Pay(payCtx, order, s.Details), log)

	case domain.PayPalSelection:
		res := o.paypal.CreateOrder(payCtx, order)
		if !res.OK {
			defer o.release(a)
			return o.fail(a, res, log)
		}

		o.mu.Lock()
		a.reference = res.ReferenceID
		a.expiresAt = o.now().Add(o.approvalTTL)
		o.mu.Unlock()
		o.transition(a, domain.CheckoutStatusAwaitingApproval)

		log.Info("awaiting paypal approval", zap.String("paypal_order_id", res.ReferenceID))
		return Outcome{
			CheckoutID:  a.id,
			Status:      domain.CheckoutStatusAwaitingApproval,
			Method:      a.method,
			ReferenceID: res.ReferenceID,
			ApprovalURL: res.ApprovalURL,
			TotalAmount: total,
		}, nil
	}

	// unreachable while PaymentSelection stays sealed
	o.transition(a, domain.CheckoutStatusFailed)
	o.release(a)
	return Outcome{}, invalid("paymentMethod", MessagePaymentMethodRequired)
}

// ResolvePayPal finishes the attempt waiting on orderID. A declined approval
// cancels the attempt and leaves the cart as it was.
func (o *Orchestrator) ResolvePayPal(ctx context.Context, c Cart, orderID string, approved bool) (Outcome, error) {
	a, err := o.claimApproval(c.ID(), orderID)
	if err != nil {
		return Outcome{}, err
	}
	defer o.release(a)

	log := logger.FromContext(ctx, o.logger).With(
		zap.String("checkout_id", a.id),
		zap.String("paypal_order_id", orderID))

	if !approved {
		o.transition(a, domain.CheckoutStatusCancelled)
		log.Info("paypal payment cancelled by customer")
		return o.outcome(a, orderID), nil
	}

	return o.finish(ctx, c, a, o.paypal.CaptureOrder(context.WithoutCancel(ctx), orderID), log)
}

// Status reports the latest attempt of a session.
func (o *Orchestrator) Status(sessionID string) StatusInfo {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.attempts[sessionID]
	if !ok {
		return StatusInfo{}
	}
	o.expireLocked(a)
	return StatusInfo{CheckoutID: a.id, Status: a.status, InFlight: a.held}
}

func (o *Orchestrator) InFlight(sessionID string) bool {
	return o.Status(sessionID).InFlight
}

// Forget drops the record of a session that is no longer in use. An attempt
// that still holds the guard is kept.
func (o *Orchestrator) Forget(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if a, ok := o.attempts[sessionID]; ok {
		o.expireLocked(a)
		if !a.held {
			delete(o.attempts, sessionID)
		}
	}
}

func (o *Orchestrator) begin(sessionID, method string, order domain.Order) (*attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, ok := o.attempts[sessionID]; ok {
		o.expireLocked(prev)
		if prev.held {
			return nil, ErrSubmissionInProgress
		}
	}

	a := &attempt{
		id:     o.newID(),
		method: method,
		status: domain.CheckoutStatusInitiated,
		order:  order,
		held:   true,
	}
	o.attempts[sessionID] = a
	return a, nil
}

func (o *Orchestrator) claimApproval(sessionID, orderID string) (*attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.attempts[sessionID]
	if !ok {
		return nil, ErrNoPendingApproval
	}
	o.expireLocked(a)
	if !a.held || a.resolving || a.status != domain.CheckoutStatusAwaitingApproval || a.reference != orderID {
		return nil, ErrNoPendingApproval
	}
	a.resolving = true
	return a, nil
}

// expireLocked cancels an approval nobody resolved in time.
func (o *Orchestrator) expireLocked(a *attempt) {
	if !a.held || a.resolving || a.status != domain.CheckoutStatusAwaitingApproval {
		return
	}
	if o.now().After(a.expiresAt) {
		a.status = domain.CheckoutStatusCancelled
		a.held = false
		o.logger.Info("paypal approval expired", zap.String("checkout_id", a.id))
	}
}

func (o *Orchestrator) finish(ctx context.Context, c Cart, a *attempt, res payment.Result, log *zap.Logger) (Outcome, error) {
	if !res.OK {
		return o.fail(a, res, log)
	}

	c.RemovePaid(a.order.Items)
	o.transition(a, domain.CheckoutStatusCompleted)
	log.Info("checkout completed", zap.String("reference_id", res.ReferenceID))

	o.publish(ctx, c.ID(), a, res.ReferenceID, log)
	return o.outcome(a, res.ReferenceID), nil
}

func (o *Orchestrator) fail(a *attempt, res payment.Result, log *zap.Logger) (Outcome, error) {
	o.transition(a, domain.CheckoutStatusFailed)
	log.Warn("checkout payment failed", zap.String("reason", res.Message))
	return o.outcome(a, res.ReferenceID), &AdapterError{Method: a.method, Message: res.Message}
}

func (o *Orchestrator) publish(ctx context.Context, sessionID string, a *attempt, reference string, log *zap.Logger) {
	event := events.CheckoutCompleted{
		CheckoutID:    a.id,
		SessionID:     sessionID,
		PaymentMethod: a.method,
		ReferenceID:   reference,
		Customer:      a.order.CustomerInfo,
		Items:         a.order.Items,
		TotalAmount:   a.order.TotalAmount,
		Currency:      domain.CurrencyUSD,
		CompletedAt:   o.now().UTC(),
	}
	// the payment is already taken; a lost event must not fail the checkout
	if err := o.publisher.PublishCheckoutCompleted(context.WithoutCancel(ctx), event); err != nil {
		log.Error("failed to publish checkout event", zap.Error(err))
	}
}

func (o *Orchestrator) transition(a *attempt, next domain.CheckoutStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !a.status.CanTransitionTo(next) {
		o.logger.Error("illegal checkout transition",
			zap.String("checkout_id", a.id),
			zap.Stringer("from", a.status),
			zap.Stringer("to", next))
		return
	}
	a.status = next
}

func (o *Orchestrator) release(a *attempt) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a.held = false
	a.resolving = false
}

func (o *Orchestrator) outcome(a *attempt, reference string) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Outcome{
		CheckoutID:  a.id,
		Status:      a.status,
		Method:      a.method,
		ReferenceID: reference,
		TotalAmount: a.order.TotalAmount,
	}
}
