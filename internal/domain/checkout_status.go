package domain

// CheckoutStatus tracks a single checkout attempt.
type CheckoutStatus string

const (
	CheckoutStatusInitiated        CheckoutStatus = "INITIATED"
	CheckoutStatusPaymentPending   CheckoutStatus = "PAYMENT_PENDING"
	CheckoutStatusAwaitingApproval CheckoutStatus = "AWAITING_APPROVAL"
	CheckoutStatusCompleted        CheckoutStatus = "COMPLETED"
	CheckoutStatusCancelled        CheckoutStatus = "CANCELLED"
	CheckoutStatusFailed           CheckoutStatus = "FAILED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusInitiated:        {CheckoutStatusPaymentPending, CheckoutStatusFailed},
	CheckoutStatusPaymentPending:   {CheckoutStatusAwaitingApproval, CheckoutStatusCompleted, CheckoutStatusFailed},
	CheckoutStatusAwaitingApproval: {CheckoutStatusCompleted, CheckoutStatusCancelled, CheckoutStatusFailed},
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusFailed || s == CheckoutStatusCancelled
}

func (s CheckoutStatus) CanTransitionTo(next CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
