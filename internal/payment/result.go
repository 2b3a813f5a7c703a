package payment

// Result is the single shape every payment adapter reports back in.
type Result struct {
	OK          bool
	ReferenceID string
	Message     string

	// ApprovalURL is set when the customer must approve the payment elsewhere.
	ApprovalURL string
}

func Success(referenceID string) Result {
	return Result{OK: true, ReferenceID: referenceID}
}

func Failure(message string) Result {
	return Result{Message: message}
}
