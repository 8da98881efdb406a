package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle             CheckoutStatus = "IDLE"
	CheckoutStatusAddressResolving CheckoutStatus = "ADDRESS_RESOLVING"
	CheckoutStatusReady            CheckoutStatus = "READY"
	CheckoutStatusSubmitting       CheckoutStatus = "SUBMITTING"
	CheckoutStatusCompleted        CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed           CheckoutStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible. FAILED is
// not terminal: a failed submission may be retried without re-entering data.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:             {CheckoutStatusAddressResolving},
	CheckoutStatusAddressResolving: {CheckoutStatusReady, CheckoutStatusFailed},
	CheckoutStatusReady:            {CheckoutStatusSubmitting},
	CheckoutStatusSubmitting:       {CheckoutStatusCompleted, CheckoutStatusFailed},
	CheckoutStatusFailed:           {CheckoutStatusReady, CheckoutStatusSubmitting},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
