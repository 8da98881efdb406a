package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionInFlight   = errors.New("an order submission is already in progress")
	ErrPointsExceedCap      = errors.New("requested points exceed the redeemable cap")
	ErrInvalidPoints        = errors.New("points must be zero or positive")
	ErrUnknownAddress       = errors.New("address is not among the fetched candidates")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	IllegalTransitionError  = errors.New("illegal transition of checkout status")
)

// ValidationError is a field-level failure: the submission collaborator was
// never called and the attempt stays READY.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// SubmitError wraps a collaborator failure. Retryable submissions leave the
// cart untouched so the customer loses no data.
type SubmitError struct {
	Err       error
	Retryable bool
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
