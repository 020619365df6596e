package procurement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

var (
	// ErrInvalidState indicates the record's status forbids the action.
	ErrInvalidState = fmt.Errorf("procurement: invalid state: %w", httpx.ErrConflict)
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = fmt.Errorf("procurement: not found: %w", httpx.ErrNotFound)
	// ErrValidation indicates invalid input detected before any backend call.
	ErrValidation = fmt.Errorf("procurement: validation failed: %w", httpx.ErrValidation)
	// ErrDuplicateItem indicates a (product, variation) pair already on the request.
	ErrDuplicateItem = fmt.Errorf("procurement: duplicate line item: %w", httpx.ErrDuplicate)
	// ErrIncompleteTransition indicates a multi-step transition stopped after its first step.
	ErrIncompleteTransition = fmt.Errorf("procurement: transition incomplete: %w", httpx.ErrIncomplete)
	// ErrOverpaymentUnconfirmed indicates the payment exceeds the balance and was not acknowledged.
	ErrOverpaymentUnconfirmed = fmt.Errorf("procurement: overpayment requires confirmation: %w", httpx.ErrConflict)
)

// ValidationError lists every problem found in one submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "procurement: validation failed: " + strings.Join(e.Problems, "; ")
}

// Unwrap exposes ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// UserMessage implements httpx.UserMessager.
func (e *ValidationError) UserMessage() string { return strings.Join(e.Problems, "; ") }

// ResponseData implements httpx.DataCarrier.
func (e *ValidationError) ResponseData() any {
	return map[string]any{"problems": e.Problems}
}

func invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// StateError reports an action refused by the record's current status.
type StateError struct {
	Entity        string
	ControlNumber string
	Status        string
	Action        string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("procurement: cannot %s %s %s in status %s", e.Action, e.Entity, e.ControlNumber, e.Status)
}

// Unwrap exposes ErrInvalidState.
func (e *StateError) Unwrap() error { return ErrInvalidState }

// UserMessage implements httpx.UserMessager.
func (e *StateError) UserMessage() string {
	return fmt.Sprintf("Cannot %s %s %s: status is %s", e.Action, e.Entity, e.ControlNumber, e.Status)
}

// DuplicateItemError names the line item already present.
type DuplicateItemError struct {
	ProductID   int64
	VariationID *int64
	ProductName string
}

func (e *DuplicateItemError) Error() string {
	return "procurement: duplicate line item: " + e.label()
}

// Unwrap exposes ErrDuplicateItem.
func (e *DuplicateItemError) Unwrap() error { return ErrDuplicateItem }

// UserMessage implements httpx.UserMessager.
func (e *DuplicateItemError) UserMessage() string {
	return e.label() + " is already on this request"
}

func (e *DuplicateItemError) label() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	if e.VariationID != nil {
		return fmt.Sprintf("%s (variation %d)", name, *e.VariationID)
	}
	return name
}

// PartialTransitionError reports a multi-step transition where the first step
// landed on the backend and a later step failed. Nothing is rolled back.
type PartialTransitionError struct {
	Transition string
	Completed  string
	Failed     string
	Record     any
	Err        error
}

func (e *PartialTransitionError) Error() string {
	return fmt.Sprintf("procurement: %s incomplete: %s done, %s failed: %v", e.Transition, e.Completed, e.Failed, e.Err)
}

// Unwrap exposes only ErrIncompleteTransition so the response is always 502.
func (e *PartialTransitionError) Unwrap() error { return ErrIncompleteTransition }

// Cause returns the failure of the step that did not complete.
func (e *PartialTransitionError) Cause() error { return e.Err }

// UserMessage implements httpx.UserMessager.
func (e *PartialTransitionError) UserMessage() string {
	return fmt.Sprintf("%s completed but %s failed (%s); the records need manual follow-up", e.Completed, e.Failed, httpx.MessageFor(e.Err))
}

// ResponseData implements httpx.DataCarrier.
func (e *PartialTransitionError) ResponseData() any { return e.Record }

// OverpaymentError asks the caller to acknowledge a payment above the balance.
type OverpaymentError struct {
	Check PaymentCheck
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("procurement: payment brings total to %s%%", e.Check.NewTotalPercent.StringFixed(2))
}

// Unwrap exposes ErrOverpaymentUnconfirmed.
func (e *OverpaymentError) Unwrap() error { return ErrOverpaymentUnconfirmed }

// UserMessage implements httpx.UserMessager.
func (e *OverpaymentError) UserMessage() string {
	return fmt.Sprintf("This payment brings the total to %s%% and overpays by %s. Confirm to continue.",
		e.Check.NewTotalPercent.StringFixed(2), FormatAmount(e.Check.OverpaymentAmount))
}

// ResponseData implements httpx.DataCarrier.
func (e *OverpaymentError) ResponseData() any {
	return map[string]any{"confirmationRequired": true, "check": e.Check}
}

// IsPartial reports whether err is a partially applied transition.
func IsPartial(err error) bool {
	var partial *PartialTransitionError
	return errors.As(err, &partial)
}
