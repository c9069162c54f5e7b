package ledger

import (
	"errors"
	"fmt"
)

// Validation causes. Every rejected append wraps exactly one of these.
var (
	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidDate is returned when a date is missing or not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidCategory is returned when an expense category is not in the enum.
	ErrInvalidCategory = errors.New("unknown expense category")

	// ErrInvalidBranch is returned when a branch-scoped event references a
	// branch that does not exist.
	ErrInvalidBranch = errors.New("branch does not exist")

	// ErrInvalidKind is returned when an event kind or direction is not recognized.
	ErrInvalidKind = errors.New("unknown event kind")

	// ErrMissingField is returned when a required field is empty.
	ErrMissingField = errors.New("required field missing")
)

// Invariant violations. These reflect current ledger truth, not transient
// faults; callers should re-display state rather than retry blindly.
var (
	// ErrInsufficientFunds is returned when a withdrawal exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrShareOverflow is returned when adding a partner share would push the
	// total above 100%.
	ErrShareOverflow = errors.New("partner shares exceed 100%")
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError describes a rejected field. It wraps one of the validation
// cause sentinels so callers can dispatch with errors.Is.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func invalid(field string, reason error) error {
	return &ValidationError{Field: field, Reason: reason}
}
