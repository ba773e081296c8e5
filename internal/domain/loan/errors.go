package loan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("loan request not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrAlreadyDecided    = errors.New("loan request already decided")
)

// ValidationError covers caller mistakes: bad amounts, missing override
// reason, amount over the ceiling. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// EligibilityError is a first-class result, not an exceptional condition: it
// carries every failed rule so the caller can decide whether to seek an
// admin override.
type EligibilityError struct {
	FailedRules   []string
	Messages      []string
	MaxLoanAmount decimal.Decimal
}

func (e *EligibilityError) Error() string {
	return "member not eligible: " + strings.Join(e.FailedRules, ", ")
}

// ConflictError marks a detected duplicate-submission race, either at the
// pre-insert re-check or via the unique (member_id, active) index. Safe to
// retry exactly once.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }
