/*
errors.go - Centralized error types for the attendance & leave ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them) so the API layer can map
  any failure to an HTTP status with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Validation     - missing or malformed input, reported for correction
  2. Balance        - a leave debit would overdraw a balance
  3. Not found      - unknown id (a no-op for deletes, an error elsewhere)
  4. Invalid state  - re-deciding a request that is no longer pending
  5. Auth           - bad credentials or a device bound to someone else

USAGE:
  var balErr *generic.InsufficientBalanceError
  if errors.As(err, &balErr) {
      fmt.Printf("only %s days left\n", balErr.Available)
  }

SEE ALSO:
  - api/handlers.go: statusFor maps these to HTTP codes
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance is returned when a leave debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotFound is returned when a referenced id doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a state transition is not allowed.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrUnauthorized is returned when credentials or a session token are rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDeviceMismatch is returned when an account is bound to another device.
	ErrDeviceMismatch = errors.New("account is bound to another device")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid is shorthand for building a *ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError carries the balance the request ran into,
// so callers can show it.
type InsufficientBalanceError struct {
	UserID    string
	LeaveType string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: available %s, requested %s",
		e.LeaveType, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // e.g. "user", "leave request"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvalidStateError reports the state that blocked the transition.
type InvalidStateError struct {
	ID     string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is already %s", e.ID, e.Status)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidState)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
