package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is required to exist and does not.
	ErrNotFound = errors.New("entity was not found")

	// ErrAccessDenied is returned when the acting account is not authorized for the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrTokenMismatch is returned when a supplied verification or login token does not
	// match the token currently stored on the account.
	ErrTokenMismatch = errors.New("token mismatch")

	// ErrCooldownActive is returned when a time-gated operation is attempted before its
	// cooldown window has elapsed.
	ErrCooldownActive = errors.New("cooldown active")

	// ErrInvalidStateTransition is returned when a lifecycle operation is attempted from a
	// state that does not admit it. It indicates a bypassed guard or a lost race and is
	// never retried silently.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotificationFailed signals that an outbound mail could not be handed to the mail
	// queue. The state mutation that triggered the mail is not rolled back.
	ErrNotificationFailed = errors.New("notification failed")
)

// ValidationError reports malformed or non-unique user input. It is recoverable and is
// surfaced to the caller for re-prompt, distinct from state-transition failures.
type ValidationError struct {
	// Field is the input field the violation refers to.
	Field string

	// Reason is a short human-readable description of the violation.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
