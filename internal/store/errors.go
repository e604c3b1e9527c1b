// Package store holds the persistence layer: the report repository, the
// moderation state machine, the verified-corpus query scope, the purchase
// token manager and the system settings table.
//
// The sentinel errors below are the failure taxonomy shared with the HTTP
// layer. Handlers translate them into status codes; expected rejections
// (validation, not found, conflict) are values, never panics.
package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no report, purchase or credential pair
// matches. Credential lookups never reveal which half was wrong.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned for invalid state transitions, such as deciding a
// report that already left the pending state, or confirming the same payment
// reference twice. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller's role or ownership does not
// match the resource. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrExpired is returned for a purchase token past its validity window.
// Handlers translate this into HTTP 410.
var ErrExpired = errors.New("expired")

// ErrUnavailable wraps failures of external collaborators (payment
// processor unreachable). Handlers translate this into HTTP 502.
var ErrUnavailable = errors.New("unavailable")

// ValidationError reports malformed or out-of-range input, naming the
// offending field.
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

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
