package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorizedTransition is returned when the acting role is not
	// permitted to perform the action from the current status or scope
	ErrUnauthorizedTransition = errors.New("role is not authorized for this transition")

	// ErrInvalidState is returned when the action targets a terminal or
	// mismatched status, including the loser of a concurrent transition race
	ErrInvalidState = errors.New("request status does not permit this action")

	// ErrNotFound is returned when no request exists for the identifier
	ErrNotFound = errors.New("request not found")
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a ValidationError and returns it
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
