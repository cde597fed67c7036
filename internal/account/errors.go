package account

import (
	"errors"
	"fmt"
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Conflict errors, both satisfy IsConflict.
var (
	ErrEmailRegistered = &conflictError{msg: "email already registered"}
	ErrEmailInUse      = &conflictError{msg: "email already in use"}
)

type conflictError struct {
	msg string
}

func (e *conflictError) Error() string {
	return e.msg
}

// IsConflict reports whether err is a uniqueness conflict on the email address.
func IsConflict(err error) bool {
	var ce *conflictError
	return errors.As(err, &ce)
}

// ValidationError reports malformed user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
