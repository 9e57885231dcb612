package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront
var (
	// Input errors
	ErrMissingField = errors.New("missing required field")
	ErrValidation   = errors.New("validation failed")

	// Account and login errors
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrDuplicateAccount  = errors.New("username or email already registered")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Collaborator errors (remote login API, mail relay, catalog files)
	ErrNetworkFailure    = errors.New("network failure")
	ErrMalformedResponse = errors.New("malformed response")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// ValidationError reports the first form field that failed validation together
// with the message shown to the shopper.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// FieldOf returns the failing field of a ValidationError in err's chain, or "".
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// UserMessage converts an error from any layer into the text shown to the user.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrDuplicateAccount):
		return "This username or email is already registered."
	case errors.Is(err, ErrInvalidCredential):
		return "Invalid username/email or password."
	case errors.Is(err, ErrMissingField):
		return "Please fill in all required fields."
	case errors.Is(err, ErrNetworkFailure), errors.Is(err, ErrMalformedResponse):
		return "Login error, please try again"
	default:
		return "Something went wrong, please try again."
	}
}
