// AngelaMos | 2026
// errors.go

package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEmail covers both "no such user" and "deactivated
	// account" at login so callers cannot enumerate accounts.
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role for this account")
	ErrEmailExists        = errors.New("email exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidRefresh     = errors.New("invalid refresh token")

	ErrRegistrationFailed = errors.New("registration failed due to server error")
	ErrLoginFailed        = errors.New("login failed. Please try again.")
	ErrRefreshFailed      = errors.New("token refresh failed")
)

// ValidationError carries the full field→messages map collected by the
// credential validator. It is always recoverable by fixing input and
// never wraps a lower-level error.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, messages := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func NewValidationError(fields Errors) *ValidationError {
	return &ValidationError{Fields: fields}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
