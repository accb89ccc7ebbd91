package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	// Refresh-path failures. They render as bare statuses.
	ErrRefreshTokenMissing  = errors.New("refresh token missing")
	ErrRefreshTokenNotFound = errors.New("refresh token not recognised")
	ErrTokenInvalid         = errors.New("token verification failed")

	ErrForbidden = errors.New("access forbidden")
)

// ValidationError reports field-level problems with user input or store
// constraints (e.g. a duplicate email).
type ValidationError struct {
	Details map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Details: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for f, msg := range e.Details {
		fields = append(fields, f+": "+msg)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, "; ")
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
