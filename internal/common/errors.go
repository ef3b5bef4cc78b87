// Package common defines shared constants and sentinel errors used across
// client and server layers of Matchpoint. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Session lifecycle errors.
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidSession = errors.New("invalid session")

	// CSRF errors. The wire codes CSRF_MISSING / CSRF_INVALID map onto these.
	ErrCSRFMissing = errors.New("csrf token missing")
	ErrCSRFInvalid = errors.New("csrf token invalid")

	// Transport-level failure on the client side (network error, timeout).
	ErrTransport = errors.New("transport error")
)

// ValidationError carries field-level validation details for a 400 response.
// The form layer surfaces Fields inline next to the offending inputs; it is
// never shown as a global error banner.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
