package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both missing records and records owned by another tenant.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by repositories on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse is returned when a delete is refused because other records still reference the row.
	ErrInUse = errors.New("record still referenced")

	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrCredentialsRequired   = errors.New("email and password required")
	ErrEmailTaken            = errors.New("email already registered")
	ErrWeakPassword          = errors.New("password must be at least 8 characters")
	ErrConfiguration         = errors.New("authentication provider not configured")
	ErrAccessDenied          = errors.New("access denied by provider")
	ErrOAuthAccountNotLinked = errors.New("email already used by another account")
	ErrOAuthCreateAccount    = errors.New("failed to create account")
	ErrSessionRequired       = errors.New("session required")
	// ErrNoTenant means the session user has no business. Callers surface it as not found.
	ErrNoTenant = errors.New("no business for user")

	ErrInvalidTransition = errors.New("invalid quote status transition")
)

// ValidationError carries per-field messages for form input
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
