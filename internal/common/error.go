// Package common defines shared constants and sentinel errors used across
// the client and server layers of bankauth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorInvalidInput     = errors.New("invalid input")
	ErrorUnauthorized     = errors.New("invalid credentials")
	ErrorConflict         = errors.New("conflict")
	ErrorStoreUnavailable = errors.New("credential store unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// InvalidInputError reports a missing or blank required field, or, when
// Reason is set, a field that breaks the named rule.
// It matches ErrorInvalidInput.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrorInvalidInput
}

// ConflictError reports a uniqueness collision on registration.
// Field is "email" or "username". It matches ErrorConflict.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case FieldEmail:
		return "email already registered"
	case FieldUsername:
		return "username already taken"
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrorConflict
}
