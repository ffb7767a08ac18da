// Package common defines shared constants and sentinel errors used across
// the server and client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("invalid credentials")

	// Validation errors. ErrDuplicateEmail is also an ErrInvalidEmail.
	ErrorValidation      = errors.New("validation error")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrDuplicateEmail    = fmt.Errorf("%w: already registered", ErrInvalidEmail)
	ErrWeakPassword      = errors.New("password too short")
	ErrReadOnlyField     = errors.New("field is read-only")

	// Token lifecycle errors.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
