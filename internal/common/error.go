// Package common defines shared constants and sentinel errors used across
// the application layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Login failure. Deliberately covers both "no such email" and
	// "wrong password" so callers cannot enumerate accounts.
	ErrorInvalidCredentials = errors.New("invalid email or password")

	// Input-shape errors (missing or malformed request fields).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")

	// Directory errors (external user listing unreachable or malformed).
	ErrorUpstream = errors.New("upstream error")
)
