// Package common defines shared constants and sentinel errors used across
// the TeenBudget server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Input errors.
	ErrValidation = errors.New("validation error")

	// Account lifecycle errors.
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrNoPendingSignup = errors.New("no pending signup")
	ErrCodeMismatch    = errors.New("verification code mismatch")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrBadCredentials  = errors.New("bad credentials")

	// Auth errors (invalid, forged or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized")

	// Collaborator failures.
	ErrDelivery = errors.New("email delivery failed")
	ErrInternal = errors.New("internal error")
)
