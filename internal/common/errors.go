// Package common defines shared constants and sentinel errors used across
// client and server layers of eBet. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Input rejected before any auth logic runs.
	ErrValidation = errors.New("validation error")

	// Signin errors. Unknown identifier and wrong password both surface as
	// ErrInvalidCredentials outside the server.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("credential store unavailable")

	// Token verification errors.
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")

	// Gate errors.
	ErrMalformedHeader                = errors.New("malformed authorization header")
	ErrAccountNotFoundAfterTokenValid = errors.New("account referenced by valid token not found")

	// The caller is authenticated but may not act on the target account.
	ErrForbidden = errors.New("forbidden")

	// Service-level catch-all.
	ErrorInternal = errors.New("internal error")
)
