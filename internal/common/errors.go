// Package common defines shared constants and sentinel errors used across
// the vidtube server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level error kinds. Every error returned by a service wraps one of them.
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorValidation      = errors.New("validation error")
	ErrorConflict        = errors.New("conflict")
	ErrorInternal        = errors.New("internal error")

	// Token codec errors. Logged, never returned to the caller verbatim.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")

	// Session lifecycle errors.
	ErrRefreshTokenUsed = errors.New("refresh token does not match active session")
)
