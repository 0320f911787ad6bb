// Package common defines shared constants, random helpers and sentinel errors
// used across the signup server and its client. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Precondition violations. These are contract failures of the caller,
	// input shape is expected to be validated upstream.
	ErrMissingField = errors.New("missing required field")

	// Signup token errors.
	ErrInvalidToken        = errors.New("signup token is not valid")
	ErrTokenExpired        = errors.New("signup token is no longer valid")
	ErrTokenSpaceExhausted = errors.New("could not generate a unique signup token")

	// Signup policy errors.
	ErrSignupNotAllowed = errors.New("signup is not allowed for uninvited users")
	ErrMissingTemplate  = errors.New("signup: missing template account")

	// Parameter errors.
	ErrInvalidParameter = errors.New("invalid parameter")

	// Credential errors.
	ErrAccessDenied = errors.New("access denied")

	// Operator access token errors.
	ErrAccessTokenExpired = errors.New("access token expired")
	ErrInvalidAccessToken = errors.New("invalid access token")
)
