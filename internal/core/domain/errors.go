package domain

import "errors"

// Account lifecycle errors.
var (
	ErrValidation         = errors.New("missing or invalid fields")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSkaterNotFound     = errors.New("skater not found")
	ErrDeleteRejected     = errors.New("skater not found or password mismatch")
	ErrStorage            = errors.New("photo storage failure")
)

// Authentication and authorization errors.
var (
	ErrUnauthenticated       = errors.New("missing credentials")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrForbidden             = errors.New("access forbidden")
)
