package domain

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrUnauthorized       = errors.New("access forbidden")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidInput    = errors.New("invalid input")
)
