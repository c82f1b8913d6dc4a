// internal/models/errors.go
package models

import "errors"

// Request-local failures surfaced directly to clients. Handlers map these
// to HTTP status codes; anything else is a server fault.
var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidSession     = errors.New("invalid session")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoBusinessSelected = errors.New("no business selected")
	ErrNotFound           = errors.New("not found")
	ErrInvalidKind        = errors.New("invalid kind")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrDuplicateEmail     = errors.New("email already registered")
)
