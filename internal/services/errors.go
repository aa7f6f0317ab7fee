package services

import "errors"

// Business error taxonomy surfaced to handlers. Store-level failures are
// wrapped as ErrInternal so storage detail never reaches clients.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrConflict is reserved for future multi-step operations; toggles are
	// idempotent so nothing currently returns it.
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal error")
)
