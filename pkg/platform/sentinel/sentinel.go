// Package sentinel declares the shared store-level errors. Stores return these
// (wrapped or bare) and services translate them into coded domain errors; the
// HTTP layer never sees them directly.
package sentinel

import "errors"

var (
	// ErrNotFound is returned when the requested row or key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("conflict")
	// ErrExpired is returned when a cached record has passed its TTL.
	ErrExpired = errors.New("expired")
	// ErrInvalidState is returned when the entity cannot accept the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable is returned when a backing resource is temporarily down.
	ErrUnavailable = errors.New("unavailable")
)
