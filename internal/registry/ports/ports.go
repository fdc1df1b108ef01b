// Package ports defines the provider adapter contract the registry client
// drives. One adapter exists per external registry provider; the client is
// agnostic to transport.
package ports

import (
	"context"
	"errors"
)

// ProviderAdapter fetches one raw vehicle record by registration number.
// Implementations must wrap network and timeout failures with Transient so the
// client knows the call may be retried.
type ProviderAdapter interface {
	// Tag identifies the provider's field dialect (see internal/normalizer).
	Tag() string
	// Fetch returns the provider's raw payload for a registration number.
	Fetch(ctx context.Context, registrationNumber string) (map[string]any, error)
}

// TransientError marks a failure as retryable (network, timeout, 5xx).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
