// Package ports defines what the batch worker needs from the fleet registry:
// the set of vehicles due for (re)verification.
package ports

import (
	"context"
	"time"
)

// Candidate is one vehicle the batch should verify.
type Candidate struct {
	RegistrationNumber string
	OperatorID         string
}

// VehicleSource selects the vehicles whose cached decision is missing or
// expired as of now.
type VehicleSource interface {
	DueForVerification(ctx context.Context, now time.Time) ([]Candidate, error)
}
