// Package ports defines the persistence contract for fleet vehicle records
// and the trailer/tractor link fields they carry.
package ports

import (
	"context"
	"time"

	"fleetgate/internal/domain"
)

// LinkUpdate sets one vehicle's link fields. A nil pointer leaves the field
// untouched; an empty string clears it.
type LinkUpdate struct {
	RegistrationNumber string
	TractorRC          *string
	TrailerRC          *string
}

// VehicleStore persists fleet vehicle records. UpdateLinks must apply every
// update atomically: either all rows change or none do.
type VehicleStore interface {
	Get(ctx context.Context, registrationNumber string) (*domain.FleetVehicle, error)
	Upsert(ctx context.Context, vehicle domain.FleetVehicle) error
	UpdateLinks(ctx context.Context, updates []LinkUpdate, at time.Time) error
	RecordGPSPing(ctx context.Context, registrationNumber string, at time.Time) error
}
