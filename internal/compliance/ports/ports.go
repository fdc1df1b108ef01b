// Package ports defines the store contracts the compliance engine requires of
// durable persistence. Implementations live under internal/compliance/store.
package ports

import (
	"context"
	"time"

	"fleetgate/internal/domain"
)

// DecisionStore is the compliance-decision cache: one row per
// (registration, operator) pair, overwritten on each re-verification.
// Upsert must be atomic; concurrent re-verification of the same vehicle must
// not produce a torn row.
type DecisionStore interface {
	Upsert(ctx context.Context, decision domain.ComplianceDecision) error
	Get(ctx context.Context, registrationNumber, operatorID string) (*domain.ComplianceDecision, error)
	// FindByFingerprint returns a cached decision for a different
	// (registration, operator) pair sharing the chassis or engine hash.
	// sentinel.ErrNotFound when no collision exists.
	FindByFingerprint(ctx context.Context, chassisHash, engineHash, excludeRC, excludeOperator string) (*domain.ComplianceDecision, error)
}

// SnapshotStore is the append-only log of raw provider responses, one row per
// network attempt, kept for audit and provider mismatch comparison.
type SnapshotStore interface {
	Append(ctx context.Context, registrationNumber string, resp domain.ProviderResponse) error
	// LatestSuccessFromOtherProvider returns the most recent successful
	// response for the registration number from any provider other than
	// excludeProvider. sentinel.ErrNotFound when none exists.
	LatestSuccessFromOtherProvider(ctx context.Context, registrationNumber, excludeProvider string) (*domain.ProviderResponse, error)
}

// VehicleContext is the operational state the decision engine needs beyond
// what the registry reports: telemetry freshness and trailer pairing.
type VehicleContext struct {
	GPSLastPing     *time.Time
	IsTrailer       bool
	LinkedTractorRC string
}

// VehicleContextStore resolves operational context for a fleet vehicle.
// Unknown vehicles return a zero VehicleContext, not an error; a vehicle the
// fleet registry has never seen simply has no GPS ping and no links.
type VehicleContextStore interface {
	VehicleContext(ctx context.Context, registrationNumber, operatorID string) (VehicleContext, error)
}

// OperatorStore answers quota questions about an operator's fleet.
type OperatorStore interface {
	ActiveVehicleCount(ctx context.Context, operatorID string) (int, error)
}

// Clock is injectable time for deterministic expiry and staleness tests.
type Clock func() time.Time
