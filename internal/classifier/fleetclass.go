package classifier

import "fleetgate/internal/domain"

// axleTyreKey indexes the fixed fleet-class lookup table.
type axleTyreKey struct {
	axles int
	tyres int
}

// fleetClassTable is the fixed (axle, tyre) → class mapping. Trailer
// configurations (18–22 tyres) that miss this table are matched separately.
var fleetClassTable = map[axleTyreKey]domain.FleetClass{
	{axles: 2, tyres: 6}:  domain.FleetSXL,
	{axles: 3, tyres: 10}: domain.FleetDXL,
	{axles: 4, tyres: 12}: domain.FleetMXL,
	{axles: 5, tyres: 16}: domain.FleetTXL,
	{axles: 6, tyres: 18}: domain.FleetHXL,
}

// classProfile is the per-class sanity envelope cross-checked against the
// snapshot after classification.
type classProfile struct {
	minGVWKg      float64
	maxGVWKg      float64
	expectedTyres int
}

var classProfiles = map[domain.FleetClass]classProfile{
	domain.FleetSXL: {minGVWKg: 7500, maxGVWKg: 19000, expectedTyres: 6},
	domain.FleetDXL: {minGVWKg: 19000, maxGVWKg: 28000, expectedTyres: 10},
	domain.FleetMXL: {minGVWKg: 28000, maxGVWKg: 35500, expectedTyres: 12},
	domain.FleetTXL: {minGVWKg: 35500, maxGVWKg: 43500, expectedTyres: 16},
	domain.FleetHXL: {minGVWKg: 43500, maxGVWKg: 55000, expectedTyres: 18},
}

const (
	trailerTyresMin = 18
	trailerTyresMax = 22
)

const (
	confidenceMatched      = 0.9
	confidenceTrailer      = 0.8
	confidenceUnclassified = 0.3
)
