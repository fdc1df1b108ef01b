package domain

import "time"

// VehicleStatus is the fleet-record lifecycle state, owned by the onboarding
// flow. The core only reads it for the bidding gate.
type VehicleStatus string

const (
	VehicleActive   VehicleStatus = "ACTIVE"
	VehicleInactive VehicleStatus = "INACTIVE"
)

// FleetVehicle is the operator-owned vehicle record carrying the trailer and
// tractor link fields. The forward link on the trailer and the backward link
// on the tractor are always written together.
type FleetVehicle struct {
	RegistrationNumber string
	OperatorID         string
	IsTrailer          bool
	IsTractor          bool
	LinkedTractorRC    string // set on trailers
	LinkedTrailerRC    string // set on tractors
	Status             VehicleStatus
	GPSLastPing        *time.Time
	UpdatedAt          time.Time
}
