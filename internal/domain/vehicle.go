package domain

import "time"

// VehicleSnapshot is the canonical point-in-time vehicle record produced by the
// normalizer from a raw provider payload. Snapshots are immutable: a fresh fetch
// supersedes the previous snapshot, it never edits it.
type VehicleSnapshot struct {
	RegistrationNumber string
	StateCode          string
	ChassisNumber      string
	EngineNumber       string
	BodyCode           string
	BodyTypeString     string
	Maker              string
	Model              string
	GVWKg              float64
	UnladenWeightKg    float64
	WheelbaseMM        float64
	TyreCount          int
	AxleCount          int
	EmissionCode       string
	PermitType         string
	PermitExpiry       string // provider-formatted date, may be blank
	OwnerName          string
	RegistrationDate   string
	VehicleCategory    string
	FuelType           string

	Provider  string
	FetchedAt time.Time
}

// ProviderResponse records one network attempt against a registry provider.
// Append-only: every attempt is independently loggable for audit.
type ProviderResponse struct {
	Provider      string
	Success       bool
	RawPayload    map[string]any
	TransactionID string
	Timestamp     time.Time
	Error         string
}
