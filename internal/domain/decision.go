package domain

import "time"

// DecisionStatus enumerates the possible compliance verdicts.
type DecisionStatus string

const (
	StatusAllowed DecisionStatus = "ALLOWED"
	StatusBlocked DecisionStatus = "BLOCKED"
	StatusPending DecisionStatus = "PENDING"
)

// FleetClass is the coarse axle/tyre size category used for eligibility and
// rate logic.
type FleetClass string

const (
	FleetSXL     FleetClass = "SXL"
	FleetDXL     FleetClass = "DXL"
	FleetMXL     FleetClass = "MXL"
	FleetTXL     FleetClass = "TXL"
	FleetHXL     FleetClass = "HXL"
	FleetTrailer FleetClass = "TRL"
	FleetUnknown FleetClass = ""
)

// BodyCategory groups body-type strings into a small set the pricing and
// matching layers understand.
type BodyCategory string

const (
	BodyContainer BodyCategory = "CONTAINER"
	BodyFlatbed   BodyCategory = "FLATBED"
	BodyLowbed    BodyCategory = "LOWBED"
	BodySkeletal  BodyCategory = "SKELETAL"
	BodyOpen      BodyCategory = "OPEN"
)

// ClassificationResult is derived purely from a VehicleSnapshot. It is
// recomputed on every check and never persisted on its own.
type ClassificationResult struct {
	Classification FleetClass
	BodyCategory   BodyCategory
	Blocked        bool
	BlockReasons   []string
	Confidence     float64
}

// InferenceMethod tags how a body length estimate was produced.
type InferenceMethod string

const (
	InferenceOEMLookup InferenceMethod = "oem_lookup"
	InferenceWheelbase InferenceMethod = "wheelbase"
	InferenceWeight    InferenceMethod = "weight_band"
	InferenceNone      InferenceMethod = "none"
)

// InferenceResult carries a confidence-scored body length estimate. Length is
// in feet; zero means the cascade could not infer one.
type InferenceResult struct {
	BodyLengthFt float64
	Confidence   float64
	Method       InferenceMethod
	ModelRef     string
	Notes        string
}

// VerificationMeta records which provider attempt backed a decision.
type VerificationMeta struct {
	Provider      string
	TransactionID string
	Timestamp     time.Time
}

// ComplianceDecision is the authoritative cached verdict for one
// (registration, operator) pair. It is overwritten on each re-verification.
type ComplianceDecision struct {
	RegistrationNumber string
	OperatorID         string
	Status             DecisionStatus
	ReasonCodes        []string
	Classification     FleetClass
	BodyCategory       BodyCategory
	BodyLengthFt       float64
	GVWKg              float64
	TyreCount          int
	AxleCount          int
	ChassisHash        string
	EngineHash         string
	CacheExpiresAt     time.Time
	LastVerification   VerificationMeta
}

// Expired reports whether the cached verdict needs re-verification.
func (d ComplianceDecision) Expired(now time.Time) bool {
	return !d.CacheExpiresAt.After(now)
}

// Biddable is the consumer-facing gate: only a fresh ALLOWED verdict lets a
// vehicle take part in bidding.
func (d ComplianceDecision) Biddable(now time.Time) bool {
	return d.Status == StatusAllowed && !d.Expired(now)
}
