package handler

import (
	"time"

	"fleetgate/internal/domain"
)

// DecisionResponse is the HTTP shape of a compliance verdict.
type DecisionResponse struct {
	RegistrationNumber string               `json:"registration_number"`
	OperatorID         string               `json:"operator_id"`
	Status             string               `json:"status"`
	ReasonCodes        []string             `json:"reason_codes"`
	Classification     string               `json:"classification,omitempty"`
	BodyCategory       string               `json:"body_category,omitempty"`
	BodyLengthFt       float64              `json:"body_length_ft,omitempty"`
	GVWKg              float64              `json:"gvw_kg,omitempty"`
	TyreCount          int                  `json:"tyre_count,omitempty"`
	AxleCount          int                  `json:"axle_count,omitempty"`
	CacheExpiresAt     time.Time            `json:"cache_expires_at"`
	Verification       VerificationResponse `json:"verification"`
}

// VerificationResponse describes the provider attempt behind a verdict.
type VerificationResponse struct {
	Provider      string    `json:"provider"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// BiddableResponse is the HTTP response for GET /vehicles/{rc}/biddable.
type BiddableResponse struct {
	RegistrationNumber string `json:"registration_number"`
	Biddable           bool   `json:"biddable"`
}

// FromDecision converts a domain decision to its HTTP response.
func FromDecision(d domain.ComplianceDecision) DecisionResponse {
	reasons := d.ReasonCodes
	if reasons == nil {
		reasons = []string{}
	}
	return DecisionResponse{
		RegistrationNumber: d.RegistrationNumber,
		OperatorID:         d.OperatorID,
		Status:             string(d.Status),
		ReasonCodes:        reasons,
		Classification:     string(d.Classification),
		BodyCategory:       string(d.BodyCategory),
		BodyLengthFt:       d.BodyLengthFt,
		GVWKg:              d.GVWKg,
		TyreCount:          d.TyreCount,
		AxleCount:          d.AxleCount,
		CacheExpiresAt:     d.CacheExpiresAt,
		Verification: VerificationResponse{
			Provider:      d.LastVerification.Provider,
			TransactionID: d.LastVerification.TransactionID,
			Timestamp:     d.LastVerification.Timestamp,
		},
	}
}
