// Package audit emits verification lifecycle events to an external stream so
// downstream systems (pricing, operator support, analytics) can react without
// polling the decision cache.
package audit

import "time"

// EventType enumerates the verification lifecycle events.
type EventType string

const (
	EventDecisionRecorded    EventType = "compliance.decision_recorded"
	EventVerificationFailed  EventType = "compliance.verification_failed"
	EventTicketOpened        EventType = "ticket.opened"
	EventTicketResolved      EventType = "ticket.resolved"
	EventTrailerLinked       EventType = "trailer.linked"
	EventTrailerUnlinked     EventType = "trailer.unlinked"
	EventBatchRunCompleted   EventType = "batch.run_completed"
	EventProviderCircuitOpen EventType = "registry.circuit_open"
)

// Event is one audit record. Payload carries event-specific fields and must be
// JSON-serializable.
type Event struct {
	ID                 string         `json:"id"`
	Type               EventType      `json:"type"`
	RegistrationNumber string         `json:"registration_number,omitempty"`
	OperatorID         string         `json:"operator_id,omitempty"`
	Payload            map[string]any `json:"payload,omitempty"`
	OccurredAt         time.Time      `json:"occurred_at"`
}
