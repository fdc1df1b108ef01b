package domain

import "time"

// TicketType classifies why a verification outcome needs human review.
type TicketType string

const (
	TicketProviderMismatch  TicketType = "PROVIDER_MISMATCH"
	TicketDuplicateChassis  TicketType = "DUPLICATE_CHASSIS"
	TicketPermitDiscrepancy TicketType = "PERMIT_DISCREPANCY"
	TicketLowTrust          TicketType = "LOW_TRUST"
	TicketComplianceBlock   TicketType = "COMPLIANCE_BLOCK"
)

// TicketPriority orders the review queue.
type TicketPriority string

const (
	PriorityHigh   TicketPriority = "HIGH"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityLow    TicketPriority = "LOW"
)

// TicketStatus tracks the review lifecycle. Tickets are never auto-deleted.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "OPEN"
	TicketInReview TicketStatus = "IN_REVIEW"
	TicketResolved TicketStatus = "RESOLVED"
)

// Ticket is a human-actionable exception record raised when automated
// verification finds an anomaly it cannot safely resolve.
type Ticket struct {
	ID                 string
	Type               TicketType
	Priority           TicketPriority
	Status             TicketStatus
	RegistrationNumber string
	OperatorID         string
	Payload            map[string]any
	ResolutionNotes    string
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}

// DefaultPriority derives a priority from the ticket type when the creator
// does not set one explicitly.
func DefaultPriority(t TicketType) TicketPriority {
	switch t {
	case TicketDuplicateChassis, TicketProviderMismatch:
		return PriorityHigh
	case TicketComplianceBlock, TicketPermitDiscrepancy:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
