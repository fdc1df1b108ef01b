package handler

import (
	"time"

	"fleetgate/internal/domain"
)

// CreateRequest is the HTTP request body for POST /tickets.
type CreateRequest struct {
	Type               string         `json:"type"`
	Priority           string         `json:"priority"`
	RegistrationNumber string         `json:"registration_number"`
	OperatorID         string         `json:"operator_id"`
	Payload            map[string]any `json:"payload"`
}

// ResolveRequest is the HTTP request body for POST /tickets/{id}/resolve.
type ResolveRequest struct {
	Notes string `json:"notes"`
}

// TicketResponse is the HTTP shape of a ticket.
type TicketResponse struct {
	ID                 string         `json:"id"`
	Type               string         `json:"type"`
	Priority           string         `json:"priority"`
	Status             string         `json:"status"`
	RegistrationNumber string         `json:"registration_number,omitempty"`
	OperatorID         string         `json:"operator_id,omitempty"`
	Payload            map[string]any `json:"payload,omitempty"`
	ResolutionNotes    string         `json:"resolution_notes,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	ResolvedAt         *time.Time     `json:"resolved_at,omitempty"`
}

// ListResponse is the HTTP response for GET /tickets.
type ListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

// FromTicket converts a domain ticket to its HTTP response.
func FromTicket(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 t.ID,
		Type:               string(t.Type),
		Priority:           string(t.Priority),
		Status:             string(t.Status),
		RegistrationNumber: t.RegistrationNumber,
		OperatorID:         t.OperatorID,
		Payload:            t.Payload,
		ResolutionNotes:    t.ResolutionNotes,
		CreatedAt:          t.CreatedAt,
		ResolvedAt:         t.ResolvedAt,
	}
}
