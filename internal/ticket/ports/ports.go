// Package ports defines the ticket persistence contract.
package ports

import (
	"context"

	"fleetgate/internal/domain"
)

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Status domain.TicketStatus
	Type   domain.TicketType
	Limit  int
	Offset int
}

// TicketStore persists tickets. Tickets are append-plus-mutate: created once,
// updated only by review actions, never deleted.
type TicketStore interface {
	Create(ctx context.Context, ticket domain.Ticket) error
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket domain.Ticket) error
	// List returns tickets newest first.
	List(ctx context.Context, filter Filter) ([]domain.Ticket, error)
}
