// Package ticket creates and resolves the exception records human reviewers
// work through. Creation happens from the compliance and batch layers; every
// mutation after that is an explicit review action.
package ticket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fleetgate/internal/audit"
	"fleetgate/internal/domain"
	"fleetgate/internal/ticket/ports"
	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/sentinel"
)

const defaultListLimit = 50

// CreateInput carries the fields a caller may set when opening a ticket.
// Priority is optional; it defaults from the ticket type.
type CreateInput struct {
	Type               domain.TicketType
	Priority           domain.TicketPriority
	RegistrationNumber string
	OperatorID         string
	Payload            map[string]any
}

// Service exposes ticket lifecycle operations.
type Service struct {
	store     ports.TicketStore
	publisher audit.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithPublisher sets the audit publisher.
func WithPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the service clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service over the ticket store.
func NewService(store ports.TicketStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: audit.NopPublisher{},
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new OPEN ticket.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Ticket, error) {
	if input.Type == "" {
		return domain.Ticket{}, dErrors.New(dErrors.CodeBadRequest, "ticket type is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.DefaultPriority(input.Type)
	}

	t := domain.Ticket{
		ID:                 uuid.NewString(),
		Type:               input.Type,
		Priority:           priority,
		Status:             domain.TicketOpen,
		RegistrationNumber: input.RegistrationNumber,
		OperatorID:         input.OperatorID,
		Payload:            input.Payload,
		CreatedAt:          s.now(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return domain.Ticket{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "create ticket")
	}

	s.publish(ctx, audit.NewEvent(audit.EventTicketOpened, t.RegistrationNumber, t.OperatorID, map[string]any{
		"ticket_id":   t.ID,
		"ticket_type": string(t.Type),
		"priority":    string(t.Priority),
	}))
	s.logger.InfoContext(ctx, "ticket opened",
		"ticket_id", t.ID, "ticket_type", string(t.Type), "priority", string(t.Priority),
		"registration_number", t.RegistrationNumber)
	return t, nil
}

// Get returns one ticket by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Ticket, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Ticket{}, dErrors.New(dErrors.CodeNotFound, "ticket not found")
		}
		return domain.Ticket{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "get ticket")
	}
	return *t, nil
}

// StartReview moves an OPEN ticket to IN_REVIEW.
func (s *Service) StartReview(ctx context.Context, id string) (domain.Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	if t.Status != domain.TicketOpen {
		return domain.Ticket{}, dErrors.New(dErrors.CodeConflict, "only open tickets can enter review")
	}
	t.Status = domain.TicketInReview
	if err := s.store.Update(ctx, t); err != nil {
		return domain.Ticket{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "update ticket")
	}
	return t, nil
}

// Resolve closes a ticket, stamping resolution notes and timestamp. Resolving
// an already-resolved ticket is a conflict.
func (s *Service) Resolve(ctx context.Context, id, notes string) (domain.Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	if t.Status == domain.TicketResolved {
		return domain.Ticket{}, dErrors.New(dErrors.CodeConflict, "ticket already resolved")
	}

	resolvedAt := s.now()
	t.Status = domain.TicketResolved
	t.ResolutionNotes = notes
	t.ResolvedAt = &resolvedAt
	if err := s.store.Update(ctx, t); err != nil {
		return domain.Ticket{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "update ticket")
	}

	s.publish(ctx, audit.NewEvent(audit.EventTicketResolved, t.RegistrationNumber, t.OperatorID, map[string]any{
		"ticket_id": t.ID,
	}))
	s.logger.InfoContext(ctx, "ticket resolved", "ticket_id", t.ID)
	return t, nil
}

// List returns tickets newest first, optionally filtered by status and type.
func (s *Service) List(ctx context.Context, filter ports.Filter) ([]domain.Ticket, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	tickets, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list tickets")
	}
	return tickets, nil
}

func (s *Service) publish(ctx context.Context, event audit.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit publish failed", "event_type", string(event.Type), "error", err)
	}
}
