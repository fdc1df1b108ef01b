package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers audit events. Implementations must be safe for
// concurrent use. Publishing is best-effort from the caller's point of view:
// a failed publish must never fail the business operation that produced it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewEvent builds an Event with a fresh ID and timestamp.
func NewEvent(eventType EventType, registrationNumber, operatorID string, payload map[string]any) Event {
	return Event{
		ID:                 uuid.NewString(),
		Type:               eventType,
		RegistrationNumber: registrationNumber,
		OperatorID:         operatorID,
		Payload:            payload,
		OccurredAt:         time.Now().UTC(),
	}
}

// LogPublisher writes events to the structured log. It is the fallback when
// no broker is configured and the publisher of choice in unit tests.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger falls back to
// slog.Default.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID,
		"event_type", string(event.Type),
		"registration_number", event.RegistrationNumber,
		"operator_id", event.OperatorID,
	)
	return nil
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
