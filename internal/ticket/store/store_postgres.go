package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fleetgate/internal/domain"
	"fleetgate/internal/ticket/ports"
	"fleetgate/pkg/platform/sentinel"
)

// PostgresStore persists tickets in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ticket store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = `
	id, ticket_type, priority, status, registration_number, operator_id,
	payload, resolution_notes, created_at, resolved_at
`

func (s *PostgresStore) Create(ctx context.Context, ticket domain.Ticket) error {
	payload, err := json.Marshal(ticket.Payload)
	if err != nil {
		return fmt.Errorf("marshal ticket payload: %w", err)
	}
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		ticket.ID,
		string(ticket.Type),
		string(ticket.Priority),
		string(ticket.Status),
		ticket.RegistrationNumber,
		ticket.OperatorID,
		payload,
		ticket.ResolutionNotes,
		ticket.CreatedAt,
		ticket.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get ticket: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}
	ticket, err := scanTicket(rows)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (s *PostgresStore) Update(ctx context.Context, ticket domain.Ticket) error {
	query := `
		UPDATE tickets
		SET status = $1, resolution_notes = $2, resolved_at = $3
		WHERE id = $4
	`
	res, err := s.db.ExecContext(ctx, query,
		string(ticket.Status),
		ticket.ResolutionNotes,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter ports.Filter) ([]domain.Ticket, error) {
	var conditions []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conditions = append(conditions, "ticket_type = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	args = append(args, filter.Limit)
	query += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func scanTicket(rows *sql.Rows) (*domain.Ticket, error) {
	var t domain.Ticket
	var ticketType, priority, status string
	var payload []byte
	var resolvedAt sql.NullTime
	err := rows.Scan(
		&t.ID,
		&ticketType,
		&priority,
		&status,
		&t.RegistrationNumber,
		&t.OperatorID,
		&payload,
		&t.ResolutionNotes,
		&t.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TicketType(ticketType)
	t.Priority = domain.TicketPriority(priority)
	t.Status = domain.TicketStatus(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &t.Payload); err != nil {
			return nil, err
		}
	}
	if resolvedAt.Valid {
		at := resolvedAt.Time
		t.ResolvedAt = &at
	}
	return &t, nil
}

var _ ports.TicketStore = (*PostgresStore)(nil)
