package operator

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore answers quota questions from the fleet vehicles table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed operator store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ActiveVehicleCount(ctx context.Context, operatorID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM fleet_vehicles
		WHERE operator_id = $1 AND status = 'ACTIVE'
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, operatorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active vehicles: %w", err)
	}
	return count, nil
}
