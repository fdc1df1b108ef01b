// Package source selects vehicles due for batch verification.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fleetgate/internal/batch/ports"
)

// PostgresSource selects active fleet vehicles whose cached decision is
// missing or expired.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed vehicle source.
func NewPostgres(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) DueForVerification(ctx context.Context, now time.Time) ([]ports.Candidate, error) {
	query := `
		SELECT v.registration_number, v.operator_id
		FROM fleet_vehicles v
		LEFT JOIN compliance_cache c
		       ON c.registration_number = v.registration_number
		      AND c.operator_id = v.operator_id
		WHERE v.status = 'ACTIVE'
		  AND (c.registration_number IS NULL OR c.cache_expires_at <= $1)
		ORDER BY v.registration_number
	`
	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("select due vehicles: %w", err)
	}
	defer rows.Close()

	var candidates []ports.Candidate
	for rows.Next() {
		var c ports.Candidate
		if err := rows.Scan(&c.RegistrationNumber, &c.OperatorID); err != nil {
			return nil, fmt.Errorf("scan due vehicle: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select due vehicles: %w", err)
	}
	return candidates, nil
}

// StaticSource serves a fixed candidate list. Used by tests and one-off runs
// over an explicit vehicle set.
type StaticSource struct {
	Candidates []ports.Candidate
}

func (s *StaticSource) DueForVerification(context.Context, time.Time) ([]ports.Candidate, error) {
	return s.Candidates, nil
}
