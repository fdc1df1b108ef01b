package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fleetgate/internal/domain"
	"fleetgate/pkg/platform/sentinel"
)

// PostgresStore persists provider responses in an append-only PostgreSQL
// table. Rows are never updated or deleted; the log is the audit trail.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed snapshot store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, registrationNumber string, resp domain.ProviderResponse) error {
	payload, err := json.Marshal(resp.RawPayload)
	if err != nil {
		return fmt.Errorf("marshal snapshot payload: %w", err)
	}
	query := `
		INSERT INTO vehicle_snapshots
			(registration_number, provider, success, raw_payload, transaction_id, error, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		registrationNumber,
		resp.Provider,
		resp.Success,
		payload,
		resp.TransactionID,
		resp.Error,
		resp.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestSuccessFromOtherProvider(ctx context.Context, registrationNumber, excludeProvider string) (*domain.ProviderResponse, error) {
	query := `
		SELECT provider, success, raw_payload, transaction_id, error, fetched_at
		FROM vehicle_snapshots
		WHERE registration_number = $1
		  AND provider <> $2
		  AND success
		ORDER BY fetched_at DESC
		LIMIT 1
	`
	var resp domain.ProviderResponse
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, registrationNumber, excludeProvider).Scan(
		&resp.Provider,
		&resp.Success,
		&payload,
		&resp.TransactionID,
		&resp.Error,
		&resp.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("latest snapshot from other provider: %w", err)
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &resp.RawPayload); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot payload: %w", err)
		}
	}
	return &resp, nil
}
