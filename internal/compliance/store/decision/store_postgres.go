package decision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"fleetgate/internal/domain"
	"fleetgate/pkg/platform/sentinel"
)

// PostgresStore persists compliance decisions in PostgreSQL.
// One row per (registration_number, operator_id); Upsert overwrites in place
// so concurrent re-verification settles on the last writer.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed decision store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const decisionColumns = `
	registration_number, operator_id, status, reason_codes,
	classification, body_category, body_length_ft,
	gvw_kg, tyre_count, axle_count,
	chassis_hash, engine_hash, cache_expires_at,
	provider, transaction_id, verified_at
`

func (s *PostgresStore) Upsert(ctx context.Context, decision domain.ComplianceDecision) error {
	query := `
		INSERT INTO compliance_cache (` + decisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (registration_number, operator_id) DO UPDATE SET
			status = EXCLUDED.status,
			reason_codes = EXCLUDED.reason_codes,
			classification = EXCLUDED.classification,
			body_category = EXCLUDED.body_category,
			body_length_ft = EXCLUDED.body_length_ft,
			gvw_kg = EXCLUDED.gvw_kg,
			tyre_count = EXCLUDED.tyre_count,
			axle_count = EXCLUDED.axle_count,
			chassis_hash = EXCLUDED.chassis_hash,
			engine_hash = EXCLUDED.engine_hash,
			cache_expires_at = EXCLUDED.cache_expires_at,
			provider = EXCLUDED.provider,
			transaction_id = EXCLUDED.transaction_id,
			verified_at = EXCLUDED.verified_at
	`
	_, err := s.db.ExecContext(ctx, query,
		decision.RegistrationNumber,
		decision.OperatorID,
		string(decision.Status),
		pq.Array(decision.ReasonCodes),
		string(decision.Classification),
		string(decision.BodyCategory),
		decision.BodyLengthFt,
		decision.GVWKg,
		decision.TyreCount,
		decision.AxleCount,
		decision.ChassisHash,
		decision.EngineHash,
		decision.CacheExpiresAt,
		decision.LastVerification.Provider,
		decision.LastVerification.TransactionID,
		decision.LastVerification.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert decision: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, registrationNumber, operatorID string) (*domain.ComplianceDecision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM compliance_cache
		WHERE registration_number = $1 AND operator_id = $2
	`
	decision, err := scanDecision(s.db.QueryRowContext(ctx, query, registrationNumber, operatorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return decision, nil
}

func (s *PostgresStore) FindByFingerprint(ctx context.Context, chassisHash, engineHash, excludeRC, excludeOperator string) (*domain.ComplianceDecision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM compliance_cache
		WHERE (chassis_hash = $1 OR engine_hash = $2)
		  AND NOT (registration_number = $3 AND operator_id = $4)
		ORDER BY verified_at ASC
		LIMIT 1
	`
	decision, err := scanDecision(s.db.QueryRowContext(ctx, query, chassisHash, engineHash, excludeRC, excludeOperator))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find decision by fingerprint: %w", err)
	}
	return decision, nil
}

func scanDecision(row *sql.Row) (*domain.ComplianceDecision, error) {
	var d domain.ComplianceDecision
	var status, classification, bodyCategory string
	err := row.Scan(
		&d.RegistrationNumber,
		&d.OperatorID,
		&status,
		pq.Array(&d.ReasonCodes),
		&classification,
		&bodyCategory,
		&d.BodyLengthFt,
		&d.GVWKg,
		&d.TyreCount,
		&d.AxleCount,
		&d.ChassisHash,
		&d.EngineHash,
		&d.CacheExpiresAt,
		&d.LastVerification.Provider,
		&d.LastVerification.TransactionID,
		&d.LastVerification.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DecisionStatus(status)
	d.Classification = domain.FleetClass(classification)
	d.BodyCategory = domain.BodyCategory(bodyCategory)
	return &d, nil
}
