package vehicle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleetgate/internal/domain"
	"fleetgate/internal/trailer/ports"
	"fleetgate/pkg/platform/sentinel"
	platformtx "fleetgate/pkg/platform/tx"
)

// PostgresStore persists fleet vehicle records in PostgreSQL. Link updates
// run inside one transaction so the trailer and tractor rows change together
// or not at all.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed vehicle store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := platformtx.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, registrationNumber string) (*domain.FleetVehicle, error) {
	query := `
		SELECT registration_number, operator_id, is_trailer, is_tractor,
		       COALESCE(linked_tractor_rc, ''), COALESCE(linked_trailer_rc, ''),
		       status, gps_last_ping, updated_at
		FROM fleet_vehicles
		WHERE registration_number = $1
	`
	var v domain.FleetVehicle
	var status string
	var ping sql.NullTime
	err := s.q(ctx).QueryRowContext(ctx, query, registrationNumber).Scan(
		&v.RegistrationNumber,
		&v.OperatorID,
		&v.IsTrailer,
		&v.IsTractor,
		&v.LinkedTractorRC,
		&v.LinkedTrailerRC,
		&status,
		&ping,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get fleet vehicle: %w", err)
	}
	v.Status = domain.VehicleStatus(status)
	if ping.Valid {
		t := ping.Time
		v.GPSLastPing = &t
	}
	return &v, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, vehicle domain.FleetVehicle) error {
	query := `
		INSERT INTO fleet_vehicles
			(registration_number, operator_id, is_trailer, is_tractor,
			 linked_tractor_rc, linked_trailer_rc, status, gps_last_ping, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)
		ON CONFLICT (registration_number) DO UPDATE SET
			operator_id = EXCLUDED.operator_id,
			is_trailer = EXCLUDED.is_trailer,
			is_tractor = EXCLUDED.is_tractor,
			linked_tractor_rc = EXCLUDED.linked_tractor_rc,
			linked_trailer_rc = EXCLUDED.linked_trailer_rc,
			status = EXCLUDED.status,
			gps_last_ping = EXCLUDED.gps_last_ping,
			updated_at = EXCLUDED.updated_at
	`
	var ping sql.NullTime
	if vehicle.GPSLastPing != nil {
		ping = sql.NullTime{Time: *vehicle.GPSLastPing, Valid: true}
	}
	_, err := s.q(ctx).ExecContext(ctx, query,
		vehicle.RegistrationNumber,
		vehicle.OperatorID,
		vehicle.IsTrailer,
		vehicle.IsTractor,
		vehicle.LinkedTractorRC,
		vehicle.LinkedTrailerRC,
		string(vehicle.Status),
		ping,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert fleet vehicle: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateLinks(ctx context.Context, updates []ports.LinkUpdate, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txCtx := platformtx.WithTx(ctx, tx)
	for _, u := range updates {
		if err := s.applyLinkUpdate(txCtx, u, at); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit link transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) applyLinkUpdate(ctx context.Context, u ports.LinkUpdate, at time.Time) error {
	if u.TractorRC != nil {
		if err := s.setLinkColumn(ctx, "linked_tractor_rc", u.RegistrationNumber, *u.TractorRC, at); err != nil {
			return err
		}
	}
	if u.TrailerRC != nil {
		if err := s.setLinkColumn(ctx, "linked_trailer_rc", u.RegistrationNumber, *u.TrailerRC, at); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) setLinkColumn(ctx context.Context, column, registrationNumber, value string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE fleet_vehicles
		SET %s = NULLIF($1, ''), updated_at = $2
		WHERE registration_number = $3
	`, column)
	res, err := s.q(ctx).ExecContext(ctx, query, value, at, registrationNumber)
	if err != nil {
		return fmt.Errorf("update %s for %s: %w", column, registrationNumber, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s for %s: %w", column, registrationNumber, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RecordGPSPing(ctx context.Context, registrationNumber string, at time.Time) error {
	query := `
		UPDATE fleet_vehicles
		SET gps_last_ping = $1, updated_at = $1
		WHERE registration_number = $2
	`
	res, err := s.q(ctx).ExecContext(ctx, query, at, registrationNumber)
	if err != nil {
		return fmt.Errorf("record gps ping: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record gps ping: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
