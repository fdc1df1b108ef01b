package decision

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/domain"
	"fleetgate/pkg/platform/sentinel"
)

func testDecision() domain.ComplianceDecision {
	return domain.ComplianceDecision{
		RegistrationNumber: "KA01AB1234",
		OperatorID:         "op-1",
		Status:             domain.StatusBlocked,
		ReasonCodes:        []string{"GPS_PING_STALE"},
		Classification:     domain.FleetSXL,
		BodyCategory:       domain.BodyContainer,
		BodyLengthFt:       19,
		GVWKg:              16000,
		TyreCount:          6,
		AxleCount:          2,
		ChassisHash:        "aaa",
		EngineHash:         "bbb",
		CacheExpiresAt:     time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC),
		LastVerification: domain.VerificationMeta{
			Provider:      "surepass",
			TransactionID: "txn-1",
			Timestamp:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestPostgresUpsert(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	d := testDecision()
	mock.ExpectExec(`INSERT INTO compliance_cache`).
		WithArgs(
			d.RegistrationNumber, d.OperatorID, string(d.Status), pq.Array(d.ReasonCodes),
			string(d.Classification), string(d.BodyCategory), d.BodyLengthFt,
			d.GVWKg, d.TyreCount, d.AxleCount,
			d.ChassisHash, d.EngineHash, d.CacheExpiresAt,
			d.LastVerification.Provider, d.LastVerification.TransactionID, d.LastVerification.Timestamp,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgres(db)
	require.NoError(t, store.Upsert(context.Background(), d))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func decisionRows(d domain.ComplianceDecision) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"registration_number", "operator_id", "status", "reason_codes",
		"classification", "body_category", "body_length_ft",
		"gvw_kg", "tyre_count", "axle_count",
		"chassis_hash", "engine_hash", "cache_expires_at",
		"provider", "transaction_id", "verified_at",
	}).AddRow(
		d.RegistrationNumber, d.OperatorID, string(d.Status), "{GPS_PING_STALE}",
		string(d.Classification), string(d.BodyCategory), d.BodyLengthFt,
		d.GVWKg, d.TyreCount, d.AxleCount,
		d.ChassisHash, d.EngineHash, d.CacheExpiresAt,
		d.LastVerification.Provider, d.LastVerification.TransactionID, d.LastVerification.Timestamp,
	)
}

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	d := testDecision()
	mock.ExpectQuery(`SELECT .+ FROM compliance_cache`).
		WithArgs(d.RegistrationNumber, d.OperatorID).
		WillReturnRows(decisionRows(d))

	store := NewPostgres(db)
	got, err := store.Get(context.Background(), d.RegistrationNumber, d.OperatorID)
	require.NoError(t, err)
	assert.Equal(t, d, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM compliance_cache`).
		WithArgs("KA99ZZ0000", "op-1").
		WillReturnRows(sqlmock.NewRows([]string{"registration_number"}))

	store := NewPostgres(db)
	_, err = store.Get(context.Background(), "KA99ZZ0000", "op-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresFindByFingerprint(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	d := testDecision()
	mock.ExpectQuery(`SELECT .+ FROM compliance_cache`).
		WithArgs(d.ChassisHash, d.EngineHash, "MH12XY9999", "op-2").
		WillReturnRows(decisionRows(d))

	store := NewPostgres(db)
	got, err := store.FindByFingerprint(context.Background(), d.ChassisHash, d.EngineHash, "MH12XY9999", "op-2")
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", got.RegistrationNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
