package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/healthsurge/backend/internal/domain"
)

// Schema creates the audit tables if they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS prediction_logs (
	id                      BIGSERIAL PRIMARY KEY,
	request_date            TEXT,
	aqi                     DOUBLE PRECISION NOT NULL,
	temperature             DOUBLE PRECISION NOT NULL,
	humidity                DOUBLE PRECISION NOT NULL,
	is_festival             BOOLEAN NOT NULL,
	model                   TEXT NOT NULL,
	predicted_patients      INTEGER NOT NULL,
	predicted_bed_occupancy DOUBLE PRECISION NOT NULL,
	reasoning               TEXT[] NOT NULL,
	created_at              TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS dispatch_logs (
	id         BIGSERIAL PRIMARY KEY,
	batch_id   TEXT NOT NULL,
	status     TEXT NOT NULL,
	sent_count INTEGER NOT NULL,
	actions    TEXT[] NOT NULL,
	errors     TEXT[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// PostgresRepository implements domain.AuditRepository
type PostgresRepository struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

// NewPostgresRepository creates a new PostgreSQL audit repository
func NewPostgresRepository(pool *pgxpool.Pool, clock clockwork.Clock) *PostgresRepository {
	return &PostgresRepository{pool: pool, clock: clock}
}

// Migrate applies Schema
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// SavePredictionLog persists a prediction request/result to PostgreSQL
func (r *PostgresRepository) SavePredictionLog(ctx context.Context, req domain.Conditions, result domain.PredictionResult) error {
	query := `
		INSERT INTO prediction_logs (
			request_date, aqi, temperature, humidity, is_festival,
			model, predicted_patients, predicted_bed_occupancy, reasoning, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	// empty date is stored as NULL
	var date any
	if req.Date != "" {
		date = req.Date
	}

	_, err := r.pool.Exec(ctx, query,
		date, req.AQI, req.Temp, req.Humidity, req.Festival,
		result.Model, result.PredictedPatients, result.PredictedBedOccupancy, result.Reasoning, r.clock.Now(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}

// SaveDispatchLog persists an emergency fan-out summary to PostgreSQL
func (r *PostgresRepository) SaveDispatchLog(ctx context.Context, actions []string, outcome domain.NotificationOutcome) error {
	query := `
		INSERT INTO dispatch_logs (
			batch_id, status, sent_count, actions, errors, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		outcome.BatchID, string(outcome.Status), outcome.SentCount, actions, outcome.Errors, r.clock.Now(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save dispatch log: %w", err)
	}

	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
