package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawpanic/techrun/internal/persistence"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key
const uniqueViolation = "23505"

// runsRepo implements persistence.RunRepo for PostgreSQL
type runsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRunsRepo creates a new PostgreSQL run repository
func NewRunsRepo(db *sqlx.DB, timeout time.Duration) persistence.RunRepo {
	return &runsRepo{db: db, timeout: timeout}
}

// Save inserts a run; runs are never updated
func (r *runsRepo) Save(ctx context.Context, run persistence.RunRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if len(run.Payload) == 0 {
		run.Payload = []byte("{}")
	}

	query := `
		INSERT INTO runs (run_id, as_of, companies, signals, high_conviction, plays, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		run.ID, run.AsOf, run.Companies, run.Signals, run.HighConviction, run.Plays, []byte(run.Payload)).
		Scan(&run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("run %s: %w", run.ID, persistence.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Latest returns the newest run by as-of time, nil when the table is empty
func (r *runsRepo) Latest(ctx context.Context) (*persistence.RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT run_id, as_of, companies, signals, high_conviction, plays, payload, created_at
		FROM runs
		ORDER BY as_of DESC, created_at DESC
		LIMIT 1`

	run, err := scanRun(r.db.QueryRowxContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// Get returns one run by id, nil when absent
func (r *runsRepo) Get(ctx context.Context, id string) (*persistence.RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT run_id, as_of, companies, signals, high_conviction, plays, payload, created_at
		FROM runs
		WHERE run_id = $1`

	run, err := scanRun(r.db.QueryRowxContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// List returns run headers newest first
func (r *runsRepo) List(ctx context.Context, limit int) ([]persistence.RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT run_id, as_of, companies, signals, high_conviction, plays, created_at
		FROM runs
		ORDER BY as_of DESC, created_at DESC
		LIMIT $1`

	runs := []persistence.RunRecord{}
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func scanRun(row *sqlx.Row) (*persistence.RunRecord, error) {
	var run persistence.RunRecord
	var payload []byte
	err := row.Scan(&run.ID, &run.AsOf, &run.Companies, &run.Signals,
		&run.HighConviction, &run.Plays, &payload, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Payload = payload
	return &run, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
