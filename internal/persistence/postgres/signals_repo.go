package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/techrun/internal/persistence"
)

// signalsRepo implements persistence.SignalRepo for PostgreSQL
type signalsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSignalsRepo creates a new PostgreSQL signal history repository
func NewSignalsRepo(db *sqlx.DB, timeout time.Duration) persistence.SignalRepo {
	return &signalsRepo{db: db, timeout: timeout}
}

// InsertBatch stores the rows of one run in a single transaction
func (r *signalsRepo) InsertBatch(ctx context.Context, rows []persistence.SignalRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(rows)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_signals (run_id, as_of, company_id, rank, recommendation, conviction,
			momentum_score, moat_score, position_min_pct, position_max_pct, proxy_ticker)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.ExecContext(ctx,
			row.RunID, row.AsOf, row.CompanyID, row.Rank, row.Recommendation, row.Conviction,
			row.Momentum, row.Moat, row.PositionMin, row.PositionMax, row.ProxyTicker)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("signal %s/%s: %w", row.RunID, row.CompanyID, persistence.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert signal in batch: %w", err)
		}
	}

	return tx.Commit()
}

// History returns a company's signals across runs, newest first
func (r *signalsRepo) History(ctx context.Context, companyID string, limit int) ([]persistence.SignalRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT run_id, as_of, company_id, rank, recommendation, conviction,
		       momentum_score, moat_score, position_min_pct, position_max_pct, proxy_ticker
		FROM run_signals
		WHERE company_id = $1
		ORDER BY as_of DESC
		LIMIT $2`

	rows := []persistence.SignalRow{}
	if err := r.db.SelectContext(ctx, &rows, query, companyID, limit); err != nil {
		return nil, fmt.Errorf("failed to query signal history: %w", err)
	}
	return rows, nil
}
