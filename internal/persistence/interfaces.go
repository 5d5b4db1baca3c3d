package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrDuplicate is returned when a record with the same key already exists
var ErrDuplicate = errors.New("duplicate record")

// RunRecord is one stored pipeline run. Payload is the full JSON-encoded run
// result; the remaining columns exist for listing without decoding it.
type RunRecord struct {
	ID             string          `json:"run_id" db:"run_id"`
	AsOf           time.Time       `json:"as_of" db:"as_of"`
	Companies      int             `json:"companies" db:"companies"`
	Signals        int             `json:"signals" db:"signals"`
	HighConviction int             `json:"high_conviction" db:"high_conviction"`
	Plays          int             `json:"plays" db:"plays"`
	Payload        json.RawMessage `json:"payload,omitempty" db:"payload"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// SignalRow is one ranked signal flattened for history queries. A
// backtest replays these against realized prices.
type SignalRow struct {
	RunID          string    `json:"run_id" db:"run_id"`
	AsOf           time.Time `json:"as_of" db:"as_of"`
	CompanyID      string    `json:"company_id" db:"company_id"`
	Rank           int       `json:"rank" db:"rank"`
	Recommendation string    `json:"recommendation" db:"recommendation"`
	Conviction     float64   `json:"conviction" db:"conviction"`
	Momentum       float64   `json:"momentum_score" db:"momentum_score"`
	Moat           float64   `json:"moat_score" db:"moat_score"`
	PositionMin    float64   `json:"position_min_pct" db:"position_min_pct"`
	PositionMax    float64   `json:"position_max_pct" db:"position_max_pct"`
	ProxyTicker    *string   `json:"proxy_ticker,omitempty" db:"proxy_ticker"`
}

// RunRepo stores completed runs. Runs are immutable once saved.
type RunRepo interface {
	// Save stores a run; saving an existing id returns ErrDuplicate
	Save(ctx context.Context, run RunRecord) error

	// Latest returns the run with the newest as-of time, nil when empty
	Latest(ctx context.Context) (*RunRecord, error)

	// Get returns one run by id, nil when absent
	Get(ctx context.Context, id string) (*RunRecord, error)

	// List returns up to limit runs, newest first, without payloads
	List(ctx context.Context, limit int) ([]RunRecord, error)
}

// SignalRepo stores per-run signal history
type SignalRepo interface {
	// InsertBatch stores all rows of one run atomically
	InsertBatch(ctx context.Context, rows []SignalRow) error

	// History returns a company's signals across runs, newest first
	History(ctx context.Context, companyID string, limit int) ([]SignalRow, error)
}

// Repository aggregates all persistence interfaces. Health is nil for
// stores without a connection to monitor.
type Repository struct {
	Runs    RunRepo
	Signals SignalRepo
	Health  RepositoryHealth
}

// HealthCheck represents repository health status
type HealthCheck struct {
	Healthy        bool           `json:"healthy"`
	Errors         []string       `json:"errors,omitempty"`
	ConnectionPool map[string]int `json:"connection_pool"`
	LastCheck      time.Time      `json:"last_check"`
	ResponseTimeMS int64          `json:"response_time_ms"`
}

// RepositoryHealth provides health monitoring for persistence layer
type RepositoryHealth interface {
	Health(ctx context.Context) HealthCheck
	Ping(ctx context.Context) error
}
