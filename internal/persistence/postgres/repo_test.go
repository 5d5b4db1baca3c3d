package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/persistence"
)

var asOf = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestRunsRepoSave(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRunsRepo(db, time.Second)

	created := asOf.Add(time.Hour)
	mock.ExpectQuery("INSERT INTO runs").
		WithArgs("run-1", asOf, 3, 2, 1, 0, []byte(`{"ok":true}`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	err := repo.Save(context.Background(), persistence.RunRecord{
		ID: "run-1", AsOf: asOf, Companies: 3, Signals: 2, HighConviction: 1,
		Payload: []byte(`{"ok":true}`),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepoSaveDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRunsRepo(db, time.Second)

	mock.ExpectQuery("INSERT INTO runs").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.Save(context.Background(), persistence.RunRecord{ID: "run-1", AsOf: asOf})
	require.Error(t, err)
	assert.True(t, errors.Is(err, persistence.ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepoLatest(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRunsRepo(db, time.Second)

	cols := []string{"run_id", "as_of", "companies", "signals", "high_conviction", "plays", "payload", "created_at"}
	mock.ExpectQuery("SELECT .+ FROM runs\\s+ORDER BY as_of DESC").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("run-2", asOf, 5, 5, 2, 3, []byte(`{"run_id":"run-2"}`), asOf))

	run, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-2", run.ID)
	assert.Equal(t, 3, run.Plays)
	assert.JSONEq(t, `{"run_id":"run-2"}`, string(run.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepoGetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRunsRepo(db, time.Second)

	cols := []string{"run_id", "as_of", "companies", "signals", "high_conviction", "plays", "payload", "created_at"}
	mock.ExpectQuery("SELECT .+ FROM runs\\s+WHERE run_id = \\$1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(cols))

	run, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsRepoList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRunsRepo(db, time.Second)

	cols := []string{"run_id", "as_of", "companies", "signals", "high_conviction", "plays", "created_at"}
	mock.ExpectQuery("SELECT .+ FROM runs").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("run-2", asOf.AddDate(0, 0, 7), 5, 5, 2, 3, asOf).
			AddRow("run-1", asOf, 4, 4, 1, 0, asOf))

	runs, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Nil(t, runs[0].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalsRepoInsertBatch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSignalsRepo(db, time.Second)

	ticker := "SMH"
	rows := []persistence.SignalRow{
		{RunID: "run-1", AsOf: asOf, CompanyID: "a", Rank: 1, Recommendation: "BUY", Conviction: 0.7, ProxyTicker: &ticker},
		{RunID: "run-1", AsOf: asOf, CompanyID: "b", Rank: 2, Recommendation: "HOLD"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO run_signals")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.InsertBatch(context.Background(), rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalsRepoInsertBatchRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSignalsRepo(db, time.Second)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO run_signals")
	prep.ExpectExec().WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.InsertBatch(context.Background(), []persistence.SignalRow{{RunID: "run-1", CompanyID: "a"}})
	assert.ErrorIs(t, err, persistence.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalsRepoInsertBatchEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSignalsRepo(db, time.Second)

	require.NoError(t, repo.InsertBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalsRepoHistory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSignalsRepo(db, time.Second)

	cols := []string{"run_id", "as_of", "company_id", "rank", "recommendation", "conviction",
		"momentum_score", "moat_score", "position_min_pct", "position_max_pct", "proxy_ticker"}
	mock.ExpectQuery("SELECT .+ FROM run_signals").
		WithArgs("a", 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("run-2", asOf, "a", 1, "STRONG_BUY", 0.82, 88.0, 77.0, 4.0, 5.0, "SMH").
			AddRow("run-1", asOf.AddDate(0, 0, -7), "a", 3, "BUY", 0.61, 70.0, 60.0, 2.0, 4.0, nil))

	rows, err := repo.History(context.Background(), "a", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "STRONG_BUY", rows[0].Recommendation)
	require.NotNil(t, rows[0].ProxyTicker)
	assert.Equal(t, "SMH", *rows[0].ProxyTicker)
	assert.Nil(t, rows[1].ProxyTicker)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
