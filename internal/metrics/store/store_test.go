package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics/store"
)

var (
	insertRun     = regexp.QuoteMeta("INSERT INTO risk_runs")
	insertMetrics = regexp.QuoteMeta("INSERT INTO client_metrics")
)

func testRun() metrics.Run {
	run := metrics.NewRun(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	run.FinishedAt = run.StartedAt.Add(time.Minute)
	run.Documents = 2
	run.Failed = 1

	return run
}

func testClients() []metrics.ClientMetrics {
	return []metrics.ClientMetrics{
		{
			ClientID:      "1001",
			TotalLoans:    3,
			ClosedLoans:   2,
			ClosedRatio:   decimal.RequireFromString("0.6667"),
			Expired30Plus: decimal.RequireFromString("1000.00"),
		},
	}
}

func TestStore_SaveRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	run := testRun()
	clients := testClients()

	mock.ExpectBegin()
	mock.ExpectExec(insertRun).
		WithArgs(run.ID, run.StartedAt, run.FinishedAt, run.Documents, run.Failed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMetrics).
		WithArgs(run.ID, "1001", 3, 2, clients[0].ClosedRatio, clients[0].Expired30Plus).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := store.New(db)
	require.NoError(t, s.SaveRun(context.Background(), run, clients))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRun_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertRun).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMetrics).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	s := store.New(db)
	err = s.SaveRun(context.Background(), testRun(), testClients())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "client 1001")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRun_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	s := store.New(db)
	err = s.SaveRun(context.Background(), testRun(), nil)

	assert.ErrorContains(t, err, "beginning transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS risk_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := store.New(db)
	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
