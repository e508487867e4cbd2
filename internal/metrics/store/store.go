package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

const schema = `
	CREATE TABLE IF NOT EXISTS risk_runs (
		id          UUID PRIMARY KEY,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		documents   INTEGER NOT NULL,
		failed      INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS client_metrics (
		run_id                 UUID NOT NULL REFERENCES risk_runs (id) ON DELETE CASCADE,
		client_id              TEXT NOT NULL,
		total_loans_count      INTEGER NOT NULL,
		closed_loans_count     INTEGER NOT NULL,
		closed_loans_ratio     NUMERIC(6, 4) NOT NULL,
		expired_30_plus_amount NUMERIC(18, 2) NOT NULL,
		PRIMARY KEY (run_id, client_id)
	);
`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the run tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// SaveRun writes the run row and every client row in one transaction.
func (s *Store) SaveRun(ctx context.Context, run metrics.Run, clients []metrics.ClientMetrics) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	runQuery := `
		INSERT INTO risk_runs (id, started_at, finished_at, documents, failed)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := dbTx.ExecContext(ctx, runQuery,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.Documents,
		run.Failed,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	clientQuery := `
		INSERT INTO client_metrics (run_id, client_id, total_loans_count, closed_loans_count, closed_loans_ratio, expired_30_plus_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, c := range clients {
		if _, err := dbTx.ExecContext(ctx, clientQuery,
			run.ID,
			c.ClientID,
			c.TotalLoans,
			c.ClosedLoans,
			c.ClosedRatio,
			c.Expired30Plus,
		); err != nil {
			return fmt.Errorf("inserting metrics for client %s: %w", c.ClientID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
