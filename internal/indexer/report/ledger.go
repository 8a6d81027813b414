package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/resilience"
)

const createRunsTable = `CREATE TABLE IF NOT EXISTS index_runs (
    run_id       TEXT PRIMARY KEY,
    input_dir    TEXT NOT NULL,
    output_dir   TEXT NOT NULL,
    documents    INTEGER NOT NULL,
    terms        INTEGER NOT NULL,
    postings     INTEGER NOT NULL,
    duration_ms  BIGINT NOT NULL,
    data         JSONB NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL
)`

const insertRun = `INSERT INTO index_runs
    (run_id, input_dir, output_dir, documents, terms, postings, duration_ms, data, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (run_id) DO NOTHING`

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Ledger records every finished run as a row of the index_runs table.
type Ledger struct {
	db     Execer
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func NewLedger(db Execer, retry resilience.RetryConfig) *Ledger {
	return &Ledger{
		db:     db,
		retry:  retry,
		logger: slog.Default().With("component", "run-ledger"),
	}
}

func (l *Ledger) Name() string {
	return "postgres"
}

// EnsureSchema creates the index_runs table when it does not exist.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	return resilience.Retry(ctx, "ensure-index-runs", l.retry, func(ctx context.Context) error {
		if _, err := l.db.ExecContext(ctx, createRunsTable); err != nil {
			return fmt.Errorf("creating index_runs table: %w", err)
		}
		return nil
	})
}

func (l *Ledger) Report(ctx context.Context, summary indexer.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	completedAt := summary.StartedAt.Add(summary.Duration).UTC()

	err = resilience.Retry(ctx, "insert-index-run", l.retry, func(ctx context.Context) error {
		_, err := l.db.ExecContext(ctx, insertRun,
			summary.RunID,
			summary.InputDir,
			summary.OutputDir,
			summary.Documents,
			summary.Terms,
			summary.Postings,
			summary.Duration.Milliseconds(),
			data,
			completedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting index run: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.logger.Debug("index run recorded", "run_id", summary.RunID)
	return nil
}
