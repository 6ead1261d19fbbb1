package exports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/marketplace-reports/internal/platform/db"
)

// Ledger records finished exports for auditing.
type Ledger interface {
	Record(ctx context.Context, exp Export) error
}

// PGLedger appends finished exports to the report_exports table.
type PGLedger struct {
	pool *pgxpool.Pool
}

// NewPGLedger constructs a ledger over pool.
func NewPGLedger(pool *pgxpool.Pool) *PGLedger {
	return &PGLedger{pool: pool}
}

// Schema creates the ledger table when missing.
const Schema = `CREATE TABLE IF NOT EXISTS report_exports (
    id           TEXT PRIMARY KEY,
    role         TEXT NOT NULL,
    status       TEXT NOT NULL,
    entity_count INTEGER NOT NULL,
    filename     TEXT,
    file_size    BIGINT,
    page_count   INTEGER,
    sink         TEXT,
    error        TEXT,
    options      JSONB NOT NULL DEFAULT '{}'::jsonb,
    requested_by TEXT,
    created_at   TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ NOT NULL
)`

// Migrate ensures the ledger table exists.
func (l *PGLedger) Migrate(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("exports: ledger not initialised")
	}
	_, err := l.pool.Exec(ctx, Schema)
	return err
}

// Record upserts the final state of exp.
func (l *PGLedger) Record(ctx context.Context, exp Export) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("exports: ledger not initialised")
	}
	opts, err := json.Marshal(exp.Options)
	if err != nil {
		return err
	}
	const upsert = `INSERT INTO report_exports
    (id, role, status, entity_count, filename, file_size, page_count, sink, error, options, requested_by, created_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status,
    filename = EXCLUDED.filename,
    file_size = EXCLUDED.file_size,
    page_count = EXCLUDED.page_count,
    sink = EXCLUDED.sink,
    error = EXCLUDED.error,
    finished_at = EXCLUDED.finished_at`
	return db.WithTx(ctx, l.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsert,
			exp.ID, string(exp.Role), string(exp.Status), exp.Count,
			exp.Filename, exp.FileSize, exp.PageCount, exp.Sink, exp.Error,
			opts, exp.RequestedBy, exp.CreatedAt, exp.UpdatedAt,
		)
		return err
	})
}
