package store

import (
	"context"
	"database/sql"
)

// DBTX is the database handle every store runs on. Both *sql.DB and
// *sql.Tx satisfy it, so a store operates on a plain connection in the
// simple case and joins a caller-owned transaction (via WithTx) when a
// composite write, like persisting a generated story with its vocabulary,
// has to land atomically.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
