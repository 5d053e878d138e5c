package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database handle so store code works with either a
// *sql.DB or a *sql.Tx. Services pick which one through WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
