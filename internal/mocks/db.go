package mocks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// TxDB returns a real *sql.DB backed by a stub driver whose transactions
// always begin, commit, and roll back cleanly. Service tests pass it to
// constructors so transactional flows can run against mocked stores
// without a database. Any attempt to prepare or execute SQL through it
// fails.
func TxDB() *sql.DB {
	return sql.OpenDB(stubConnector{})
}

type stubConnector struct{}

func (stubConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return &stubConn{}, nil
}

func (stubConnector) Driver() driver.Driver {
	return stubDriver{}
}

type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) {
	return &stubConn{}, nil
}

type stubConn struct{}

func (*stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("stub connection cannot prepare statements")
}

func (*stubConn) Close() error {
	return nil
}

func (*stubConn) Begin() (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

type stubTx struct{}

func (stubTx) Commit() error {
	return nil
}

func (stubTx) Rollback() error {
	return nil
}
