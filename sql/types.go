package sql

import (
	"context"
	"database/sql/driver"
)

// DriverConn is the full set of connection interfaces the
// instrumentation forwards to when the underlying driver supports them.
type DriverConn interface {
	driver.Conn
	driver.ConnPrepareContext
	driver.ConnBeginTx
	driver.ExecerContext
	driver.QueryerContext
	driver.Pinger
}

// DriverStmt is the full set of statement interfaces the
// instrumentation forwards to when the underlying driver supports them.
type DriverStmt interface {
	driver.Stmt
	driver.StmtExecContext
	driver.StmtQueryContext
}

// DriverConnector pairs a connector with its driver.
type DriverConnector interface {
	Connect(ctx context.Context) (driver.Conn, error)
	Driver() driver.Driver
}
