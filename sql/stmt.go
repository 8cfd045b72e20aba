package sql

import (
	"context"
	"database/sql/driver"
)

// Compile-time interface checks.
var (
	_ driver.Stmt             = (*traceStmt)(nil)
	_ driver.StmtExecContext  = (*traceStmt)(nil)
	_ driver.StmtQueryContext = (*traceStmt)(nil)
)

// traceStmt wraps a driver.Stmt with tracing instrumentation. The query
// is captured at prepare time and reused for every execution span.
type traceStmt struct {
	stmt   driver.Stmt
	cfg    *config
	query  string
	connID string
}

// newTraceStmt creates a new instrumented statement.
func newTraceStmt(stmt driver.Stmt, cfg *config, query, connID string) *traceStmt {
	return &traceStmt{
		stmt:   stmt,
		cfg:    cfg,
		query:  query,
		connID: connID,
	}
}

// Close implements driver.Stmt.
func (s *traceStmt) Close() error {
	return s.stmt.Close()
}

// NumInput implements driver.Stmt.
func (s *traceStmt) NumInput() int {
	return s.stmt.NumInput()
}

// Exec implements driver.Stmt.
// Deprecated: kept for driver.Stmt interface compatibility.
func (s *traceStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.stmt.Exec(args) //nolint:staticcheck // Required for driver.Stmt interface
}

// Query implements driver.Stmt.
// Deprecated: kept for driver.Stmt interface compatibility.
func (s *traceStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.stmt.Query(args) //nolint:staticcheck // Required for driver.Stmt interface
}

// ExecContext implements driver.StmtExecContext.
func (s *traceStmt) ExecContext(
	ctx context.Context,
	args []driver.NamedValue,
) (driver.Result, error) {
	spanCtx, done := startQuerySpan(ctx, s.cfg, s.connID, s.query, args)

	var result driver.Result
	var err error

	if execer, ok := s.stmt.(driver.StmtExecContext); ok {
		result, err = execer.ExecContext(spanCtx, args)
	} else {
		values := namedValueToValue(args)
		result, err = s.stmt.Exec(values) //nolint:staticcheck // Fallback for older drivers
	}

	done(err)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// QueryContext implements driver.StmtQueryContext.
func (s *traceStmt) QueryContext(
	ctx context.Context,
	args []driver.NamedValue,
) (driver.Rows, error) {
	spanCtx, done := startQuerySpan(ctx, s.cfg, s.connID, s.query, args)

	var rows driver.Rows
	var err error

	if queryer, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryer.QueryContext(spanCtx, args)
	} else {
		values := namedValueToValue(args)
		rows, err = s.stmt.Query(values) //nolint:staticcheck // Fallback for older drivers
	}

	done(err)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// namedValueToValue converts NamedValue slice to Value slice.
func namedValueToValue(named []driver.NamedValue) []driver.Value {
	values := make([]driver.Value, len(named))
	for i, nv := range named {
		values[i] = nv.Value
	}
	return values
}
