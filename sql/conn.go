package sql

import (
	"context"
	"database/sql/driver"

	"github.com/google/uuid"
)

// Compile-time interface checks.
var (
	_ driver.Conn               = (*traceConn)(nil)
	_ driver.ConnPrepareContext = (*traceConn)(nil)
	_ driver.ConnBeginTx        = (*traceConn)(nil)
	_ driver.ExecerContext      = (*traceConn)(nil)
	_ driver.QueryerContext     = (*traceConn)(nil)
	_ driver.Pinger             = (*traceConn)(nil)
	_ driver.SessionResetter    = (*traceConn)(nil)
	_ driver.Validator          = (*traceConn)(nil)
)

// traceConn wraps a driver.Conn with tracing instrumentation. Every
// span it produces carries the connection's id as sql.conn.id.
type traceConn struct {
	conn driver.Conn
	cfg  *config
	id   string
}

// newTraceConn creates a new instrumented connection.
func newTraceConn(conn driver.Conn, cfg *config) *traceConn {
	return &traceConn{
		conn: conn,
		cfg:  cfg,
		id:   uuid.NewString(),
	}
}

// Prepare implements driver.Conn.
func (c *traceConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return newTraceStmt(stmt, c.cfg, query, c.id), nil
}

// Close implements driver.Conn.
func (c *traceConn) Close() error {
	return c.conn.Close()
}

// Begin implements driver.Conn.
// Deprecated: kept for driver.Conn interface compatibility.
func (c *traceConn) Begin() (driver.Tx, error) {
	tx, err := c.conn.Begin() //nolint:staticcheck // Required for driver.Conn interface
	if err != nil {
		return nil, err
	}
	return newTraceTx(tx, c.cfg, c.id), nil
}

// PrepareContext implements driver.ConnPrepareContext.
func (c *traceConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var stmt driver.Stmt
	var err error

	if preparer, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = preparer.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}

	if err != nil {
		return nil, err
	}
	return newTraceStmt(stmt, c.cfg, query, c.id), nil
}

// BeginTx implements driver.ConnBeginTx. The begin call is spanned as
// "<module>:begin_transaction".
func (c *traceConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	spanCtx, done := startKeywordSpan(ctx, c.cfg, c.id, keywordBegin)

	var tx driver.Tx
	var err error

	if beginner, ok := c.conn.(driver.ConnBeginTx); ok {
		tx, err = beginner.BeginTx(spanCtx, opts)
	} else {
		tx, err = c.conn.Begin() //nolint:staticcheck // Fallback for older drivers
	}

	done(err)
	if err != nil {
		return nil, err
	}

	return newTraceTx(tx, c.cfg, c.id), nil
}

// ExecContext implements driver.ExecerContext.
func (c *traceConn) ExecContext(
	ctx context.Context,
	query string,
	args []driver.NamedValue,
) (driver.Result, error) {
	execer, ok := c.conn.(driver.ExecerContext)
	if !ok {
		// Fallback: let database/sql prepare and execute
		return nil, driver.ErrSkip
	}

	spanCtx, done := startQuerySpan(ctx, c.cfg, c.id, query, args)
	result, err := execer.ExecContext(spanCtx, query, args)
	done(err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryContext implements driver.QueryerContext.
func (c *traceConn) QueryContext(
	ctx context.Context,
	query string,
	args []driver.NamedValue,
) (driver.Rows, error) {
	queryer, ok := c.conn.(driver.QueryerContext)
	if !ok {
		// Fallback: let database/sql handle it
		return nil, driver.ErrSkip
	}

	spanCtx, done := startQuerySpan(ctx, c.cfg, c.id, query, args)
	rows, err := queryer.QueryContext(spanCtx, query, args)
	done(err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping implements driver.Pinger.
func (c *traceConn) Ping(ctx context.Context) error {
	spanCtx, done := startKeywordSpan(ctx, c.cfg, c.id, keywordPing)

	var err error
	if pinger, ok := c.conn.(driver.Pinger); ok {
		err = pinger.Ping(spanCtx)
	}

	done(err)
	return err
}

// ResetSession implements driver.SessionResetter.
func (c *traceConn) ResetSession(ctx context.Context) error {
	if resetter, ok := c.conn.(driver.SessionResetter); ok {
		return resetter.ResetSession(ctx)
	}
	return nil
}

// IsValid implements driver.Validator.
func (c *traceConn) IsValid() bool {
	if validator, ok := c.conn.(driver.Validator); ok {
		return validator.IsValid()
	}
	return true
}
