package sqlx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Stmt wraps *sqlx.Stmt with tracing instrumentation. The query is
// captured at prepare time and reused for every execution span.
type Stmt struct {
	*sqlx.Stmt
	cfg   *config
	query string
}

// GetContext executes the prepared statement for a single row.
func (s *Stmt) GetContext(ctx context.Context, dest interface{}, args ...interface{}) error {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	err := s.Stmt.GetContext(spanCtx, dest, args...)
	done(err)
	return err
}

// SelectContext executes the prepared statement and scans results into dest.
func (s *Stmt) SelectContext(ctx context.Context, dest interface{}, args ...interface{}) error {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	err := s.Stmt.SelectContext(spanCtx, dest, args...)
	done(err)
	return err
}

// ExecContext executes the prepared statement.
func (s *Stmt) ExecContext(ctx context.Context, args ...interface{}) (sql.Result, error) {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	result, err := s.Stmt.ExecContext(spanCtx, args...)
	done(err)
	return result, err
}

// QueryContext executes the prepared statement and returns rows.
func (s *Stmt) QueryContext(ctx context.Context, args ...interface{}) (*sql.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	rows, err := s.Stmt.QueryContext(spanCtx, args...)
	done(err)
	return rows, err
}

// QueryRowContext executes the prepared statement and returns a single row.
func (s *Stmt) QueryRowContext(ctx context.Context, args ...interface{}) *sql.Row {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	row := s.Stmt.QueryRowContext(spanCtx, args...)
	done(nil)
	return row
}

// QueryxContext executes the prepared statement and returns sqlx.Rows.
func (s *Stmt) QueryxContext(ctx context.Context, args ...interface{}) (*sqlx.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	rows, err := s.Stmt.QueryxContext(spanCtx, args...)
	done(err)
	return rows, err
}

// QueryRowxContext executes the prepared statement and returns sqlx.Row.
func (s *Stmt) QueryRowxContext(ctx context.Context, args ...interface{}) *sqlx.Row {
	spanCtx, done := startStatementSpan(ctx, s.cfg, s.query, args)
	row := s.Stmt.QueryRowxContext(spanCtx, args...)
	done(nil)
	return row
}

// Unsafe returns a version of Stmt that silently ignores missing
// destination fields.
func (s *Stmt) Unsafe() *Stmt {
	return &Stmt{
		Stmt:  s.Stmt.Unsafe(),
		cfg:   s.cfg,
		query: s.query,
	}
}

// NamedStmt wraps *sqlx.NamedStmt with tracing instrumentation.
type NamedStmt struct {
	*sqlx.NamedStmt
	cfg   *config
	query string
}

// GetContext executes the named statement for a single row.
func (ns *NamedStmt) GetContext(ctx context.Context, dest interface{}, arg interface{}) error {
	spanCtx, done := startStatementSpan(ctx, ns.cfg, ns.query, namedArg(arg))
	err := ns.NamedStmt.GetContext(spanCtx, dest, arg)
	done(err)
	return err
}

// SelectContext executes the named statement and scans results into dest.
func (ns *NamedStmt) SelectContext(ctx context.Context, dest interface{}, arg interface{}) error {
	spanCtx, done := startStatementSpan(ctx, ns.cfg, ns.query, namedArg(arg))
	err := ns.NamedStmt.SelectContext(spanCtx, dest, arg)
	done(err)
	return err
}

// ExecContext executes the named statement.
func (ns *NamedStmt) ExecContext(ctx context.Context, arg interface{}) (sql.Result, error) {
	spanCtx, done := startStatementSpan(ctx, ns.cfg, ns.query, namedArg(arg))
	result, err := ns.NamedStmt.ExecContext(spanCtx, arg)
	done(err)
	return result, err
}

// MustExecContext executes the named statement and panics on error.
func (ns *NamedStmt) MustExecContext(ctx context.Context, arg interface{}) sql.Result {
	result, err := ns.ExecContext(ctx, arg)
	if err != nil {
		panic(err)
	}
	return result
}

// QueryContext executes the named statement and returns rows.
func (ns *NamedStmt) QueryContext(ctx context.Context, arg interface{}) (*sql.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, ns.cfg, ns.query, namedArg(arg))
	rows, err := ns.NamedStmt.QueryContext(spanCtx, arg)
	done(err)
	return rows, err
}

// QueryxContext executes the named statement and returns sqlx.Rows.
func (ns *NamedStmt) QueryxContext(ctx context.Context, arg interface{}) (*sqlx.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, ns.cfg, ns.query, namedArg(arg))
	rows, err := ns.NamedStmt.QueryxContext(spanCtx, arg)
	done(err)
	return rows, err
}

// QueryRowxContext executes the named statement and returns sqlx.Row.
func (ns *NamedStmt) QueryRowxContext(ctx context.Context, arg interface{}) *sqlx.Row {
	spanCtx, done := startStatementSpan(ctx, ns.cfg, ns.query, namedArg(arg))
	row := ns.NamedStmt.QueryRowxContext(spanCtx, arg)
	done(nil)
	return row
}

// Unsafe returns a version of NamedStmt that silently ignores missing
// destination fields.
func (ns *NamedStmt) Unsafe() *NamedStmt {
	return &NamedStmt{
		NamedStmt: ns.NamedStmt.Unsafe(),
		cfg:       ns.cfg,
		query:     ns.query,
	}
}
