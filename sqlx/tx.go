package sqlx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Tx wraps *sqlx.Tx with tracing instrumentation. Statement calls are
// traced like their DB counterparts; Commit and Rollback produce
// keyword spans without a sql tag.
type Tx struct {
	*sqlx.Tx
	cfg *config
}

// GetContext executes a query that returns at most one row and scans
// into dest.
func (tx *Tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	err := tx.Tx.GetContext(spanCtx, dest, query, args...)
	done(err)
	return err
}

// SelectContext executes a query and scans all results into dest.
func (tx *Tx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	err := tx.Tx.SelectContext(spanCtx, dest, query, args...)
	done(err)
	return err
}

// NamedExecContext executes a named query within the transaction.
func (tx *Tx) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, namedArg(arg))
	result, err := tx.Tx.NamedExecContext(spanCtx, query, arg)
	done(err)
	return result, err
}

// NamedQuery executes a named query within the transaction.
func (tx *Tx) NamedQuery(query string, arg interface{}) (*sqlx.Rows, error) {
	_, done := startStatementSpan(context.Background(), tx.cfg, query, namedArg(arg))
	rows, err := tx.Tx.NamedQuery(query, arg)
	done(err)
	return rows, err
}

// QueryxContext executes a query and returns sqlx.Rows.
func (tx *Tx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	rows, err := tx.Tx.QueryxContext(spanCtx, query, args...)
	done(err)
	return rows, err
}

// QueryRowxContext executes a query and returns a single sqlx.Row.
func (tx *Tx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	row := tx.Tx.QueryRowxContext(spanCtx, query, args...)
	done(nil)
	return row
}

// ExecContext executes a query without returning rows.
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	result, err := tx.Tx.ExecContext(spanCtx, query, args...)
	done(err)
	return result, err
}

// QueryContext executes a query and returns rows.
func (tx *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	rows, err := tx.Tx.QueryContext(spanCtx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext executes a query and returns a single row.
func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	spanCtx, done := startStatementSpan(ctx, tx.cfg, query, args)
	row := tx.Tx.QueryRowContext(spanCtx, query, args...)
	done(nil)
	return row
}

// PreparexContext prepares a statement within the transaction.
func (tx *Tx) PreparexContext(ctx context.Context, query string) (*Stmt, error) {
	spanCtx, done := startPrepareSpan(ctx, tx.cfg, query)
	stmt, err := tx.Tx.PreparexContext(spanCtx, query)
	done(err)
	if err != nil {
		return nil, err
	}

	return &Stmt{Stmt: stmt, cfg: tx.cfg, query: query}, nil
}

// Preparex prepares a statement within the transaction.
func (tx *Tx) Preparex(query string) (*Stmt, error) {
	return tx.PreparexContext(context.Background(), query)
}

// PrepareNamedContext prepares a named statement within the transaction.
func (tx *Tx) PrepareNamedContext(ctx context.Context, query string) (*NamedStmt, error) {
	spanCtx, done := startPrepareSpan(ctx, tx.cfg, query)
	stmt, err := tx.Tx.PrepareNamedContext(spanCtx, query)
	done(err)
	if err != nil {
		return nil, err
	}

	return &NamedStmt{NamedStmt: stmt, cfg: tx.cfg, query: query}, nil
}

// PrepareNamed prepares a named statement within the transaction.
func (tx *Tx) PrepareNamed(query string) (*NamedStmt, error) {
	return tx.PrepareNamedContext(context.Background(), query)
}

// StmtxContext returns a version of the prepared statement bound to
// this transaction.
func (tx *Tx) StmtxContext(ctx context.Context, stmt *Stmt) *Stmt {
	return &Stmt{
		Stmt:  tx.Tx.StmtxContext(ctx, stmt.Stmt),
		cfg:   tx.cfg,
		query: stmt.query,
	}
}

// Stmtx returns a version of the prepared statement bound to this
// transaction.
func (tx *Tx) Stmtx(stmt *Stmt) *Stmt {
	return tx.StmtxContext(context.Background(), stmt)
}

// NamedStmtContext returns a version of the named statement bound to
// this transaction.
func (tx *Tx) NamedStmtContext(ctx context.Context, stmt *NamedStmt) *NamedStmt {
	return &NamedStmt{
		NamedStmt: tx.Tx.NamedStmtContext(ctx, stmt.NamedStmt),
		cfg:       tx.cfg,
		query:     stmt.query,
	}
}

// NamedStmt returns a version of the named statement bound to this
// transaction.
func (tx *Tx) NamedStmt(stmt *NamedStmt) *NamedStmt {
	return tx.NamedStmtContext(context.Background(), stmt)
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	_, done := startKeywordSpan(context.Background(), tx.cfg, keywordCommit)
	err := tx.Tx.Commit()
	done(err)
	return err
}

// Rollback aborts the transaction.
func (tx *Tx) Rollback() error {
	_, done := startKeywordSpan(context.Background(), tx.cfg, keywordRollback)
	err := tx.Tx.Rollback()
	done(err)
	return err
}

// Unsafe returns a version of Tx that silently ignores missing
// destination fields.
func (tx *Tx) Unsafe() *Tx {
	return &Tx{
		Tx:  tx.Tx.Unsafe(),
		cfg: tx.cfg,
	}
}
