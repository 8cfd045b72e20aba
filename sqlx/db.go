package sqlx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DB wraps *sqlx.DB with tracing instrumentation. It provides
// instrumented versions of the sqlx-specific methods like Get, Select
// and NamedExec alongside the standard query methods.
type DB struct {
	*sqlx.DB
	cfg *config
}

// Open opens a database connection with tracing instrumentation.
//
// Example:
//
//	db, err := dbtracesqlx.Open("postgres", dsn,
//	    dbtracesqlx.WithModuleName("postgres"),
//	)
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, cfg: newConfig(opts...)}, nil
}

// Connect opens and verifies a database connection.
// It is equivalent to Open followed by Ping.
func Connect(ctx context.Context, driverName, dsn string, opts ...Option) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, cfg: newConfig(opts...)}, nil
}

// NewDB wraps an existing *sql.DB with sqlx and instrumentation.
//
// Example:
//
//	sqlDB, _ := sql.Open("postgres", dsn)
//	db := dbtracesqlx.NewDB(sqlDB, "postgres",
//	    dbtracesqlx.WithModuleName("postgres"),
//	)
func NewDB(db *sql.DB, driverName string, opts ...Option) *DB {
	return &DB{
		DB:  sqlx.NewDb(db, driverName),
		cfg: newConfig(opts...),
	}
}

// MustConnect is like Connect but panics on error.
func MustConnect(ctx context.Context, driverName, dsn string, opts ...Option) *DB {
	db, err := Connect(ctx, driverName, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// MustOpen is like Open but panics on error.
func MustOpen(driverName, dsn string, opts ...Option) *DB {
	db, err := Open(driverName, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// GetContext executes a query that is expected to return at most one row
// and scans the result into dest.
func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	err := db.DB.GetContext(spanCtx, dest, query, args...)
	done(err)
	return err
}

// SelectContext executes a query and scans all results into dest.
func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	err := db.DB.SelectContext(spanCtx, dest, query, args...)
	done(err)
	return err
}

// NamedExecContext executes a named query.
func (db *DB) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, namedArg(arg))
	result, err := db.DB.NamedExecContext(spanCtx, query, arg)
	done(err)
	return result, err
}

// NamedQueryContext executes a named query and returns rows.
func (db *DB) NamedQueryContext(ctx context.Context, query string, arg interface{}) (*sqlx.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, namedArg(arg))
	rows, err := db.DB.NamedQueryContext(spanCtx, query, arg)
	done(err)
	return rows, err
}

// QueryxContext executes a query and returns sqlx.Rows.
func (db *DB) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	rows, err := db.DB.QueryxContext(spanCtx, query, args...)
	done(err)
	return rows, err
}

// QueryRowxContext executes a query and returns a single sqlx.Row.
// Errors surface on Scan, so the span reflects only the call itself.
func (db *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	row := db.DB.QueryRowxContext(spanCtx, query, args...)
	done(nil)
	return row
}

// ExecContext executes a query without returning rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	result, err := db.DB.ExecContext(spanCtx, query, args...)
	done(err)
	return result, err
}

// QueryContext executes a query and returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	rows, err := db.DB.QueryContext(spanCtx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext executes a query and returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	spanCtx, done := startStatementSpan(ctx, db.cfg, query, args)
	row := db.DB.QueryRowContext(spanCtx, query, args...)
	done(nil)
	return row
}

// PingContext verifies the database connection.
func (db *DB) PingContext(ctx context.Context) error {
	spanCtx, done := startKeywordSpan(ctx, db.cfg, keywordPing)
	err := db.DB.PingContext(spanCtx)
	done(err)
	return err
}

// BeginTxx starts an instrumented transaction. The begin call is
// spanned as "<module>:begin_transaction".
func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	spanCtx, done := startKeywordSpan(ctx, db.cfg, keywordBegin)
	tx, err := db.DB.BeginTxx(spanCtx, opts)
	done(err)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: tx, cfg: db.cfg}, nil
}

// Beginx starts an instrumented transaction with default options.
func (db *DB) Beginx() (*Tx, error) {
	return db.BeginTxx(context.Background(), nil)
}

// MustBeginTx starts a transaction and panics on error.
func (db *DB) MustBeginTx(ctx context.Context, opts *sql.TxOptions) *Tx {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		panic(err)
	}
	return tx
}

// MustBegin starts a transaction and panics on error.
func (db *DB) MustBegin() *Tx {
	return db.MustBeginTx(context.Background(), nil)
}

// PreparexContext prepares an instrumented statement.
func (db *DB) PreparexContext(ctx context.Context, query string) (*Stmt, error) {
	spanCtx, done := startPrepareSpan(ctx, db.cfg, query)
	stmt, err := db.DB.PreparexContext(spanCtx, query)
	done(err)
	if err != nil {
		return nil, err
	}

	return &Stmt{Stmt: stmt, cfg: db.cfg, query: query}, nil
}

// Preparex prepares a statement without context.
func (db *DB) Preparex(query string) (*Stmt, error) {
	return db.PreparexContext(context.Background(), query)
}

// PrepareNamedContext prepares an instrumented named statement.
func (db *DB) PrepareNamedContext(ctx context.Context, query string) (*NamedStmt, error) {
	spanCtx, done := startPrepareSpan(ctx, db.cfg, query)
	stmt, err := db.DB.PrepareNamedContext(spanCtx, query)
	done(err)
	if err != nil {
		return nil, err
	}

	return &NamedStmt{NamedStmt: stmt, cfg: db.cfg, query: query}, nil
}

// PrepareNamed prepares a named statement without context.
func (db *DB) PrepareNamed(query string) (*NamedStmt, error) {
	return db.PrepareNamedContext(context.Background(), query)
}

// Unsafe returns a version of DB that silently ignores missing
// destination fields.
func (db *DB) Unsafe() *DB {
	return &DB{
		DB:  db.DB.Unsafe(),
		cfg: db.cfg,
	}
}
