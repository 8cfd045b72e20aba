package dbapi

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by optional cursor and connection
// capabilities that the underlying driver does not provide.
var ErrNotSupported = errors.New("dbapi: not supported by driver")

// ConnectFunc is the raw connect call of a DB API v2 style driver.
// Positional and keyword arguments are passed through unchanged,
// including credentials.
type ConnectFunc func(ctx context.Context, params *Params) (RawConn, error)

// RawConn is the connection surface of a DB API v2 style driver.
type RawConn interface {
	// Cursor opens a cursor. The params argument may be nil.
	Cursor(ctx context.Context, params *Params) (RawCursor, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close() error
}

// RawTxConn is implemented by connections whose transaction scope is
// entered and exited explicitly: Begin starts the transaction and yields
// a cursor, End commits or rolls back depending on the outcome the
// caller reports. Mirrors drivers whose connections act as transaction
// context managers.
type RawTxConn interface {
	RawConn

	Begin(ctx context.Context) (RawCursor, error)

	// End closes the transaction scope. cause is the error (if any) of
	// the protected block; the driver decides whether to commit,
	// roll back, and what error to surface.
	End(ctx context.Context, cause error) error
}

// RawCursor is the cursor surface of a DB API v2 style driver.
//
// Execute and ExecuteParams are separate methods because the two call
// shapes are observably different to some drivers: Execute corresponds
// to execute(sql) with no parameter argument at all, ExecuteParams to
// execute(sql, params) even when params is empty.
type RawCursor interface {
	Execute(ctx context.Context, statement string) error
	ExecuteParams(ctx context.Context, statement string, params []any) error
	ExecuteMany(ctx context.Context, statement string, paramSeq [][]any) error

	CallProc(ctx context.Context, proc string) ([]any, error)
	CallProcParams(ctx context.Context, proc string, params []any) ([]any, error)

	FetchOne() ([]any, error)
	FetchMany(n int) ([][]any, error)
	FetchAll() ([][]any, error)
	Close() error
}

// NextSetter is an optional RawCursor capability for drivers that
// support multiple result sets.
type NextSetter interface {
	NextSet(ctx context.Context) (bool, error)
}

// InputSizeSetter is an optional RawCursor capability.
type InputSizeSetter interface {
	SetInputSizes(sizes []int) error
}

// OutputSizeSetter is an optional RawCursor capability.
type OutputSizeSetter interface {
	SetOutputSizes(size int, column int) error
}
