package sql

import (
	"context"
	"database/sql/driver"
)

// Compile-time interface check.
var _ driver.Tx = (*traceTx)(nil)

// traceTx wraps a driver.Tx with tracing instrumentation. Commit and
// rollback are keyword spans carrying no sql tag.
type traceTx struct {
	tx     driver.Tx
	cfg    *config
	connID string
}

// newTraceTx creates a new instrumented transaction.
func newTraceTx(tx driver.Tx, cfg *config, connID string) *traceTx {
	return &traceTx{
		tx:     tx,
		cfg:    cfg,
		connID: connID,
	}
}

// Commit implements driver.Tx.
func (t *traceTx) Commit() error {
	// driver.Tx has no context; the span parents on the background
	// context and still records latency and status.
	_, done := startKeywordSpan(context.Background(), t.cfg, t.connID, keywordCommit)
	err := t.tx.Commit()
	done(err)
	return err
}

// Rollback implements driver.Tx.
func (t *traceTx) Rollback() error {
	_, done := startKeywordSpan(context.Background(), t.cfg, t.connID, keywordRollback)
	err := t.tx.Rollback()
	done(err)
	return err
}
