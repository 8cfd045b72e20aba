package dbapi

import "context"

// Conn wraps a raw driver connection. Lifecycle calls delegate directly,
// transactional calls are instrumented, and Cursor produces instrumented
// cursor proxies.
//
// The connect arguments captured at construction are immutable and
// shared read-only with every cursor the connection produces.
type Conn struct {
	raw           RawConn
	cfg           *config
	connectParams *Params
	id            string

	// tx is the transaction-scope capability, resolved once at
	// construction. nil when the driver does not provide it.
	tx RawTxConn
}

func newConn(raw RawConn, cfg *config, connectParams *Params, id string) *Conn {
	c := &Conn{
		raw:           raw,
		cfg:           cfg,
		connectParams: connectParams,
		id:            id,
	}
	c.tx, _ = raw.(RawTxConn)
	return c
}

// ID returns the identifier recorded as the sql.conn.id attribute on
// every span this connection produces.
func (c *Conn) ID() string {
	return c.id
}

// Cursor opens a cursor on the raw connection and wraps it. Cursor
// acquisition itself is not spanned: it is cheap and non-blocking for
// the drivers this convention covers.
func (c *Conn) Cursor(ctx context.Context, params *Params) (*Cursor, error) {
	raw, err := c.raw.Cursor(ctx, params)
	if err != nil {
		return nil, err
	}

	var cursorParams *Params
	if !params.Empty() {
		cursorParams = params
	}

	return newCursor(raw, c.cfg, c.connectParams, cursorParams, c.id), nil
}

// Commit commits the current transaction inside a "<module>:commit"
// span. The raw return value passes through unchanged.
func (c *Conn) Commit(ctx context.Context) error {
	spanCtx, done := startSpan(ctx, c.cfg, statementSpan{
		statement: keywordCommit,
		connID:    c.id,
	})
	err := c.raw.Commit(spanCtx)
	done(err)
	return err
}

// Rollback rolls back the current transaction inside a
// "<module>:rollback" span.
func (c *Conn) Rollback(ctx context.Context) error {
	spanCtx, done := startSpan(ctx, c.cfg, statementSpan{
		statement: keywordRollback,
		connID:    c.id,
	})
	err := c.raw.Rollback(spanCtx)
	done(err)
	return err
}

// Close delegates directly to the raw connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// BeginTx enters the connection's transaction scope, for drivers whose
// connections begin and end transactions explicitly. The raw begin call
// is wrapped in a "<module>:begin_transaction" span and the cursor it
// yields is returned wrapped in the scope.
//
// Returns ErrNotSupported when the raw connection has no transaction
// scope capability.
func (c *Conn) BeginTx(ctx context.Context) (*TxScope, error) {
	if c.tx == nil {
		return nil, ErrNotSupported
	}

	spanCtx, done := funcSpan(ctx, c.cfg, c.cfg.ModuleName+":begin_transaction", c.id)
	rawCur, err := c.tx.Begin(spanCtx)
	done(err)
	if err != nil {
		return nil, err
	}

	return &TxScope{
		conn:   c,
		cursor: newCursor(rawCur, c.cfg, c.connectParams, nil, c.id),
	}, nil
}

// TxScope is an open transaction scope obtained from Conn.BeginTx.
type TxScope struct {
	conn   *Conn
	cursor *Cursor
}

// Cursor returns the instrumented cursor the transaction scope yielded.
func (t *TxScope) Cursor() *Cursor {
	return t.cursor
}

// End exits the transaction scope. The span is keyed "commit" when cause
// is nil and "rollback" otherwise; whether the driver actually commits,
// rolls back, or surfaces cause is entirely its own decision. The raw
// end call's return value passes through unchanged.
func (t *TxScope) End(ctx context.Context, cause error) error {
	outcome := keywordCommit
	if cause != nil {
		outcome = keywordRollback
	}

	spanCtx, done := startSpan(ctx, t.conn.cfg, statementSpan{
		statement: outcome,
		connID:    t.conn.id,
	})
	err := t.conn.tx.End(spanCtx, cause)
	done(err)
	return err
}
