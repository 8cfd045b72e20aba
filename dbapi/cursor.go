package dbapi

import "context"

// Cursor wraps a raw driver cursor. Read operations delegate directly;
// execute, executemany and stored-procedure calls are instrumented.
type Cursor struct {
	raw           RawCursor
	cfg           *config
	connectParams *Params
	cursorParams  *Params
	connID        string

	// Optional driver capabilities, resolved once at construction.
	nextSetter       NextSetter
	inputSizeSetter  InputSizeSetter
	outputSizeSetter OutputSizeSetter
}

func newCursor(raw RawCursor, cfg *config, connectParams, cursorParams *Params, connID string) *Cursor {
	c := &Cursor{
		raw:           raw,
		cfg:           cfg,
		connectParams: connectParams,
		cursorParams:  cursorParams,
		connID:        connID,
	}
	c.nextSetter, _ = raw.(NextSetter)
	c.inputSizeSetter, _ = raw.(InputSizeSetter)
	c.outputSizeSetter, _ = raw.(OutputSizeSetter)
	return c
}

// Execute runs a statement that carries no parameter argument. The
// sql.params attribute is omitted and the raw execute is called without
// a parameter argument, mirroring the caller's call shape exactly.
func (c *Cursor) Execute(ctx context.Context, statement string) error {
	spanCtx, done := c.startStatement(ctx, statement, "", false)
	err := c.raw.Execute(spanCtx, statement)
	done(err)
	return err
}

// ExecuteParams runs a statement with an explicit parameter argument.
// sql.params is always recorded, even for an empty slice: a present but
// empty parameter list is observably different from an absent one.
func (c *Cursor) ExecuteParams(ctx context.Context, statement string, params []any) error {
	spanCtx, done := c.startStatement(ctx, statement, formatValues(params), true)
	err := c.raw.ExecuteParams(spanCtx, statement, params)
	done(err)
	return err
}

// ExecuteMany runs a statement once per parameter set in seq. sql.params
// records the string form of the full sequence.
func (c *Cursor) ExecuteMany(ctx context.Context, statement string, seq [][]any) error {
	spanCtx, done := c.startStatement(ctx, statement, formatValueSeq(seq), true)
	err := c.raw.ExecuteMany(spanCtx, statement, seq)
	done(err)
	return err
}

// CallProc calls a stored procedure without a parameter argument. The
// span is keyed "sproc:<name>".
func (c *Cursor) CallProc(ctx context.Context, proc string) ([]any, error) {
	spanCtx, done := c.startStatement(ctx, "sproc:"+proc, "", false)
	out, err := c.raw.CallProc(spanCtx, proc)
	done(err)
	return out, err
}

// CallProcParams calls a stored procedure with an explicit parameter
// argument. Parameter tagging follows the same rules as ExecuteParams.
func (c *Cursor) CallProcParams(ctx context.Context, proc string, params []any) ([]any, error) {
	spanCtx, done := c.startStatement(ctx, "sproc:"+proc, formatValues(params), true)
	out, err := c.raw.CallProcParams(spanCtx, proc, params)
	done(err)
	return out, err
}

func (c *Cursor) startStatement(ctx context.Context, statement, sqlParams string, hasParams bool) (context.Context, closer) {
	return startSpan(ctx, c.cfg, statementSpan{
		statement:     statement,
		sqlParams:     sqlParams,
		hasSQLParams:  hasParams,
		connectParams: c.connectParams,
		cursorParams:  c.cursorParams,
		connID:        c.connID,
	})
}

// FetchOne delegates directly to the raw cursor.
func (c *Cursor) FetchOne() ([]any, error) {
	return c.raw.FetchOne()
}

// FetchMany delegates directly to the raw cursor.
func (c *Cursor) FetchMany(n int) ([][]any, error) {
	return c.raw.FetchMany(n)
}

// FetchAll delegates directly to the raw cursor.
func (c *Cursor) FetchAll() ([][]any, error) {
	return c.raw.FetchAll()
}

// Close delegates directly to the raw cursor.
// We could also start a span to capture the lifetime of the cursor.
func (c *Cursor) Close() error {
	return c.raw.Close()
}

// NextSet advances to the cursor's next result set. Returns
// ErrNotSupported when the raw cursor lacks the capability.
func (c *Cursor) NextSet(ctx context.Context) (bool, error) {
	if c.nextSetter == nil {
		return false, ErrNotSupported
	}
	return c.nextSetter.NextSet(ctx)
}

// SetInputSizes predefines memory areas for the next execution. Returns
// ErrNotSupported when the raw cursor lacks the capability.
func (c *Cursor) SetInputSizes(sizes []int) error {
	if c.inputSizeSetter == nil {
		return ErrNotSupported
	}
	return c.inputSizeSetter.SetInputSizes(sizes)
}

// SetOutputSizes sets a column buffer size for large columns. Returns
// ErrNotSupported when the raw cursor lacks the capability.
func (c *Cursor) SetOutputSizes(size int, column int) error {
	if c.outputSizeSetter == nil {
		return ErrNotSupported
	}
	return c.outputSizeSetter.SetOutputSizes(size, column)
}
