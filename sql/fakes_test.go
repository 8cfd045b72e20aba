package sql

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestTracer returns an in-memory exporter and a tracer provider
// that exports synchronously, so spans are visible immediately.
func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	return exporter, tp
}

// spanNames extracts the names of exported spans in export order.
func spanNames(exporter *tracetest.InMemoryExporter) []string {
	spans := exporter.GetSpans()
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name
	}
	return names
}

// spanAttrs flattens a span's attributes into a map for assertions.
func spanAttrs(span tracetest.SpanStub) map[string]string {
	attrs := make(map[string]string, len(span.Attributes))
	for _, kv := range span.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	return attrs
}

// hasAttr reports whether a span carries the given attribute key.
func hasAttr(span tracetest.SpanStub, key attribute.Key) bool {
	for _, kv := range span.Attributes {
		if kv.Key == key {
			return true
		}
	}
	return false
}

// testDriver is a simple driver that returns a canned connection.
type testDriver struct {
	conn    driver.Conn
	openErr error
	opened  []string
}

func (d *testDriver) Open(dsn string) (driver.Conn, error) {
	d.opened = append(d.opened, dsn)
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.conn, nil
}

// fakeConn implements the full DriverConn surface plus session
// management, recording queries and injecting errors per call.
type fakeConn struct {
	stmt       driver.Stmt
	tx         driver.Tx
	prepareErr error
	beginErr   error
	execErr    error
	queryErr   error
	pingErr    error
	closeErr   error

	gotQueries []string
	gotArgs    [][]driver.NamedValue
	pings      int
	resets     int
	closed     bool
	valid      bool
}

var (
	_ DriverConn             = (*fakeConn)(nil)
	_ driver.SessionResetter = (*fakeConn)(nil)
	_ driver.Validator       = (*fakeConn)(nil)
)

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	c.gotQueries = append(c.gotQueries, query)
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	return c.stmt, nil
}

func (c *fakeConn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return c.Prepare(query)
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.closeErr
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

func (c *fakeConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	return c.Begin()
}

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.gotQueries = append(c.gotQueries, query)
	c.gotArgs = append(c.gotArgs, args)
	if c.execErr != nil {
		return nil, c.execErr
	}
	return driver.RowsAffected(1), nil
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.gotQueries = append(c.gotQueries, query)
	c.gotArgs = append(c.gotArgs, args)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return &fakeRows{}, nil
}

func (c *fakeConn) Ping(_ context.Context) error {
	c.pings++
	return c.pingErr
}

func (c *fakeConn) ResetSession(_ context.Context) error {
	c.resets++
	return nil
}

func (c *fakeConn) IsValid() bool {
	return c.valid
}

// basicConn implements only driver.Conn, to exercise the fallback
// paths for drivers without the context interfaces.
type basicConn struct {
	stmt     driver.Stmt
	tx       driver.Tx
	beginErr error
	begins   int
}

var _ driver.Conn = (*basicConn)(nil)

func (c *basicConn) Prepare(_ string) (driver.Stmt, error) { return c.stmt, nil }
func (c *basicConn) Close() error                          { return nil }

func (c *basicConn) Begin() (driver.Tx, error) {
	c.begins++
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.tx, nil
}

// fakeStmt implements the full DriverStmt surface.
type fakeStmt struct {
	execErr  error
	queryErr error
	closeErr error

	gotArgs [][]driver.NamedValue
	closed  bool
}

var _ DriverStmt = (*fakeStmt)(nil)

func (s *fakeStmt) Close() error {
	s.closed = true
	return s.closeErr
}

func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamed(args))
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamed(args))
}

func (s *fakeStmt) ExecContext(_ context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.gotArgs = append(s.gotArgs, args)
	if s.execErr != nil {
		return nil, s.execErr
	}
	return driver.RowsAffected(1), nil
}

func (s *fakeStmt) QueryContext(_ context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.gotArgs = append(s.gotArgs, args)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return &fakeRows{}, nil
}

// basicStmt implements only driver.Stmt, forcing the Exec/Query
// fallback in the statement wrapper.
type basicStmt struct {
	gotValues [][]driver.Value
	execErr   error
	queryErr  error
}

var _ driver.Stmt = (*basicStmt)(nil)

func (s *basicStmt) Close() error  { return nil }
func (s *basicStmt) NumInput() int { return -1 }

func (s *basicStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.gotValues = append(s.gotValues, args)
	if s.execErr != nil {
		return nil, s.execErr
	}
	return driver.RowsAffected(1), nil
}

func (s *basicStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.gotValues = append(s.gotValues, args)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return &fakeRows{}, nil
}

// fakeTx records commit/rollback calls.
type fakeTx struct {
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
}

var _ driver.Tx = (*fakeTx)(nil)

func (t *fakeTx) Commit() error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rollbacks++
	return t.rollbackErr
}

// fakeRows is an empty result set.
type fakeRows struct {
	closed bool
}

var _ driver.Rows = (*fakeRows)(nil)

func (r *fakeRows) Columns() []string { return nil }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func (r *fakeRows) Next(_ []driver.Value) error { return io.EOF }

func valuesToNamed(values []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(values))
	for i, v := range values {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return named
}
