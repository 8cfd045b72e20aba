package dbapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeCursor is a scripted RawCursor recording every call it receives.
type fakeCursor struct {
	err error // returned from every statement call

	calls      []string
	lastParams []any
	lastSeq    [][]any
	procOut    []any

	rows   [][]any
	closed bool
}

func (f *fakeCursor) Execute(_ context.Context, statement string) error {
	f.calls = append(f.calls, "Execute:"+statement)
	return f.err
}

func (f *fakeCursor) ExecuteParams(_ context.Context, statement string, params []any) error {
	f.calls = append(f.calls, "ExecuteParams:"+statement)
	f.lastParams = params
	return f.err
}

func (f *fakeCursor) ExecuteMany(_ context.Context, statement string, seq [][]any) error {
	f.calls = append(f.calls, "ExecuteMany:"+statement)
	f.lastSeq = seq
	return f.err
}

func (f *fakeCursor) CallProc(_ context.Context, proc string) ([]any, error) {
	f.calls = append(f.calls, "CallProc:"+proc)
	return f.procOut, f.err
}

func (f *fakeCursor) CallProcParams(_ context.Context, proc string, params []any) ([]any, error) {
	f.calls = append(f.calls, "CallProcParams:"+proc)
	f.lastParams = params
	return f.procOut, f.err
}

func (f *fakeCursor) FetchOne() ([]any, error) {
	if len(f.rows) == 0 {
		return nil, nil
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row, nil
}

func (f *fakeCursor) FetchMany(n int) ([][]any, error) {
	if n > len(f.rows) {
		n = len(f.rows)
	}
	out := f.rows[:n]
	f.rows = f.rows[n:]
	return out, nil
}

func (f *fakeCursor) FetchAll() ([][]any, error) {
	out := f.rows
	f.rows = nil
	return out, nil
}

func (f *fakeCursor) Close() error {
	f.closed = true
	return nil
}

// fakeMultiSetCursor adds the optional result-set and size capabilities.
type fakeMultiSetCursor struct {
	fakeCursor

	nextSetCalls  int
	inputSizes    []int
	outputSize    int
	outputSizeCol int
	sizeCallsSeen int
}

func (f *fakeMultiSetCursor) NextSet(context.Context) (bool, error) {
	f.nextSetCalls++
	return true, nil
}

func (f *fakeMultiSetCursor) SetInputSizes(sizes []int) error {
	f.inputSizes = sizes
	f.sizeCallsSeen++
	return nil
}

func (f *fakeMultiSetCursor) SetOutputSizes(size, column int) error {
	f.outputSize = size
	f.outputSizeCol = column
	f.sizeCallsSeen++
	return nil
}

// fakeConn is a scripted RawConn.
type fakeConn struct {
	cursor      *fakeCursor
	cursorErr   error
	commitErr   error
	rollbackErr error

	gotCursorParams *Params
	commits         int
	rollbacks       int
	closed          bool
}

func (f *fakeConn) Cursor(_ context.Context, params *Params) (RawCursor, error) {
	f.gotCursorParams = params
	if f.cursorErr != nil {
		return nil, f.cursorErr
	}
	if f.cursor == nil {
		f.cursor = &fakeCursor{}
	}
	return f.cursor, nil
}

func (f *fakeConn) Commit(context.Context) error {
	f.commits++
	return f.commitErr
}

func (f *fakeConn) Rollback(context.Context) error {
	f.rollbacks++
	return f.rollbackErr
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// fakeTxConn adds the explicit transaction scope capability.
type fakeTxConn struct {
	fakeConn

	beginErr error
	endErr   error
	begins   int
	endCause []error
}

func (f *fakeTxConn) Begin(context.Context) (RawCursor, error) {
	f.begins++
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	if f.cursor == nil {
		f.cursor = &fakeCursor{}
	}
	return f.cursor, nil
}

func (f *fakeTxConn) End(_ context.Context, cause error) error {
	f.endCause = append(f.endCause, cause)
	return f.endErr
}

// fakeDriver produces a scripted ConnectFunc that records the arguments
// the raw connect call actually received.
type fakeDriver struct {
	conn       RawConn
	connectErr error

	gotParams *Params
	connects  int
}

func (d *fakeDriver) connect(_ context.Context, params *Params) (RawConn, error) {
	d.connects++
	d.gotParams = params
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	return d.conn, nil
}

// newTestTrace builds a recording tracer provider and a context carrying
// an ambient span, the way callers of the proxies normally have one.
// Spans recorded by the returned exporter exclude the ambient span until
// endAmbient is called.
func newTestTrace(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider, context.Context, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})

	ctx, ambient := tp.Tracer("test").Start(context.Background(), "ambient")
	return exporter, tp, ctx, func() { ambient.End() }
}

// spanNames extracts the names of all finished spans in end order.
func spanNames(spans tracetest.SpanStubs) []string {
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name
	}
	return names
}

// spanAttrs flattens a finished span's attributes into a string map.
func spanAttrs(s tracetest.SpanStub) map[string]string {
	out := make(map[string]string, len(s.Attributes))
	for _, kv := range s.Attributes {
		out[string(kv.Key)] = kv.Value.AsString()
	}
	return out
}
