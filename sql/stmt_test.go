package sql

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceStmt_ExecContext(t *testing.T) {
	t.Run("given context statement, then spans the prepared query", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		raw := &fakeStmt{}
		cfg := newConfig(WithTracerProvider(tp), WithModuleName("mysql"))
		stmt := newTraceStmt(raw, cfg, "UPDATE users SET name = ?", "conn-1")

		args := []driver.NamedValue{{Ordinal: 1, Value: "bob"}}
		result, err := stmt.ExecContext(context.Background(), args)

		require.NoError(t, err)
		require.NotNil(t, result)
		require.Len(t, raw.gotArgs, 1)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "mysql:UPDATE", spans[0].Name)
		attrs := spanAttrs(spans[0])
		assert.Equal(t, "UPDATE users SET name = ?", attrs["sql"])
		assert.Equal(t, "conn-1", attrs["sql.conn.id"])
	})

	t.Run("given statement without StmtExecContext, then falls back to Exec", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		raw := &basicStmt{}
		cfg := newConfig(WithTracerProvider(tp))
		stmt := newTraceStmt(raw, cfg, "INSERT INTO t VALUES (?)", "")

		args := []driver.NamedValue{{Ordinal: 1, Value: int64(7)}}
		_, err := stmt.ExecContext(context.Background(), args)

		require.NoError(t, err)
		require.Len(t, raw.gotValues, 1)
		assert.Equal(t, []driver.Value{int64(7)}, raw.gotValues[0])
		require.Equal(t, []string{"sql:INSERT"}, spanNames(exporter))
	})

	t.Run("given exec error, then error passes through with failed span", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		raw := &fakeStmt{execErr: assert.AnError}
		stmt := newTraceStmt(raw, newConfig(WithTracerProvider(tp)), "DELETE FROM t", "")

		result, err := stmt.ExecContext(context.Background(), nil)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, result)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "Error", spans[0].Status.Code.String())
	})
}

func TestTraceStmt_QueryContext(t *testing.T) {
	t.Run("given context statement, then spans the prepared query", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		raw := &fakeStmt{}
		stmt := newTraceStmt(raw, newConfig(WithTracerProvider(tp)), "SELECT * FROM users", "")

		rows, err := stmt.QueryContext(context.Background(), nil)

		require.NoError(t, err)
		require.NotNil(t, rows)
		require.Equal(t, []string{"sql:SELECT"}, spanNames(exporter))
	})

	t.Run("given statement without StmtQueryContext, then falls back to Query", func(t *testing.T) {
		raw := &basicStmt{}
		stmt := newTraceStmt(raw, newConfig(), "SELECT * FROM users WHERE id = ?", "")

		args := []driver.NamedValue{{Ordinal: 1, Value: int64(3)}}
		rows, err := stmt.QueryContext(context.Background(), args)

		require.NoError(t, err)
		require.NotNil(t, rows)
		require.Len(t, raw.gotValues, 1)
		assert.Equal(t, []driver.Value{int64(3)}, raw.gotValues[0])
	})

	t.Run("given query error, then error passes through", func(t *testing.T) {
		raw := &fakeStmt{queryErr: assert.AnError}
		stmt := newTraceStmt(raw, newConfig(), "SELECT 1", "")

		rows, err := stmt.QueryContext(context.Background(), nil)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, rows)
	})
}

func TestTraceStmt_Passthrough(t *testing.T) {
	t.Run("given close and NumInput, then delegates without spans", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		raw := &fakeStmt{}
		stmt := newTraceStmt(raw, newConfig(WithTracerProvider(tp)), "SELECT 1", "")

		assert.Equal(t, -1, stmt.NumInput())
		require.NoError(t, stmt.Close())
		assert.True(t, raw.closed)
		assert.Empty(t, exporter.GetSpans())
	})
}

func TestNamedValueToValue(t *testing.T) {
	named := []driver.NamedValue{
		{Ordinal: 1, Value: int64(1)},
		{Name: "x", Ordinal: 2, Value: "two"},
	}

	assert.Equal(t, []driver.Value{int64(1), "two"}, namedValueToValue(named))
}
