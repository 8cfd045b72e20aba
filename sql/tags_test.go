package sql

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOperation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "given select query, then returns SELECT",
			query: "SELECT * FROM users",
			want:  "SELECT",
		},
		{
			name:  "given lowercase insert, then returns uppercase INSERT",
			query: "insert into users values (1)",
			want:  "INSERT",
		},
		{
			name:  "given leading whitespace, then trims before extracting",
			query: "\n\t  UPDATE users SET name = 'x'",
			want:  "UPDATE",
		},
		{
			name:  "given single word, then returns that word uppercased",
			query: "vacuum",
			want:  "VACUUM",
		},
		{
			name:  "given tab separator, then splits on tab",
			query: "DELETE\tFROM users",
			want:  "DELETE",
		},
		{
			name:  "given empty query, then returns empty string",
			query: "",
			want:  "",
		},
		{
			name:  "given whitespace only, then returns empty string",
			query: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractOperation(tt.query))
		})
	}
}

func TestSpanName(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		query string
		want  string
	}{
		{
			name:  "given default module, then prefixes with sql",
			query: "SELECT 1",
			want:  "sql:SELECT",
		},
		{
			name:  "given custom module, then prefixes with module name",
			opts:  []Option{WithModuleName("postgres")},
			query: "INSERT INTO t VALUES (1)",
			want:  "postgres:INSERT",
		},
		{
			name:  "given empty query, then falls back to SQL",
			query: "",
			want:  "sql:SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.opts...)
			assert.Equal(t, tt.want, spanName(cfg, tt.query))
		})
	}
}

func TestQueryAttributes(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		query  string
		connID string
		want   map[string]string
	}{
		{
			name:   "given query and conn id, then records all attributes",
			query:  "  SELECT * FROM users  ",
			connID: "conn-1",
			want: map[string]string{
				"db.module":    "sql",
				"sql":          "SELECT * FROM users",
				"db.operation": "SELECT",
				"sql.conn.id":  "conn-1",
			},
		},
		{
			name:  "given disabled query recording, then omits sql attribute",
			opts:  []Option{WithDisableQuery()},
			query: "SELECT secret FROM vault",
			want: map[string]string{
				"db.module":    "sql",
				"db.operation": "SELECT",
			},
		},
		{
			name: "given sanitizer, then records sanitized statement",
			opts: []Option{WithQuerySanitizer(func(string) string {
				return "SELECT ?"
			})},
			query: "SELECT 'secret'",
			want: map[string]string{
				"db.module":    "sql",
				"sql":          "SELECT ?",
				"db.operation": "SELECT",
			},
		},
		{
			name:  "given empty query, then records module only",
			query: "",
			want: map[string]string{
				"db.module": "sql",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.opts...)

			got := cfg.queryAttributes(tt.query, tt.connID)

			gotMap := make(map[string]string, len(got))
			for _, kv := range got {
				gotMap[string(kv.Key)] = kv.Value.Emit()
			}
			assert.Equal(t, tt.want, gotMap)
		})
	}
}

func TestStartQuerySpan(t *testing.T) {
	t.Run("given query, then span carries statement and operation", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		cfg := newConfig(WithTracerProvider(tp), WithModuleName("mysql"))

		_, done := startQuerySpan(context.Background(), cfg, "conn-1", "SELECT * FROM users", nil)
		done(nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "mysql:SELECT", spans[0].Name)
		attrs := spanAttrs(spans[0])
		assert.Equal(t, "SELECT * FROM users", attrs["sql"])
		assert.Equal(t, "SELECT", attrs["db.operation"])
		assert.Equal(t, "conn-1", attrs["sql.conn.id"])
		assert.NotContains(t, attrs, "sql.params")
	})

	t.Run("given args without RecordParams, then omits sql.params", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		cfg := newConfig(WithTracerProvider(tp))

		args := []driver.NamedValue{{Ordinal: 1, Value: int64(42)}}
		_, done := startQuerySpan(context.Background(), cfg, "", "SELECT * FROM t WHERE id = ?", args)
		done(nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.NotContains(t, spanAttrs(spans[0]), "sql.params")
	})

	t.Run("given args with RecordParams, then records sql.params", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		cfg := newConfig(WithTracerProvider(tp), WithRecordParams())

		args := []driver.NamedValue{
			{Ordinal: 1, Value: int64(42)},
			{Name: "status", Value: "active"},
		}
		_, done := startQuerySpan(context.Background(), cfg, "", "SELECT * FROM t", args)
		done(nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "[42 status=active]", spanAttrs(spans[0])["sql.params"])
	})

	t.Run("given error, then span has error status", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		cfg := newConfig(WithTracerProvider(tp))

		_, done := startQuerySpan(context.Background(), cfg, "", "SELECT 1", nil)
		done(assert.AnError)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "Error", spans[0].Status.Code.String())
		require.Len(t, spans[0].Events, 1)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
	})
}

func TestStartKeywordSpan(t *testing.T) {
	t.Run("given keyword, then span has no sql tag", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		cfg := newConfig(WithTracerProvider(tp), WithModuleName("postgres"))

		_, done := startKeywordSpan(context.Background(), cfg, "conn-9", keywordCommit)
		done(nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "postgres:commit", spans[0].Name)
		assert.False(t, hasAttr(spans[0], attrSQL))
		assert.False(t, hasAttr(spans[0], attrOperation))
		assert.Equal(t, "conn-9", spanAttrs(spans[0])["sql.conn.id"])
	})

	t.Run("given no conn id, then omits sql.conn.id", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		cfg := newConfig(WithTracerProvider(tp))

		_, done := startConnectSpan(context.Background(), cfg)
		done(nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "sql:connect", spans[0].Name)
		assert.False(t, hasAttr(spans[0], attrConnID))
	})
}

func TestFormatNamedValues(t *testing.T) {
	tests := []struct {
		name string
		args []driver.NamedValue
		want string
	}{
		{
			name: "given positional args, then renders values",
			args: []driver.NamedValue{
				{Ordinal: 1, Value: int64(5)},
				{Ordinal: 2, Value: "abc"},
			},
			want: "[5 abc]",
		},
		{
			name: "given named args, then renders name=value",
			args: []driver.NamedValue{
				{Name: "id", Value: int64(7)},
			},
			want: "[id=7]",
		},
		{
			name: "given no args, then renders empty brackets",
			args: nil,
			want: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNamedValues(tt.args))
		})
	}
}
