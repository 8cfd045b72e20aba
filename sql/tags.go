package sql

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared with the dbapi package's tag scheme.
var (
	attrSQL       = attribute.Key("sql")
	attrSQLParams = attribute.Key("sql.params")
	attrConnID    = attribute.Key("sql.conn.id")
	attrModule    = attribute.Key("db.module")
	attrOperation = attribute.Key("db.operation")
)

// Keyword pseudo-operations spanned without a sql tag.
const (
	keywordCommit   = "commit"
	keywordRollback = "rollback"
	keywordBegin    = "begin_transaction"
	keywordPing     = "ping"
	keywordConnect  = "connect"
)

// extractOperation extracts the SQL operation (first word) from a query.
// Returns the uppercase operation name, or an empty string for an empty
// query. Unlike the dbapi operation token, a single-word query yields
// that word: database/sql queries are real SQL, where a lone word is a
// command like COMMIT or VACUUM.
func extractOperation(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	spaceIdx := strings.IndexAny(query, " \t\n\r")
	if spaceIdx == -1 {
		return strings.ToUpper(query)
	}

	return strings.ToUpper(query[:spaceIdx])
}

// spanName builds "<module>:<OPERATION>" for a query span.
func spanName(cfg *config, query string) string {
	op := extractOperation(query)
	if op == "" {
		op = "SQL"
	}
	return cfg.ModuleName + ":" + op
}

// closer finishes the span and metrics around one driver call.
type closer func(err error)

// baseAttributes returns the attributes present on every span.
func (cfg *config) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.ModuleName != "" {
		attrs = append(attrs, attrModule.String(cfg.ModuleName))
	}
	return attrs
}

// queryAttributes returns attributes for query spans.
func (cfg *config) queryAttributes(query, connID string) []attribute.KeyValue {
	attrs := cfg.baseAttributes()

	if !cfg.DisableQuery && query != "" {
		statement := strings.TrimSpace(query)
		if cfg.QuerySanitizer != nil {
			statement = cfg.QuerySanitizer(statement)
		}
		attrs = append(attrs, attrSQL.String(statement))
	}

	if op := extractOperation(query); op != "" {
		attrs = append(attrs, attrOperation.String(op))
	}
	if connID != "" {
		attrs = append(attrs, attrConnID.String(connID))
	}

	return attrs
}

// startQuerySpan opens a span around one statement call. args are
// recorded as sql.params only when the RecordParams option is enabled.
func startQuerySpan(ctx context.Context, cfg *config, connID, query string, args []driver.NamedValue) (context.Context, closer) {
	start := time.Now()
	operation := extractOperation(query)

	attrs := cfg.queryAttributes(query, connID)
	if cfg.RecordParams && len(args) > 0 {
		attrs = append(attrs, attrSQLParams.String(formatNamedValues(args)))
	}

	ctx, span := cfg.Tracer.Start(ctx, spanName(cfg, query),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		elapsed := time.Since(start)
		cfg.Metrics.recordOperationDuration(ctx, elapsed, operation, err)
		cfg.logSlow(elapsed, operation, query)
	}
}

// startKeywordSpan opens a span for a non-SQL pseudo-operation (commit,
// rollback, begin_transaction, ping). No sql tag is attached: it would
// only duplicate the operation name.
func startKeywordSpan(ctx context.Context, cfg *config, connID, keyword string) (context.Context, closer) {
	start := time.Now()

	attrs := cfg.baseAttributes()
	if connID != "" {
		attrs = append(attrs, attrConnID.String(connID))
	}

	ctx, span := cfg.Tracer.Start(ctx, cfg.ModuleName+":"+keyword,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		cfg.Metrics.recordOperationDuration(ctx, time.Since(start), keyword, err)
	}
}

// startConnectSpan marks the latency of establishing a connection.
func startConnectSpan(ctx context.Context, cfg *config) (context.Context, closer) {
	return startKeywordSpan(ctx, cfg, "", keywordConnect)
}

// formatNamedValues renders driver arguments for the sql.params tag.
func formatNamedValues(args []driver.NamedValue) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Name != "" {
			parts[i] = fmt.Sprintf("%s=%v", a.Name, a.Value)
		} else {
			parts[i] = fmt.Sprintf("%v", a.Value)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
