package sqlx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared with the sql package's tag scheme.
var (
	attrSQL       = attribute.Key("sql")
	attrSQLParams = attribute.Key("sql.params")
	attrModule    = attribute.Key("db.module")
	attrOperation = attribute.Key("db.operation")
)

// Keyword pseudo-operations spanned without a sql tag.
const (
	keywordCommit   = "commit"
	keywordRollback = "rollback"
	keywordBegin    = "begin_transaction"
	keywordPing     = "ping"
	keywordPrepare  = "prepare"
)

// extractOperation extracts the SQL operation (first word) from a query.
// Returns the uppercase operation name, or an empty string for an empty
// query.
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

// closer finishes the span and metrics around one database call.
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
func (cfg *config) queryAttributes(query string) []attribute.KeyValue {
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

	return attrs
}

// startStatementSpan opens a span around one query call. args are
// recorded as sql.params only when the RecordParams option is enabled.
func startStatementSpan(ctx context.Context, cfg *config, query string, args []interface{}) (context.Context, closer) {
	start := time.Now()
	operation := extractOperation(query)

	attrs := cfg.queryAttributes(query)
	if cfg.RecordParams && len(args) > 0 {
		attrs = append(attrs, attrSQLParams.String(formatArgs(args)))
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
// rollback, begin_transaction, ping). No sql tag is attached.
func startKeywordSpan(ctx context.Context, cfg *config, keyword string) (context.Context, closer) {
	start := time.Now()

	ctx, span := cfg.Tracer.Start(ctx, cfg.ModuleName+":"+keyword,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(cfg.baseAttributes()...),
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

// startPrepareSpan opens a span around statement preparation. The query
// being prepared is recorded, but the span is named after the prepare
// call rather than the statement's operation.
func startPrepareSpan(ctx context.Context, cfg *config, query string) (context.Context, closer) {
	start := time.Now()

	ctx, span := cfg.Tracer.Start(ctx, cfg.ModuleName+":"+keywordPrepare,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(cfg.queryAttributes(query)...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		cfg.Metrics.recordOperationDuration(ctx, time.Since(start), keywordPrepare, err)
	}
}

// namedArg adapts the single struct or map argument of a named query to
// the args slice startStatementSpan records.
func namedArg(arg interface{}) []interface{} {
	if arg == nil {
		return nil
	}
	return []interface{}{arg}
}

// formatArgs renders query arguments for the sql.params tag.
func formatArgs(args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
