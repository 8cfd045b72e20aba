package dbapi

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on statement spans.
var (
	attrSQL       = attribute.Key("sql")
	attrSQLParams = attribute.Key("sql.params")
	attrSQLConn   = attribute.Key("sql.conn")
	attrSQLCursor = attribute.Key("sql.cursor")
	attrConnID    = attribute.Key("sql.conn.id")
)

// Statement keywords that produce spans without a sql attribute.
// Tagging the statement again would duplicate the operation name.
const (
	keywordCommit   = "commit"
	keywordRollback = "rollback"
)

// closer finishes the span around one instrumented call. A non-nil err
// marks the span failed; the error itself always propagates unchanged.
type closer func(err error)

// statementSpan describes one instrumented driver call.
type statementSpan struct {
	statement string

	// sqlParams is recorded only when hasSQLParams is set, so that an
	// empty-but-present parameter list is still visible in the trace.
	sqlParams    string
	hasSQLParams bool

	connectParams *Params
	cursorParams  *Params
	connID        string
}

// operationToken derives the operation name from a statement: the
// substring of the trimmed statement up to the first space. A statement
// without a space yields an empty token, never an error.
func operationToken(statement string) string {
	trimmed := strings.TrimSpace(statement)
	if idx := strings.IndexByte(trimmed, ' '); idx >= 0 {
		return trimmed[:idx]
	}
	return ""
}

// traceActive reports whether an ambient span is present in ctx.
// Without one the proxies degrade to plain pass-through rather than
// starting a fresh trace.
func traceActive(ctx context.Context) bool {
	span := trace.SpanFromContext(ctx)
	return span.SpanContext().IsValid() || span.IsRecording()
}

// startSpan opens a child span of the ambient span for one statement
// call and returns the closer that ends it. When no ambient span exists
// the returned closer only records metrics; the real call still runs and
// its result is returned unchanged.
func startSpan(ctx context.Context, cfg *config, s statementSpan) (context.Context, closer) {
	start := time.Now()

	var operation string
	addSQLTag := true
	if s.statement == keywordCommit || s.statement == keywordRollback {
		operation = s.statement
		addSQLTag = false
	} else {
		operation = operationToken(s.statement)
	}

	if !traceActive(ctx) {
		return ctx, func(err error) {
			cfg.Metrics.recordOperationDuration(ctx, time.Since(start), operation, err)
		}
	}

	attrs := make([]attribute.KeyValue, 0, 5)
	if addSQLTag && !cfg.DisableQuery {
		statement := strings.TrimSpace(s.statement)
		if cfg.QuerySanitizer != nil {
			statement = cfg.QuerySanitizer(statement)
		}
		attrs = append(attrs, attrSQL.String(statement))
	}
	if s.hasSQLParams {
		attrs = append(attrs, attrSQLParams.String(s.sqlParams))
	}
	if !s.connectParams.Empty() {
		attrs = append(attrs, attrSQLConn.String(s.connectParams.String()))
	}
	if !s.cursorParams.Empty() {
		attrs = append(attrs, attrSQLCursor.String(s.cursorParams.String()))
	}
	if s.connID != "" {
		attrs = append(attrs, attrConnID.String(s.connID))
	}

	ctx, span := cfg.Tracer.Start(ctx, cfg.ModuleName+":"+operation,
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
		cfg.logSlow(elapsed, operation, s.statement)
	}
}

// funcSpan wraps a non-statement call (connect, begin_transaction) in a
// span carrying no SQL attributes. It only marks the call's latency.
func funcSpan(ctx context.Context, cfg *config, name, connID string) (context.Context, closer) {
	if !traceActive(ctx) {
		return ctx, func(error) {}
	}

	var attrs []attribute.KeyValue
	if connID != "" {
		attrs = append(attrs, attrConnID.String(connID))
	}

	ctx, span := cfg.Tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
