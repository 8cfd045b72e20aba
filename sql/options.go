package sql

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/arclight-labs/dbtrace-go/sql"

	// defaultModuleName prefixes span names when no module name is set.
	defaultModuleName = "sql"
)

// config holds the configuration for instrumentation.
type config struct {
	// TracerProvider is the tracer provider to use.
	// If not set, uses the global provider via otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If not set, uses the global provider via otel.GetMeterProvider().
	MeterProvider metric.MeterProvider

	// Tracer is the tracer instance created from TracerProvider.
	Tracer trace.Tracer

	// Meter is the meter instance created from MeterProvider.
	Meter metric.Meter

	// Metrics holds the metric instruments.
	Metrics *metrics

	// ModuleName is the driver module identifier used as the span name
	// prefix, e.g. "postgres" yields spans named "postgres:SELECT".
	ModuleName string

	// QuerySanitizer sanitizes SQL statements before adding them to
	// spans. If nil, statements are included as-is.
	QuerySanitizer func(query string) string

	// DisableQuery disables recording of SQL statements in spans.
	DisableQuery bool

	// RecordParams enables recording of statement arguments as the
	// sql.params attribute. Off by default: arguments routinely carry
	// user data.
	RecordParams bool

	// Logger, together with SlowQueryThreshold, enables slow-query
	// warnings.
	Logger *zerolog.Logger

	// SlowQueryThreshold is the duration above which a query is logged
	// as slow. Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
}

// newConfig creates a new config with defaults and applies options.
func newConfig(opts ...Option) *config {
	cfg := &config{
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
		ModuleName:     defaultModuleName,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// No-op implementations when no provider is configured globally.
	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	cfg.Metrics, _ = newMetrics(cfg.Meter, cfg.ModuleName)

	return cfg
}

// logSlow emits a warning for queries exceeding the slow-query threshold.
func (cfg *config) logSlow(elapsed time.Duration, operation, query string) {
	if cfg.Logger == nil || cfg.SlowQueryThreshold <= 0 || elapsed < cfg.SlowQueryThreshold {
		return
	}

	ev := cfg.Logger.Warn().
		Str("module", cfg.ModuleName).
		Str("operation", operation).
		Dur("elapsed", elapsed)
	if !cfg.DisableQuery {
		if cfg.QuerySanitizer != nil {
			query = cfg.QuerySanitizer(query)
		}
		ev = ev.Str("statement", query)
	}
	ev.Msg("slow database call")
}

// Option configures the instrumentation.
type Option func(*config)

// WithTracerProvider sets a custom tracer provider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.MeterProvider = mp
	}
}

// WithModuleName sets the driver module identifier used as the span
// name prefix and the db.module attribute.
//
// Example:
//
//	db, _ := dbtracesql.Open("postgres", dsn,
//	    dbtracesql.WithModuleName("postgres"),
//	)
//	// spans: "postgres:connect", "postgres:SELECT", "postgres:commit"
func WithModuleName(name string) Option {
	return func(cfg *config) {
		cfg.ModuleName = name
	}
}

// WithQuerySanitizer sets a custom statement sanitizer, applied before a
// statement is recorded on a span. dbapi.DefaultQuerySanitizer provides
// a basic implementation that masks literals with "?" placeholders.
func WithQuerySanitizer(fn func(string) string) Option {
	return func(cfg *config) {
		cfg.QuerySanitizer = fn
	}
}

// WithDisableQuery disables recording of SQL statements in spans
// entirely. The operation (SELECT, INSERT, ...) is still recorded.
func WithDisableQuery() Option {
	return func(cfg *config) {
		cfg.DisableQuery = true
	}
}

// WithRecordParams enables recording of statement arguments as the
// sql.params attribute. Use together with a sanitizer policy you trust:
// arguments routinely carry user data.
func WithRecordParams() Option {
	return func(cfg *config) {
		cfg.RecordParams = true
	}
}

// WithLogger sets the logger used for slow-query warnings.
// Has no effect unless WithSlowQueryThreshold is also set.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.Logger = &logger
	}
}

// WithSlowQueryThreshold enables slow-query logging: any statement
// taking longer than d is logged at warn level through the logger set
// with WithLogger.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(cfg *config) {
		cfg.SlowQueryThreshold = d
	}
}
