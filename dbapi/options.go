package dbapi

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/arclight-labs/dbtrace-go/dbapi"

	// defaultModuleName prefixes span names when no module name is set.
	defaultModuleName = "dbapi"

	// defaultConnectName identifies the connect call in its span name.
	defaultConnectName = "connect"
)

// Keyword argument keys always stripped before connect arguments are
// recorded. The raw connect call still receives them.
var defaultRedactedKeys = []string{"password", "passwd"}

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
	// prefix, e.g. "mysql" yields spans named "mysql:SELECT".
	ModuleName string

	// ConnectName is the identifying name of the connect call, used in
	// the "<module>:<connectName>" span around the raw connect.
	ConnectName string

	// QuerySanitizer sanitizes SQL statements before adding them to
	// spans. If nil, statements are included as-is.
	QuerySanitizer func(statement string) string

	// DisableQuery disables recording of SQL statements in spans.
	DisableQuery bool

	// redactedKeys are keyword argument keys removed from recorded
	// connect arguments.
	redactedKeys map[string]struct{}

	// Logger, when set together with SlowQueryThreshold, receives a
	// warning for every instrumented call that exceeds the threshold.
	Logger *zerolog.Logger

	// SlowQueryThreshold is the duration above which a call is logged
	// as slow. Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
}

// newConfig creates a new config with defaults and applies options.
func newConfig(opts ...Option) *config {
	cfg := &config{
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
		ModuleName:     defaultModuleName,
		ConnectName:    defaultConnectName,
		redactedKeys:   make(map[string]struct{}),
	}
	for _, k := range defaultRedactedKeys {
		cfg.redactedKeys[k] = struct{}{}
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// With no provider configured globally these are no-op
	// implementations: no errors, just no telemetry collected.
	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	cfg.Metrics, _ = newMetrics(cfg.Meter, cfg.ModuleName)

	return cfg
}

// logSlow emits a warning for calls exceeding the slow-query threshold.
func (cfg *config) logSlow(elapsed time.Duration, operation, statement string) {
	if cfg.Logger == nil || cfg.SlowQueryThreshold <= 0 || elapsed < cfg.SlowQueryThreshold {
		return
	}

	ev := cfg.Logger.Warn().
		Str("module", cfg.ModuleName).
		Str("operation", operation).
		Dur("elapsed", elapsed)
	if !cfg.DisableQuery {
		if cfg.QuerySanitizer != nil {
			statement = cfg.QuerySanitizer(statement)
		}
		ev = ev.Str("statement", statement)
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

// WithModuleName sets the driver module identifier.
// It becomes the prefix of every span name produced by the proxies:
//
//	dbapi.NewConnector(connect, dbapi.WithModuleName("mysql"))
//	// spans: "mysql:connect", "mysql:SELECT", "mysql:commit", ...
func WithModuleName(name string) Option {
	return func(cfg *config) {
		cfg.ModuleName = name
	}
}

// WithConnectName sets the identifying name of the wrapped connect call.
// The span around the raw connect is named "<module>:<name>".
// Defaults to "connect".
func WithConnectName(name string) Option {
	return func(cfg *config) {
		cfg.ConnectName = name
	}
}

// WithQuerySanitizer sets a custom statement sanitizer applied before a
// statement is recorded on a span. Use DefaultQuerySanitizer for a basic
// implementation that masks literals with "?" placeholders.
func WithQuerySanitizer(fn func(string) string) Option {
	return func(cfg *config) {
		cfg.QuerySanitizer = fn
	}
}

// WithDisableQuery disables recording of SQL statements in spans
// entirely. The operation name (SELECT, INSERT, ...) is still recorded.
func WithDisableQuery() Option {
	return func(cfg *config) {
		cfg.DisableQuery = true
	}
}

// WithRedactedKeys adds keyword argument keys to strip from recorded
// connect arguments, on top of the defaults ("password", "passwd").
// Redaction only affects what is recorded; the raw connect call always
// receives the original arguments.
func WithRedactedKeys(keys ...string) Option {
	return func(cfg *config) {
		for _, k := range keys {
			cfg.redactedKeys[k] = struct{}{}
		}
	}
}

// WithLogger sets the logger used for slow-query warnings.
// Has no effect unless WithSlowQueryThreshold is also set.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.Logger = &logger
	}
}

// WithSlowQueryThreshold enables slow-query logging: any instrumented
// call taking longer than d is logged at warn level through the logger
// set with WithLogger.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(cfg *config) {
		cfg.SlowQueryThreshold = d
	}
}
