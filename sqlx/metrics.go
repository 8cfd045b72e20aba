package sqlx

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the metric instruments for database operations.
type metrics struct {
	module string

	// Operation latency histogram
	operationDuration metric.Float64Histogram
}

// newMetrics creates and registers metric instruments.
func newMetrics(meter metric.Meter, module string) (*metrics, error) {
	m := &metrics{module: module}
	var err error

	m.operationDuration, err = meter.Float64Histogram(
		"db.client.operation.duration",
		metric.WithDescription("Duration of database client operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// recordOperationDuration records the duration of one database call.
func (m *metrics) recordOperationDuration(
	ctx context.Context,
	duration time.Duration,
	operation string,
	err error,
) {
	if m == nil || m.operationDuration == nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, 3)
	if m.module != "" {
		attrs = append(attrs, attribute.String("db.module", m.module))
	}
	if operation != "" {
		attrs = append(attrs, attribute.String("db.operation", operation))
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs = append(attrs, attribute.String("status", status))

	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// poolStat describes one *sql.DBStats field exported as an observable
// int64 instrument.
type poolStat struct {
	name    string
	desc    string
	counter bool
	read    func(sql.DBStats) int64
}

var poolStats = []poolStat{
	{name: "db.client.connections.open",
		desc: "Number of open connections in the pool",
		read: func(s sql.DBStats) int64 { return int64(s.OpenConnections) }},
	{name: "db.client.connections.idle",
		desc: "Number of idle connections in the pool",
		read: func(s sql.DBStats) int64 { return int64(s.Idle) }},
	{name: "db.client.connections.max",
		desc: "Maximum number of connections allowed in the pool",
		read: func(s sql.DBStats) int64 { return int64(s.MaxOpenConnections) }},
	{name: "db.client.connections.used",
		desc: "Number of connections currently in use",
		read: func(s sql.DBStats) int64 { return int64(s.InUse) }},
	{name: "db.client.connections.wait_count",
		desc:    "Total number of times waited for a connection",
		counter: true,
		read:    func(s sql.DBStats) int64 { return s.WaitCount }},
}

// registerPoolMetrics exports pool statistics as observable instruments,
// collected lazily on each scrape.
func registerPoolMetrics(meter metric.Meter, db *sql.DB, attrs []attribute.KeyValue) error {
	type boundStat struct {
		inst metric.Int64Observable
		read func(sql.DBStats) int64
	}

	bound := make([]boundStat, 0, len(poolStats))
	observables := make([]metric.Observable, 0, len(poolStats)+1)

	for _, ps := range poolStats {
		var (
			inst metric.Int64Observable
			err  error
		)
		if ps.counter {
			inst, err = meter.Int64ObservableCounter(ps.name,
				metric.WithDescription(ps.desc),
				metric.WithUnit("{connection}"))
		} else {
			inst, err = meter.Int64ObservableGauge(ps.name,
				metric.WithDescription(ps.desc),
				metric.WithUnit("{connection}"))
		}
		if err != nil {
			return err
		}
		bound = append(bound, boundStat{inst: inst, read: ps.read})
		observables = append(observables, inst)
	}

	// WaitDuration is the one float-valued stat.
	waitDuration, err := meter.Float64ObservableCounter(
		"db.client.connections.wait_duration",
		metric.WithDescription("Total time waited for connections in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}
	observables = append(observables, waitDuration)

	opts := metric.WithAttributes(attrs...)
	_, err = meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			stats := db.Stats()
			for _, b := range bound {
				o.ObserveInt64(b.inst, b.read(stats), opts)
			}
			o.ObserveFloat64(waitDuration, stats.WaitDuration.Seconds(), opts)
			return nil
		},
		observables...,
	)

	return err
}

// RecordPoolMetrics registers connection pool metrics for a wrapped
// sqlx database. The db.module attribute is taken from the DB's
// configuration; additional attributes may be passed and are merged.
//
// Example:
//
//	db, _ := dbtracesqlx.Open("postgres", dsn,
//	    dbtracesqlx.WithModuleName("postgres"),
//	)
//
//	err := dbtracesqlx.RecordPoolMetrics(db, otel.GetMeterProvider().Meter("myapp"))
func RecordPoolMetrics(db *DB, meter metric.Meter, attrs ...attribute.KeyValue) error {
	if db.cfg != nil {
		attrs = append(db.cfg.baseAttributes(), attrs...)
	}

	return registerPoolMetrics(meter, db.DB.DB, attrs)
}
