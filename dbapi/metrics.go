package dbapi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the metric instruments for instrumented driver calls.
type metrics struct {
	module string

	// Call latency histogram.
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

// recordOperationDuration records the duration of one instrumented call.
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
