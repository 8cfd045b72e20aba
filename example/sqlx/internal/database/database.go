// Package database opens the example's instrumented sqlx handle.
package database

import (
	"context"
	"log"
	"time"

	"github.com/arclight-labs/dbtrace-go/example/sqlx/internal/config"
	dbtracesqlx "github.com/arclight-labs/dbtrace-go/sqlx"
	_ "github.com/lib/pq" // Register postgres driver

	"go.opentelemetry.io/otel"
)

// DB wraps the instrumented sqlx handle
type DB struct {
	*dbtracesqlx.DB
}

// New creates a new database connection with tracing instrumentation.
func New(ctx context.Context) (*DB, error) {
	db, err := dbtracesqlx.Connect(ctx, "postgres", config.DefaultDSN,
		dbtracesqlx.WithModuleName(config.DefaultModule),
	)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.DefaultMaxOpen)
	db.SetMaxIdleConns(config.DefaultMaxIdle)
	db.SetConnMaxLifetime(time.Duration(config.DefaultMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(config.DefaultMaxIdleTime) * time.Second)

	// Register connection pool metrics
	err = dbtracesqlx.RecordPoolMetrics(db, otel.GetMeterProvider().Meter("example-app"))
	if err != nil {
		log.Printf("Failed to register pool metrics: %v", err)
	}

	return &DB{DB: db}, nil
}
