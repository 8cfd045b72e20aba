// Package database opens the example's instrumented database handle.
package database

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/arclight-labs/dbtrace-go/dbapi"
	"github.com/arclight-labs/dbtrace-go/example/sql/internal/config"
	dbtracesql "github.com/arclight-labs/dbtrace-go/sql"
	_ "github.com/lib/pq" // Register postgres driver
	"github.com/rs/zerolog"

	"go.opentelemetry.io/otel"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection with tracing instrumentation.
func New(ctx context.Context) (*DB, error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	db, err := dbtracesql.Open("postgres", config.DefaultDSN,
		dbtracesql.WithModuleName(config.DefaultModule),
		dbtracesql.WithQuerySanitizer(dbapi.DefaultQuerySanitizer),
		dbtracesql.WithLogger(logger),
		dbtracesql.WithSlowQueryThreshold(200*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.DefaultMaxOpen)
	db.SetMaxIdleConns(config.DefaultMaxIdle)
	db.SetConnMaxLifetime(time.Duration(config.DefaultMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(config.DefaultMaxIdleTime) * time.Second)

	// Register connection pool metrics. The db.module attribute is
	// detected from the wrapped driver.
	err = dbtracesql.RecordPoolMetrics(db, otel.GetMeterProvider().Meter("example-app"))
	if err != nil {
		log.Printf("Failed to register pool metrics: %v", err)
	}

	return &DB{DB: db}, nil
}
