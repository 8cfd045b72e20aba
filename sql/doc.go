// Package sql provides an instrumented database/sql driver wrapper that
// carries the dbtrace span and tag scheme into stdlib database code.
//
// # Features
//
//   - Span per query named "<module>:<OPERATION>"
//   - Statement recorded as the sql attribute, with optional sanitization
//   - Commit and rollback recorded as keyword spans without a sql tag
//   - Per-connection identifier recorded as sql.conn.id
//   - Latency histogram and connection pool metrics
//   - Full compatibility with database/sql
//
// # Quick Start
//
// Open a database connection with instrumentation:
//
//	import dbtracesql "github.com/arclight-labs/dbtrace-go/sql"
//
//	db, err := dbtracesql.Open("postgres", dsn,
//	    dbtracesql.WithModuleName("postgres"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	// Use like standard *sql.DB
//	rows, err := db.QueryContext(ctx, "SELECT * FROM users")
//
// # Driver Registration
//
// For more control, register a wrapped driver:
//
//	driver := dbtracesql.WrapDriver(pq.Driver{},
//	    dbtracesql.WithModuleName("postgres"),
//	)
//	sql.Register("postgres-traced", driver)
//
//	db, _ := sql.Open("postgres-traced", dsn)
//
// # Statement Sanitization
//
// Pass dbapi.DefaultQuerySanitizer (or your own func) to mask literals:
//
//	db, _ := dbtracesql.Open("postgres", dsn,
//	    dbtracesql.WithQuerySanitizer(dbapi.DefaultQuerySanitizer),
//	)
//	// Recorded as: "SELECT * FROM users WHERE id = ?"
//
// # Observability
//
// Traces:
//   - Span per query named "<module>:<OPERATION>"
//   - Attributes: sql, sql.conn.id, db.module, db.operation
//
// Metrics:
//   - db.client.operation.duration (histogram by operation)
//   - db.client.connections.* (pool gauges, see RecordPoolMetrics)
package sql
