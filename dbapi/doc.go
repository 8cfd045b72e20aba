// Package dbapi provides OpenTelemetry tracing for database drivers that
// follow the DB API v2 calling convention (connect, cursor, execute,
// executemany, callproc, commit, rollback).
//
// # Features
//
//   - Span per driver call, parented on the ambient trace context
//   - Operation name derived from the SQL statement (SELECT, INSERT, ...)
//   - Statement, parameter, connect and cursor arguments recorded as
//     span attributes, with credential redaction
//   - Optional query sanitization and slow-query logging
//   - Transparent pass-through: driver errors and return values are
//     never altered, and calls run unchanged when no trace is active
//
// # Quick Start
//
// Wrap the driver's connect function and use the returned proxies in
// place of the raw connection and cursor:
//
//	import "github.com/arclight-labs/dbtrace-go/dbapi"
//
//	connector := dbapi.NewConnector(myDriver.Connect,
//	    dbapi.WithModuleName("mysql"),
//	)
//
//	conn, err := connector.Connect(ctx, &dbapi.Params{
//	    Kwargs: map[string]any{"host": "db-1", "password": secret},
//	})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	cur, _ := conn.Cursor(ctx, nil)
//	_ = cur.Execute(ctx, "SELECT * FROM users")
//	_ = conn.Commit(ctx)
//
// Each call above produces one span: "mysql:connect", "mysql:SELECT",
// "mysql:commit". When no span is active in ctx the calls still run,
// without producing any trace data.
//
// # Parameter Tagging
//
// Execute and ExecuteParams are distinct on purpose: Execute invokes the
// raw driver without a parameter argument and omits the sql.params
// attribute, while ExecuteParams always passes its parameters through and
// always records sql.params, even for an empty slice. Some drivers treat
// the two call shapes differently, so the proxy mirrors the caller's
// choice exactly.
//
// # Observability
//
// Traces:
//   - Span per call named "<module>:<operation>"
//   - Attributes: sql, sql.params, sql.conn, sql.cursor, sql.conn.id
//
// Metrics:
//   - db.client.operation.duration (histogram by operation)
package dbapi
