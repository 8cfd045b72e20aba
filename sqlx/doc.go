// Package sqlx provides OpenTelemetry instrumentation for
// github.com/jmoiron/sqlx.
//
// It wraps *sqlx.DB, *sqlx.Tx, *sqlx.Stmt and *sqlx.NamedStmt so that
// every query, named query and transaction control call is traced and
// metered, while the full sqlx API (Get, Select, NamedExec, struct
// scanning) stays available.
//
// Spans are named "<module>:<OPERATION>", e.g. "postgres:SELECT", and
// carry the sql, db.operation, db.module and (optionally) sql.params
// attributes. Transaction control calls produce keyword spans such as
// "postgres:commit" without a sql attribute.
//
// # Quick Start
//
//	db, err := dbtracesqlx.Connect(ctx, "postgres", dsn,
//	    dbtracesqlx.WithModuleName("postgres"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var users []User
//	err = db.SelectContext(ctx, &users, "SELECT * FROM users WHERE active = $1", true)
//
// An existing *sql.DB, for example one opened through a wrapped driver,
// can be adopted with NewDB.
package sqlx
