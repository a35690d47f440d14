// Package database opens the service's SQL connection pool.
//
// The driver is chosen from the DATABASE_URL scheme: PostgreSQL URLs use the
// pgx driver and sqlite:// or file: URLs use the pure-Go SQLite driver, which
// keeps local development and tests free of an external server.
package database
