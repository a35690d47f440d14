// Package storage provides persistence adapters.
//
// Implementations:
//   - database: database/sql connection pool for PostgreSQL (pgx) and SQLite
package storage
