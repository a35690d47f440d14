package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/aescanero/basecamp/internal/config"
)

const (
	driverPostgres = "pgx"
	driverSQLite   = "sqlite"

	sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
)

// DB is the service's single connection pool. It is created once in main and
// passed to every consumer; Close releases it on shutdown.
type DB struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// Open connects to the database named by view.URL, applies the pool bounds
// and verifies the connection within the configured timeout.
func Open(ctx context.Context, view config.DatabaseView, logger *zap.Logger) (*DB, error) {
	driver, dsn, err := resolve(view.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(view.Pool.Max)
	db.SetMaxIdleConns(view.Pool.Min)

	pingCtx, cancel := context.WithTimeout(ctx, view.Timeout())
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("connected to database",
		zap.String("driver", driver),
		zap.String("url", redact(view.URL)),
		zap.Int("pool_min", view.Pool.Min),
		zap.Int("pool_max", view.Pool.Max))

	return &DB{
		db:     db,
		driver: driver,
		logger: logger,
	}, nil
}

// SQL returns the underlying pool for queries.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Driver returns the database/sql driver name in use.
func (d *DB) Driver() string {
	return d.driver
}

// Ping verifies that a connection can be obtained.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Stats returns connection pool statistics.
func (d *DB) Stats() sql.DBStats {
	return d.db.Stats()
}

// Close closes the pool.
func (d *DB) Close() error {
	d.logger.Info("closing database pool")

	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// resolve maps a DATABASE_URL to a database/sql driver name and DSN.
//
//	postgres://, postgresql://   -> pgx, URL unchanged
//	sqlite://path, sqlite:path   -> sqlite, path plus connection pragmas
//	file:path                    -> sqlite, URI plus connection pragmas
func resolve(raw string) (driver, dsn string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return driverPostgres, raw, nil
	case "sqlite", "sqlite3":
		path := strings.TrimPrefix(raw[len(u.Scheme)+1:], "//")
		if path == "" {
			return "", "", fmt.Errorf("invalid DATABASE_URL: missing sqlite path")
		}
		return driverSQLite, withPragmas(path), nil
	case "file":
		return driverSQLite, withPragmas(raw), nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

// redact hides the password of URLs that carry one.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
