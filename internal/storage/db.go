package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/liftlog/liftlog/internal/config"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Dialect selects SQL placeholder style and migration set.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB wraps a *sql.DB and provides repository methods.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database described by cfg and pings it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	var (
		driverName string
		dsn        string
		dialect    Dialect
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		driverName, dialect = "sqlite", SQLite
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path)
	case config.DriverPostgres:
		driverName, dialect = "pgx", Postgres
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == SQLite {
		// One connection: in-memory databases are per-connection, and a single
		// writer avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{sql: sqlDB, dialect: dialect}, nil
}

// NewWithDB wraps an existing connection pool. Used by tests.
func NewWithDB(sqlDB *sql.DB, dialect Dialect) *DB {
	return &DB{sql: sqlDB, dialect: dialect}
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.sql.Close()
}

// Dialect reports which SQL dialect the DB speaks.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Migrate applies all pending embedded migrations for the DB's dialect.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(db.dialect))
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	var drv database.Driver
	switch db.dialect {
	case SQLite:
		drv, err = migratesqlite.WithInstance(db.sql, &migratesqlite.Config{})
	case Postgres:
		drv, err = migratepgx.WithInstance(db.sql, &migratepgx.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", db.dialect)
	}
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	// m.Close is not called: it would close the shared *sql.DB.
	m, err := migrate.NewWithInstance("iofs", src, string(db.dialect), drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (uint, error) {
	var version int64
	err := db.sql.QueryRowContext(ctx, `SELECT version FROM schema_migrations LIMIT 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return uint(version), nil
}

// rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// withTx runs fn inside a transaction, committing on success.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (db *DB) insertReturningID(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, db.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
