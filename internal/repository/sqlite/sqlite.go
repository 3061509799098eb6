// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go translation
// of the SQLite C code, so no C compiler is needed.
//
// SCHEMA:
// The schema lives in versioned SQL files under migrations/, embedded into the
// binary and applied by golang-migrate on startup. golang-migrate records the
// applied version in a schema_migrations table, so restarting the server
// against an existing database only applies what is new.
//
// CONNECTIONS:
// SQLite allows one writer at a time, so the pool is capped at a single open
// connection. Every query, including transactions, goes through it in turn.
// This also keeps ":memory:" databases coherent: each new connection to
// ":memory:" would otherwise see its own empty database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// querier is the subset of *sql.DB and *sql.Tx the stores need. Stores hold a
// querier so the same code runs inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB owns the connection pool and hands out the per-entity stores.
type DB struct {
	conn *sql.DB

	articles      *ArticleDB
	users         *UserDB
	refreshTokens *RefreshTokenDB
}

// New opens the SQLite database at dbPath and applies pending migrations.
//
// dbPath examples:
//   - "data/devblog.db" → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	// Ping forces a real connection so a bad path fails here, not on the
	// first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress (file databases only).
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; refresh_tokens.user_id relies on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	db.articles = &ArticleDB{conn: conn, q: conn}
	db.users = &UserDB{q: conn}
	db.refreshTokens = &RefreshTokenDB{q: conn}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Articles returns the article store.
func (db *DB) Articles() *ArticleDB { return db.articles }

// Users returns the user store.
func (db *DB) Users() *UserDB { return db.users }

// RefreshTokens returns the refresh token store.
func (db *DB) RefreshTokens() *RefreshTokenDB { return db.refreshTokens }

// migrate applies every embedded migration that has not run yet.
//
// The migrate instance is deliberately not closed: closing it would close the
// database driver, and with it our *sql.DB.
func (db *DB) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}
