// Package store persists per-hunk review state in a SQLite database
// scoped to one repository.
package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sqlx handle for the review database.
type DB struct {
	*sqlx.DB
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the review database at path, creating it if needed,
// and applies pending schema migrations. The busy_timeout pragma is the
// only cross-process coordination: concurrent writers queue on the
// SQLite lock instead of failing.
func Open(path string) (*DB, func(), error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	conn, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open review database: %w", err)
	}

	db := &DB{conn}
	cleanup := func() { _ = conn.Close() }

	if err := db.runMigrations(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, cleanup, nil
}

func (db *DB) runMigrations() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db.DB.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
