// Package sqlite provides the SQLite dialect for the credential key/value store.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/loykin/servicecall/internal/constants"
	_ "modernc.org/sqlite"
)

// SQLite configuration constants
const (
	busyTimeoutMS    = 5000
	foreignKeysParam = "_fk=1"
)

// Dialect implements SQL dialect for SQLite
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// Placeholder returns SQLite-style placeholders (?)
func (d *Dialect) Placeholder(int) string {
	return "?"
}

// DriverName returns the driver name for logging
func (d *Dialect) DriverName() string {
	return "sqlite"
}

// Connect opens a single-writer pool.
func (d *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(constants.DefaultSQLiteLifetime)
	db.SetConnMaxIdleTime(constants.DefaultSQLiteIdleTime)
	return db, nil
}

// EnsureStatement creates the key/value table.
func (d *Dialect) EnsureStatement(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TEXT NOT NULL)", table)
}
