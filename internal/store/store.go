// Package store persists the encoded credential in a SQL key/value table so
// it survives process restarts, the way browser local storage does.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/credential"
	"github.com/loykin/servicecall/internal/retry"
)

// Dialect hides the driver-specific SQL.
type Dialect interface {
	Placeholder(index int) string
	DriverName() string
	Connect(dsn string) (*sql.DB, error)
	EnsureStatement(table string) string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateTableName rejects anything that is not a plain SQL identifier.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("store: invalid table name %q", name)
	}
	return nil
}

// SQLStore implements credential.Storage on a single table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
	retry   *retry.Config
	now     func() time.Time
}

var _ credential.Storage = (*SQLStore)(nil)

// NewSQLStore wraps an open database and ensures the table exists.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, table string) (*SQLStore, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	s := &SQLStore{db: db, dialect: dialect, table: table, retry: retry.DefaultConfig(), now: time.Now}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) logger() *common.Logger {
	return common.GetLogger().WithComponent("store").WithStore(s.dialect.DriverName())
}

func (s *SQLStore) ensure(ctx context.Context) error {
	q := s.dialect.EnsureStatement(s.table)
	s.logger().Debug("ensuring storage table", "table", s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("store: create table %s: %w", s.table, err)
	}
	return nil
}

// Get returns credential.ErrNotFound for a missing key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	q := fmt.Sprintf("SELECT value FROM %s WHERE key = %s", s.table, s.dialect.Placeholder(1))
	v, err := retry.Value(ctx, s.retry, func() (string, error) {
		var v string
		err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
		return v, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", credential.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get %s: %w", key, err)
	}
	return v, nil
}

// Set upserts key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	q := fmt.Sprintf(
		"INSERT INTO %s(key, value, updated_at) VALUES(%s, %s, %s) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		s.table, s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3))
	err := retry.Do(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, q, key, value, s.timestamp())
		return err
	})
	if err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	s.logger().Debug("stored value", "key", key)
	return nil
}

// Remove deletes key; removing a missing key is not an error.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE key = %s", s.table, s.dialect.Placeholder(1))
	err := retry.Do(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, q, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("store: remove %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) timestamp() any {
	t := s.now().UTC()
	if s.dialect.DriverName() == "sqlite" {
		return t.Format(time.RFC3339Nano)
	}
	return t
}
