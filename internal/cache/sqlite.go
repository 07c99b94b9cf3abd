package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"feedwatch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Cache backed by a local SQLite database. It exists for
// deployments without a Redis server and for tests (use ":memory:").
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the value for key, treating expired rows as absent.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var expires sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query cache entry: %w", err)
	}

	if expires.Valid {
		exp, err := time.Parse(timeLayout, expires.String)
		if err != nil {
			return "", false, fmt.Errorf("parse expiry: %w", err)
		}
		if !exp.After(s.now().UTC()) {
			// Lazy eviction; the row is already semantically gone.
			_, _ = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
			return "", false, nil
		}
	}

	return value, true, nil
}

// Set stores value under key, clearing any previous expiry.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, NULL)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = NULL`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Del removes key.
func (s *SQLite) Del(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Expire sets the remaining time-to-live for an existing key.
func (s *SQLite) Expire(ctx context.Context, key string, ttl time.Duration) error {
	exp := s.now().UTC().Add(ttl).Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`UPDATE cache_entries SET expires_at = ? WHERE key = ?`, exp, key,
	)
	if err != nil {
		return fmt.Errorf("expire cache entry: %w", err)
	}
	return nil
}
