// internal/kv/sqlkv/sqlkv.go

// Package sqlkv is a kv.Store backed by a single two-column table through
// sqlx. It works against PostgreSQL and SQLite; sqlx rebinding takes care
// of the placeholder dialect.
package sqlkv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"credikhaata-ledger/internal/util"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// Store implements kv.Store on top of a sqlx database handle.
type Store struct {
	db *sqlx.DB
}

// New creates the backing table if needed and returns the store.
func New(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create ledger_kv table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	query := s.db.Rebind(`SELECT value FROM ledger_kv WHERE key = ?`)
	err := s.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", util.ErrNotFound
		}
		return "", fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	query := s.db.Rebind(`INSERT INTO ledger_kv (key, value) VALUES (?, ?)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM ledger_kv WHERE key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}
