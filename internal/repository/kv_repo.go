package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// KVRepository is the durable key-value store the session is persisted in
type KVRepository interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key; removing a missing key is not an error
	Remove(ctx context.Context, key string) error
}

// PgxConn is the subset of *pgxpool.Pool the Postgres repository uses
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresKVRepository struct {
	db PgxConn
}

// NewPostgresKVRepository creates a KVRepository backed by the kv_store table
func NewPostgresKVRepository(db PgxConn) KVRepository {
	return &postgresKVRepository{db: db}
}

// Get retrieves a value by key
func (r *postgresKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	sql := `SELECT value FROM kv_store WHERE key = $1`
	err := r.db.QueryRow(ctx, sql, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or overwrites a value
func (r *postgresKVRepository) Set(ctx context.Context, key, value string) error {
	sql := `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Remove deletes a key
func (r *postgresKVRepository) Remove(ctx context.Context, key string) error {
	sql := `DELETE FROM kv_store WHERE key = $1`
	if _, err := r.db.Exec(ctx, sql, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}
