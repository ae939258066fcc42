package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/hatbazar/storefront/pkg/errors"
)

// DB is the subset of pgxpool.Pool the storage needs. It is satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage is a Postgres-backed key-value store for deployments that do not
// run Redis. Values live in the storefront_kv table.
type Storage struct {
	db DB
}

// New creates a Postgres-backed storage.
func New(db DB) *Storage {
	return &Storage{db: db}
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT slot_value FROM storefront_kv WHERE slot_key = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("key %s: %w", key, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("postgres get: %w", err)
	}
	return value, nil
}

// Set upserts the value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO storefront_kv (slot_key, slot_value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (slot_key)
		 DO UPDATE SET slot_value = EXCLUDED.slot_value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("postgres set: %w", err)
	}
	return nil
}

// Delete removes the key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM storefront_kv WHERE slot_key = $1`, key)
	if err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}
