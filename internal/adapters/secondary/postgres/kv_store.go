package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

const (
	getValueSQL = `SELECT value FROM kv_store WHERE key = $1`
	setValueSQL = `
INSERT INTO kv_store (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// KVStore is the secondary adapter keeping the ticket mirror in a Postgres table.
type KVStore struct {
	pool *pgxpool.Pool
}

// Ensure KVStore implements the ports.KeyValueStore interface.
var _ ports.KeyValueStore = (*KVStore)(nil)

// NewKVStore creates a new Postgres-backed store. The kv_store table must exist.
func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool}
}

// Get retrieves the raw value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.pool.QueryRow(ctx, getValueSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("select %q: %w", key, err)
	}
	return []byte(value), nil
}

// SetMany upserts every entry inside one transaction.
func (s *KVStore) SetMany(ctx context.Context, entries ...ports.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(setValueSQL, e.Key, string(e.Value))
	}

	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := execBatch(ctx, tx, batch); err != nil {
			return fmt.Errorf("upsert entries: %w", err)
		}
		return nil
	})
}

// Ping checks database connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}
