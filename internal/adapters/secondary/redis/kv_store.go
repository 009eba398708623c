package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// Config holds the connection settings for the Redis backend.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// KVStore keeps the ticket mirror in Redis string keys.
type KVStore struct {
	client *redis.Client
	prefix string
}

var _ ports.KeyValueStore = (*KVStore)(nil)

// NewKVStore connects to Redis using the provided configuration.
func NewKVStore(ctx context.Context, cfg Config, logger *slog.Logger) (*KVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB)

	return NewKVStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewKVStoreFromClient wraps an existing client.
func NewKVStoreFromClient(client *redis.Client, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

func (s *KVStore) key(k string) string {
	return s.prefix + k
}

// Get reads a single key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// SetMany writes every entry in one MULTI/EXEC block.
func (s *KVStore) SetMany(ctx context.Context, entries ...ports.Entry) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, s.key(e.Key), e.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *KVStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
