// Package storage selects the key-value backend for the ticket store.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/it-support-portal/internal/adapters/secondary/file"
	"github.com/lorrc/it-support-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/it-support-portal/internal/adapters/secondary/postgres"
	"github.com/lorrc/it-support-portal/internal/adapters/secondary/redis"
	"github.com/lorrc/it-support-portal/internal/config"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// Open returns the backend named by cfg.Storage.Backend. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.KeyValueStore, error) {
	logger = logger.With("backend", cfg.Storage.Backend)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage, tickets are lost on restart")
		return memory.NewKVStore(), nil

	case config.BackendFile:
		store, err := file.NewKVStore(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		logger.Info("using file storage", "dir", cfg.Storage.Dir)
		return store, nil

	case config.BackendPostgres:
		return openPostgres(ctx, cfg.Database, logger)

	case config.BackendRedis:
		store, err := redis.NewKVStore(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func openPostgres(ctx context.Context, db config.DatabaseConfig, logger *slog.Logger) (ports.KeyValueStore, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(db.MaxOpenConns)
	poolConfig.MinConns = int32(db.MaxIdleConns)
	poolConfig.MaxConnLifetime = db.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = db.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("database connection established")

	if err := postgres.RunMigrations(db.URL); err != nil {
		pool.Close()
		return nil, err
	}

	return postgres.NewKVStore(pool), nil
}
