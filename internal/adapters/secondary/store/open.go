// Package store opens the override storage backend selected by configuration.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/triage-desk/internal/adapters/secondary/filestore"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/memory"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/postgres"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/redisstore"
	"github.com/lorrc/triage-desk/internal/config"
	"github.com/lorrc/triage-desk/internal/core/ports"
)

// Opened is an override storage together with the function that releases it.
type Opened struct {
	Storage ports.OverrideStorage
	Close   func()

	// Postgres is set for the postgres driver so callers can read history.
	Postgres *postgres.OverrideStorage
}

// Open connects the configured driver. The returned Close is never nil.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Opened, error) {
	logger = logger.With("component", "store", "driver", cfg.Driver)

	switch cfg.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory override storage, overrides are lost on restart")
		return &Opened{Storage: memory.NewOverrideStorage(), Close: func() {}}, nil

	case config.StoreFile:
		s, err := filestore.NewOverrideStorage(cfg.Dir)
		if err != nil {
			return nil, err
		}
		logger.Info("override storage ready", "dir", cfg.Dir)
		return &Opened{Storage: s, Close: func() {}}, nil

	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)

	case config.StoreRedis:
		s, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: cfg.RedisDialTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("override storage ready", "addr", cfg.RedisAddr)
		return &Opened{
			Storage: s,
			Close: func() {
				if err := s.Close(); err != nil {
					logger.Warn("closing redis client", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Opened, error) {
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("database connection established")

	s := postgres.NewOverrideStorage(pool)
	return &Opened{Storage: s, Close: pool.Close, Postgres: s}, nil
}
