package app

import (
	"context"
	"errors"

	"session-gatekeeper/internal/config"
	"session-gatekeeper/internal/db"
	"session-gatekeeper/internal/logger"
	"session-gatekeeper/internal/redis"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Infra struct {
	DB    *db.DB // nil when DATABASE_DSN is empty
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	infra := &Infra{Redis: redisClient}

	if cfg.DatabaseDSN == "" {
		logger.Info("user directory disabled", nil)
		return infra, nil
	}

	directory, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		_ = redisClient.Close()
		return nil, err
	}
	infra.DB = directory

	logger.Info("database ready", map[string]any{"driver": cfg.DatabaseDriver})

	return infra, nil
}

func (i *Infra) Close() error {
	var errs []error
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	return errors.Join(errs...)
}
