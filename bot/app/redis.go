package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/cinebot/core/logger"
)

const redisPingTimeout = 2 * time.Second

// NewRedisClient connects to cfg.Addr. It returns nil when Redis is disabled
// or unreachable; callers fall back to in-process caching.
func NewRedisClient(ctx context.Context, cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	start := time.Now()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn(ctx, "cache", "redis.connect",
			slog.String("status", "fail"),
			slog.String("host", cfg.Addr),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		_ = client.Close()
		return nil
	}
	logger.Info(ctx, "cache", "redis.connect",
		slog.String("status", "ok"),
		slog.String("host", cfg.Addr),
		slog.Int("db", cfg.DB),
		slog.Duration("duration", logger.Took(start)),
	)
	return client
}
