package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/core/logger"
)

const catalogFilmsKey = "cinebot:catalog:films"

// FilmLister lists the whole film catalog.
type FilmLister interface {
	All(ctx context.Context) ([]model.Film, error)
}

// CatalogCache serves the full film list from Redis, refilling it from the
// store on a miss. A nil Redis client disables caching. Redis errors are
// logged and fall through to the store.
type CatalogCache struct {
	films FilmLister
	rdb   redis.Cmdable
	ttl   time.Duration
}

// NewCatalogCache wraps films with a Redis cache. rdb may be nil.
func NewCatalogCache(films FilmLister, rdb redis.Cmdable, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{films: films, rdb: rdb, ttl: ttl}
}

// Films returns every film.
func (c *CatalogCache) Films(ctx context.Context) ([]model.Film, error) {
	if c.rdb == nil {
		return c.films.All(ctx)
	}

	raw, err := c.rdb.Get(ctx, catalogFilmsKey).Bytes()
	switch {
	case err == nil:
		var films []model.Film
		jerr := json.Unmarshal(raw, &films)
		if jerr == nil {
			logger.Debug(ctx, "cache", "catalog.hit", slog.Int("count", len(films)))
			return films, nil
		}
		logger.Warn(ctx, "cache", "catalog.corrupt", logger.Err(jerr))
	case !errors.Is(err, redis.Nil):
		logger.Warn(ctx, "cache", "catalog.get_failed", logger.Err(err))
	}

	films, err := c.films.All(ctx)
	if err != nil {
		return nil, err
	}
	if data, jerr := json.Marshal(films); jerr == nil {
		if serr := c.rdb.Set(ctx, catalogFilmsKey, data, c.ttl).Err(); serr != nil {
			logger.Warn(ctx, "cache", "catalog.set_failed", logger.Err(serr))
		}
	}
	logger.Debug(ctx, "cache", "catalog.miss", slog.Int("count", len(films)))
	return films, nil
}

// Invalidate drops the cached film list.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, catalogFilmsKey).Err(); err != nil {
		return errors.Wrap(err, "cache: invalidate catalog")
	}
	logger.Info(ctx, "cache", "catalog.invalidated")
	return nil
}
