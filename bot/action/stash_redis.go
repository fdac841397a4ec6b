package action

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const redisStashPrefix = "cinebot:action:"

// RedisStash keeps stashed payloads in Redis so references survive restarts
// and are shared between bot replicas.
type RedisStash struct {
	rdb redis.Cmdable
}

// NewRedisStash wraps rdb.
func NewRedisStash(rdb redis.Cmdable) *RedisStash {
	return &RedisStash{rdb: rdb}
}

func (s *RedisStash) Put(ctx context.Context, key, payload string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, redisStashPrefix+key, payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *RedisStash) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, redisStashPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStashMiss
	}
	if err != nil {
		return "", errors.Wrap(err, "redis get")
	}
	return v, nil
}
