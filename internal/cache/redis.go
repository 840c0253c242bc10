package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 2 * time.Second

// RedisCache stores JSON-encoded values under a key prefix. Redis failures are
// logged and reported as misses; the cache never fails a caller.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func NewRedisCache[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("Redis get failed", "key", key, "error", err)
		}
		return zero, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		slog.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		return zero, false
	}
	return v, true
}

func (r *RedisCache[T]) Set(key string, data T) {
	b, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Cannot encode cache entry", "key", key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		slog.Warn("Redis set failed", "key", key, "error", err)
	}
}

func (r *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		slog.Warn("Redis delete failed", "key", key, "error", err)
	}
}

// Size counts the keys under the prefix.
func (r *RedisCache[T]) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Redis scan failed", "error", err)
	}
	return n
}

// Ping reports whether Redis is reachable.
func (r *RedisCache[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
