package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pdf-assistant-api/internal/shared/metrics"
	"pdf-assistant-api/internal/shared/telemetry"
)

// Redis stores entries in a shared Redis so several API replicas see the same
// listings. Keys are namespaced with prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisClient accepts either a redis:// URL or a plain host:port and pings
// the server before returning.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			telemetry.Warn("cache.get_failed", map[string]any{"key": key, "error": err})
		}
		metrics.ObserveCache(key, false)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		metrics.ObserveCache(key, false)
		return false
	}
	metrics.ObserveCache(key, true)
	return true
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		telemetry.Warn("cache.set_failed", map[string]any{"key": key, "error": err})
	}
}

func (r *Redis) Invalidate(ctx context.Context, prefix string) {
	var cursor uint64
	pattern := r.prefix + prefix + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			telemetry.Warn("cache.invalidate_failed", map[string]any{"prefix": prefix, "error": err})
			return
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				telemetry.Warn("cache.invalidate_failed", map[string]any{"prefix": prefix, "error": err})
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

var _ Cache = (*Redis)(nil)
