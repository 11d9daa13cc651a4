// Package cache stores JSON-encoded values behind a backend-neutral interface. The in-process
// backend uses go-cache; the shared backend uses Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/go-trip-planner/config"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	// Get decodes the value at key into dest, or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest any) error
	// Set stores value under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// New picks the backend named by cfg.Cache.Driver. Anything other than "redis" uses memory.
func New(cfg *config.Config, logger *slog.Logger) (Cache, error) {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	cleanup := cfg.Cache.Cleanup
	if cleanup <= 0 {
		cleanup = 2 * ttl
	}

	switch cfg.Cache.Driver {
	case "redis":
		client, err := NewRedisClient(cfg.RedisAddr(), cfg.Repositories.Redis.Password, cfg.Repositories.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Using redis cache", slog.String("addr", cfg.RedisAddr()))
		return NewRedisCache(client, ttl), nil
	default:
		logger.Info("Using in-memory cache", slog.Duration("ttl", ttl))
		return NewMemoryCache(ttl, cleanup), nil
	}
}
