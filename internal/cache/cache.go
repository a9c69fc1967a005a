// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"recyclehub/internal/config"

	"go.uber.org/zap"
)

// ===============================
// CACHE INTERFACE
// ===============================

// Cache stores opaque byte values under string keys. Values are encoded by
// the caller so the memory and redis providers behave the same.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	Stats(ctx context.Context) (*CacheStats, error)
	Health(ctx context.Context) error
	Close() error
}

// CacheStats represents cache statistics
type CacheStats struct {
	Provider string  `json:"provider"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Sets     int64   `json:"sets"`
	Deletes  int64   `json:"deletes"`
	Keys     int64   `json:"keys"`
	HitRatio float64 `json:"hit_ratio"`
}

// ===============================
// CACHE CONFIGURATION
// ===============================

// Config holds cache configuration
type Config struct {
	Provider        string        // "memory", "redis"
	TTL             time.Duration // default TTL
	MaxKeys         int           // memory cache only
	CleanupInterval time.Duration // memory cache only
	RedisURL        string
	PoolSize        int
	KeyPrefix       string
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        "memory",
		TTL:             5 * time.Minute,
		MaxKeys:         10000,
		CleanupInterval: time.Minute,
		PoolSize:        10,
		KeyPrefix:       "recyclehub:",
	}
}

// FromAppConfig builds a cache config from the application config
func FromAppConfig(cfg *config.CacheConfig) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Provider != "" {
		c.Provider = cfg.Provider
	}
	if cfg.CatalogTTL > 0 {
		c.TTL = cfg.CatalogTTL
	}
	c.RedisURL = cfg.RedisURL
	return c
}

// ===============================
// FACTORY FUNCTION
// ===============================

// NewCache creates a new cache instance based on configuration
func NewCache(cfg *Config, logger *zap.Logger) (Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Provider) {
	case "redis":
		return NewRedisCache(cfg, logger)
	case "memory", "":
		logger.Info("Using in-memory cache")
		return NewMemoryCache(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// ===============================
// TYPED HELPERS
// ===============================

// GetJSON decodes the cached value under key into a T
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

// SetJSON encodes value and stores it under key
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// GetOrLoad returns the cached value under key, or calls load and caches its
// result. A failing cache never fails the call.
func GetOrLoad[T any](ctx context.Context, c Cache, logger *zap.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if value, ok := GetJSON[T](ctx, c, key); ok {
		logger.Debug("Cache hit", zap.String("key", key))
		return value, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := SetJSON(ctx, c, key, value, ttl); err != nil {
		logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

func hitRatio(hits, misses int64) float64 {
	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}
