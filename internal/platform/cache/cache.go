// Package cache keeps short-lived JSON snapshots of list collections so repeated
// filter/page requests do not refetch the whole collection.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campus_desk_backend/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a JSON key/value cache.
type Store interface {
	// GetJSON decodes the cached value into dst. It reports false on a miss.
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore is a Store backed by Redis (or any RESP-compatible server such as Dragonfly).
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// New returns a RedisStore when REDIS_ADDR is set and a NopStore otherwise. A Redis
// server that cannot be reached at startup is logged and the store is still returned;
// every call then degrades to a miss. The cleanup func closes the client.
func New(cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("List cache disabled (REDIS_ADDR not set)")
		return NopStore{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if pong, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("Could not connect to Redis cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		logger.Info("Connected to Redis cache", zap.String("addr", cfg.RedisAddr), zap.String("pong", pong))
	}
	store := NewRedisStore(client, "campus-desk:", logger)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close Redis cache client", zap.Error(err))
		} else {
			logger.Info("Redis cache client closed.")
		}
	}, nil
}

// NewRedisStore wraps an existing client. Keys are namespaced with prefix.
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger.Named("cache")}
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = s.client.Del(ctx, s.prefix+key).Err()
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NopStore never caches.
type NopStore struct{}

func (NopStore) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }

func (NopStore) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

func (NopStore) Delete(context.Context, ...string) error { return nil }
