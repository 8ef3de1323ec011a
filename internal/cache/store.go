// Package cache provides the read-through, write-around cache used by the
// task service, plus the key derivation scheme. Cache failures degrade to a
// miss and never abort the operation.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/yourorg/taskboard/internal/infrastructure/redis"
	"github.com/yourorg/taskboard/internal/observability/metrics"
	memcache "github.com/yourorg/taskboard/pkg/cache"
)

// Store is the key-value contract the task service caches through
type Store interface {
	// Get returns the cached value, or ok=false on miss or backend failure
	Get(ctx context.Context, key string) (value string, ok bool)
	// Set stores a value best-effort with the given TTL
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Delete removes a key best-effort
	Delete(ctx context.Context, key string)
	// Incr bumps a counter and returns its new value, 0 on failure
	Incr(ctx context.Context, key string) int64
	// Counter reads a counter without bumping it, 0 when unset
	Counter(ctx context.Context, key string) int64
}

// RedisStore backs Store with Redis
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed cache store
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logger.Warn("cache get failed, treating as miss",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		metrics.ObserveCacheLookup("miss")
		return "", false
	}
	metrics.ObserveCacheLookup("hit")
	return value, true
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Delete(ctx, key); err != nil {
		s.logger.Warn("cache delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *RedisStore) Incr(ctx context.Context, key string) int64 {
	n, err := s.client.Incr(ctx, key)
	if err != nil {
		s.logger.Warn("cache incr failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return n
}

func (s *RedisStore) Counter(ctx context.Context, key string) int64 {
	value, err := s.client.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logger.Warn("counter read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// MemoryStore backs Store with the in-process TTL cache, for tests and
// single-node deployments without Redis.
type MemoryStore struct {
	cache *memcache.Cache
}

// NewMemoryStore creates an in-memory cache store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: memcache.New()}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool) {
	value, ok := s.cache.Get(key)
	if ok {
		metrics.ObserveCacheLookup("hit")
	} else {
		metrics.ObserveCacheLookup("miss")
	}
	return value, ok
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	s.cache.Set(key, value, ttl)
}

func (s *MemoryStore) Delete(ctx context.Context, key string) {
	s.cache.Delete(key)
}

func (s *MemoryStore) Incr(ctx context.Context, key string) int64 {
	return s.cache.Incr(key)
}

func (s *MemoryStore) Counter(ctx context.Context, key string) int64 {
	return s.cache.Counter(key)
}
