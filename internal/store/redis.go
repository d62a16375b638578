package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds configuration for the Redis-backed store.
type RedisConfig struct {
	// KeyPrefix is prepended to all Redis keys.
	// Default: "shelf:"
	KeyPrefix string

	// TTL expires keys after the duration; zero keeps them forever.
	TTL time.Duration

	// OperationTimeout bounds each Redis round trip.
	// Default: 5 seconds
	OperationTimeout time.Duration
}

// DefaultRedisConfig returns a default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		KeyPrefix:        "shelf:",
		OperationTimeout: 5 * time.Second,
	}
}

// RedisStore implements domain.KeyValueStore on a shared Redis server.
// Every client pointing at the same server and prefix sees the same keys;
// concurrent writers are not coordinated and the last SET wins.
type RedisStore struct {
	client *redis.Client
	config *RedisConfig
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, config *RedisConfig) *RedisStore {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = DefaultRedisConfig().OperationTimeout
	}
	return &RedisStore{client: client, config: config}
}

// OpenRedisStore connects to addr and verifies the connection with PING.
func OpenRedisStore(addr string, db int, config *RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	s := NewRedisStore(client, config)

	ctx, cancel := s.getContext()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return s, nil
}

// getContext creates a context with timeout.
func (s *RedisStore) getContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.config.OperationTimeout)
}

func (s *RedisStore) key(k string) string {
	return s.config.KeyPrefix + k
}

func (s *RedisStore) GetItem(key string) (string, bool, error) {
	if s.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}

	ctx, cancel := s.getContext()
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) SetItem(key, value string) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	ctx, cancel := s.getContext()
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) RemoveItem(key string) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	ctx, cancel := s.getContext()
	defer cancel()

	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
