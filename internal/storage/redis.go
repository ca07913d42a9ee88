package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces seen-set keys
const DefaultRedisPrefix = "attempts:"

const redisConnectionTimeout = 5 * time.Second

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each snapshot under prefix+id with no expiry
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis connects and pings the server
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address: %w", ErrNotConfigured)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStore(client, cfg.Prefix), nil
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Get implements Store
func (r *RedisStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", id, err)
	}
	return value, true, nil
}

// Put implements Store
func (r *RedisStore) Put(ctx context.Context, id string, value []byte) error {
	if err := r.client.SetNX(ctx, r.key(id), value, 0).Err(); err != nil {
		return fmt.Errorf("redis setnx %q: %w", id, err)
	}
	return nil
}

// Close implements Store
func (r *RedisStore) Close() error {
	return r.client.Close()
}
