// Package cache wraps the Redis client holding ephemeral message
// translation documents. Keys carry a TTL set at creation; updates never
// extend it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("key not found")

// Config holds the Redis connection settings.
type Config struct {
	Host           string `json:"host" mapstructure:"host"`
	Port           int    `json:"port" mapstructure:"port"`
	Username       string `json:"username" mapstructure:"username"`
	Password       string `json:"password" mapstructure:"password"`
	MaxConnections int    `json:"max_connections" mapstructure:"max_connections"`
}

// Redis is a thin wrapper over the go-redis client.
type Redis struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Redis, error) {
	poolSize := cfg.MaxConnections
	if poolSize <= 0 {
		poolSize = 10
	}
	minIdle := 1
	if poolSize > 10 {
		minIdle = poolSize / 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:        cfg.Username,
		Password:        cfg.Password,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		PoolSize:        poolSize,
		MinIdleConns:    minIdle,
		ConnMaxIdleTime: 10 * time.Minute,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &Redis{client: client}, nil
}

// Create stores value at key with the given TTL only when the key does not
// exist yet. It reports whether the key was created, so concurrent creators
// can detect a lost race.
func (r *Redis) Create(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create %q: %w", key, err)
	}
	return ok, nil
}

// Update overwrites an existing key, keeping its remaining TTL. Missing or
// expired keys return ErrNotFound.
func (r *Redis) Update(ctx context.Context, key string, value []byte) error {
	err := r.client.SetArgs(ctx, key, value, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update %q: %w", key, err)
	}
	return nil
}

// Get fetches the value at key, or ErrNotFound.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return b, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
