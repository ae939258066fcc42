package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/hatbazar/storefront/pkg/errors"
)

// Storage is the Redis-backed durable key-value store for session carts.
// Keys expire after the configured TTL so abandoned carts are reclaimed.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed storage. A zero ttl means keys never expire.
func New(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{client: client, ttl: ttl}
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("key %s: %w", key, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Set writes value under key with the configured TTL.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
