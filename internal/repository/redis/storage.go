package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

const defaultKeyPrefix = "portal"

// Storage implements port.Storage on top of Redis. Every key is
// namespaced under the configured prefix so several portals can share
// one Redis database.
type Storage struct {
	client *red.Client
	prefix string
}

// NewStorage constructs a Redis-backed storage with the provided client
// and key prefix.
func NewStorage(client *red.Client, keyPrefix string) *Storage {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &Storage{client: client, prefix: prefix}
}

// Get returns the value stored under key or repository.ErrNotFound.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Set stores value under key without an expiry. Data-level expiry (OTP
// windows, session TTLs) is evaluated by the owning service, not by Redis.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// ScanPrefix returns all pairs whose logical key starts with prefix.
func (s *Storage) ScanPrefix(ctx context.Context, prefix string) ([]port.KV, error) {
	match := s.key(prefix) + "*"

	var out []port.KV
	iter := s.client.Scan(ctx, 0, match, 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		value, err := s.client.Get(ctx, full).Result()
		if err != nil {
			if errors.Is(err, red.Nil) {
				// Deleted between scan and get.
				continue
			}
			return nil, fmt.Errorf("redis get during scan: %w", err)
		}
		out = append(out, port.KV{Key: strings.TrimPrefix(full, s.prefix+":"), Value: value})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	return out, nil
}

// HealthCheck pings the Redis backend.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Storage) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
