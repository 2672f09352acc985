// Package redisstore stores override values in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lorrc/triage-desk/internal/core/ports"
)

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// OverrideStorage keeps each key as a plain Redis string.
type OverrideStorage struct {
	client *redis.Client
}

var _ ports.OverrideStorage = (*OverrideStorage)(nil)

// Connect opens a client and verifies it with PING.
func Connect(ctx context.Context, opts Options) (*OverrideStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})
	s := NewOverrideStorage(client)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

func NewOverrideStorage(client *redis.Client) *OverrideStorage {
	return &OverrideStorage{client: client}
}

func (s *OverrideStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *OverrideStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *OverrideStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *OverrideStorage) Ping(ctx context.Context) error {
	pong, err := s.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("redis ping: expected PONG, got %s", pong)
	}
	return nil
}

func (s *OverrideStorage) Close() error {
	return s.client.Close()
}
