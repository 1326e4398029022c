package redis

// Package redis provides Redis-based adapters for the restaurant console.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/restaurant-console/internal/ports"
)

var _ ports.TabStorage = (*FlagStore)(nil)

// DefaultFlagTTL bounds how long an abandoned tab flag survives.
const DefaultFlagTTL = 12 * time.Hour

// FlagStore is a Redis-backed TabStorage for multi-instance deployments.
// Flags written by one console instance are visible to every other instance,
// so an interrupted logout is recovered wherever the next request lands.
type FlagStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewFlagStore creates a FlagStore with the default "tab:" prefix.
func NewFlagStore(client redis.UniversalClient, ttl time.Duration) *FlagStore {
	return NewFlagStoreWithPrefix(client, "tab:", ttl)
}

// NewFlagStoreWithPrefix creates a FlagStore with a custom key prefix.
func NewFlagStoreWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration) *FlagStore {
	if ttl <= 0 {
		ttl = DefaultFlagTTL
	}
	return &FlagStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *FlagStore) SetFlag(ctx context.Context, tabID, key string) error {
	if tabID == "" {
		return errors.New("tab ID cannot be empty")
	}
	if err := s.client.Set(ctx, s.key(tabID, key), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set flag: %w", err)
	}
	return nil
}

func (s *FlagStore) Flag(ctx context.Context, tabID, key string) (bool, error) {
	if tabID == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, s.key(tabID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get flag: %w", err)
	}
	return true, nil
}

func (s *FlagStore) ClearFlag(ctx context.Context, tabID, key string) error {
	if tabID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(tabID, key)).Err(); err != nil {
		return fmt.Errorf("redis del flag: %w", err)
	}
	return nil
}

func (s *FlagStore) key(tabID, key string) string {
	return s.prefix + tabID + ":" + key
}
