// Package core holds the console's cache-backed services.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/target/restaurant-console/internal/domain/model"
	"github.com/target/restaurant-console/internal/ports"
	"golang.org/x/sync/singleflight"
)

// CacheRepository is the byte store behind cached directories.
// Implementations live in internal/data (memory and Redis).
type CacheRepository interface {
	// Set stores value under key. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil, nil when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether a key was removed.
	Delete(ctx context.Context, key string) (bool, error)

	Health(ctx context.Context) error
}

// DefaultTenantTTL bounds how long a tenant list is served from cache.
const DefaultTenantTTL = 5 * time.Minute

// TenantDirectoryOptions bundles dependencies for NewTenantDirectory.
type TenantDirectoryOptions struct {
	Cache  CacheRepository
	TTL    time.Duration
	Clock  TimeProvider
	Logger *slog.Logger
}

// TenantDirectory caches the tenant list visible to each user.
// Freshness is judged against the injected clock; the repository TTL only bounds storage.
type TenantDirectory struct {
	cache  CacheRepository
	ttl    time.Duration
	clock  TimeProvider
	logger *slog.Logger
	flight singleflight.Group
}

type tenantEntry struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Tenants   []model.Tenant `json:"tenants"`
}

// NewTenantDirectory creates a TenantDirectory.
func NewTenantDirectory(opts TenantDirectoryOptions) *TenantDirectory {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealTimeProvider{}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTenantTTL
	}
	return &TenantDirectory{
		cache:  opts.Cache,
		ttl:    ttl,
		clock:  clock,
		logger: logger.With("component", "tenant_directory"),
	}
}

// Tenants returns the tenants visible to userID, fetching from src on a miss or
// when the cached entry is older than the TTL. Concurrent misses for the same user
// share one fetch through the first caller's src; the fetch outlives that caller's
// cancellation. Joiners receive its error as is, so an unauthenticated error must
// be acted on by every caller. Cache failures degrade to a direct fetch.
func (d *TenantDirectory) Tenants(ctx context.Context, userID string, src ports.TenantSource) ([]model.Tenant, error) {
	if userID == "" {
		return nil, errors.New("tenant directory: user ID is required")
	}
	key := tenantKey(userID)

	if entry, ok := d.lookup(ctx, key); ok {
		return entry.Tenants, nil
	}

	ch := d.flight.DoChan(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		tenants, err := src.ListTenants(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		tenants = slices.Clone(tenants)
		slices.SortFunc(tenants, model.TenantsByName)
		d.store(ctx, key, tenants)
		return tenants, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.Tenant)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached tenant list for userID.
func (d *TenantDirectory) Invalidate(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	_, err := d.cache.Delete(ctx, tenantKey(userID))
	return err
}

func (d *TenantDirectory) lookup(ctx context.Context, key string) (tenantEntry, bool) {
	raw, err := d.cache.Get(ctx, key)
	if err != nil {
		d.logger.WarnContext(ctx, "tenant cache read failed", "error", err)
		return tenantEntry{}, false
	}
	if len(raw) == 0 {
		return tenantEntry{}, false
	}
	var entry tenantEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		d.logger.WarnContext(ctx, "tenant cache entry unreadable", "error", err)
		return tenantEntry{}, false
	}
	if d.clock.Now().Sub(entry.FetchedAt) >= d.ttl {
		return tenantEntry{}, false
	}
	return entry, true
}

func (d *TenantDirectory) store(ctx context.Context, key string, tenants []model.Tenant) {
	raw, err := json.Marshal(tenantEntry{FetchedAt: d.clock.Now(), Tenants: tenants})
	if err != nil {
		d.logger.WarnContext(ctx, "tenant cache encode failed", "error", err)
		return
	}
	if err := d.cache.Set(ctx, key, raw, d.ttl); err != nil {
		d.logger.WarnContext(ctx, "tenant cache write failed", "error", err)
	}
}

func tenantKey(userID string) string {
	return "tenants:user:" + userID
}
