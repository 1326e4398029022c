package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreBackend selects the storage behind tab flags or the tenant cache.
type StoreBackend string

const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendRedis  StoreBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*b = StoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: memory, redis)", v)
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// TabStoreConfig configures tab-scoped flag storage (logout_pending).
type TabStoreConfig struct {
	Backend StoreBackend `env:"TABSTORE_BACKEND" envDefault:"memory"`

	// TTL bounds how long a tab flag survives without being cleared.
	TTL       time.Duration `env:"TABSTORE_TTL"        envDefault:"12h"`
	KeyPrefix string        `env:"TABSTORE_KEY_PREFIX" envDefault:"console:tab:"`
}

// Sanitize applies guardrails to tab store configuration values.
func (t *TabStoreConfig) Sanitize() {
	if t.Backend == "" {
		t.Backend = StoreBackendMemory
	}
	if t.TTL <= 0 {
		t.TTL = 12 * time.Hour
	}
}

// CacheConfig configures the tenant directory cache.
type CacheConfig struct {
	Backend   StoreBackend  `env:"CACHE_BACKEND"    envDefault:"memory"`
	TenantTTL time.Duration `env:"CACHE_TENANT_TTL" envDefault:"5m"`
	KeyPrefix string        `env:"CACHE_KEY_PREFIX" envDefault:"console:cache:"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = StoreBackendMemory
	}
	if c.TenantTTL <= 0 {
		c.TenantTTL = 5 * time.Minute
	}
}
