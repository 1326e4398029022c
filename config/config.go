package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// section configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual section config
// files for details on available environment variables:
//   - gate.go: Edge guard policy, cookie names and route table
//   - gateway.go: Backend gateway and dev backend configuration
//   - storage.go: Redis, tab flag storage and tenant cache configuration
//   - http.go: HTTP server configuration
//   - observability.go: Logging and metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (dev backend defaults, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP HTTPConfig
	Gate GateConfig

	Gateway    GatewayConfig
	DevBackend DevBackendConfig `envPrefix:"DEV_BACKEND_"`

	Redis    RedisConfig `envPrefix:"REDIS_"`
	TabStore TabStoreConfig
	Cache    CacheConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize()
	c.Gate.Sanitize()
	c.Gateway.Sanitize()
	c.DevBackend.Sanitize()
	c.TabStore.Sanitize()
	c.Cache.Sanitize()
	c.Observability.Sanitize()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// RedisRequired reports whether any store is configured to use Redis.
func (c *AppConfig) RedisRequired() bool {
	return c.TabStore.Backend == StoreBackendRedis || c.Cache.Backend == StoreBackendRedis
}
