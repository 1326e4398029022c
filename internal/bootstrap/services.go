package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	console "github.com/target/restaurant-console"
	"github.com/target/restaurant-console/config"
	"github.com/target/restaurant-console/internal/adapters/authroles"
	"github.com/target/restaurant-console/internal/adapters/gateway"
	redisadapter "github.com/target/restaurant-console/internal/adapters/redis"
	"github.com/target/restaurant-console/internal/adapters/tabstore"
	"github.com/target/restaurant-console/internal/core"
	"github.com/target/restaurant-console/internal/data"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/domain/gate"
	httpx "github.com/target/restaurant-console/internal/http"
	"github.com/target/restaurant-console/internal/observability/statsd"
	"github.com/target/restaurant-console/internal/ports"
)

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	// RedisClient is required when a store is configured for Redis.
	RedisClient redis.UniversalClient
	// GatewayURL overrides the configured backend URL (the dev backend listener).
	GatewayURL string
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// ServiceContainer holds the wired console components.
type ServiceContainer struct {
	Router  http.Handler
	Gateway *gateway.Client
	Tabs    ports.TabStorage
	Tenants *core.TenantDirectory
	Guard   *gate.Guard
	Table   *gate.Table
}

// NewServices wires the gateway, storage, gate and router from configuration.
func NewServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps missing AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisRequired() && deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required by the configured stores")
	}

	paths := domainauth.DefaultPaths()
	baseURL := cfg.Gateway.BaseURL
	if deps.GatewayURL != "" {
		baseURL = deps.GatewayURL
	}

	client, err := newGatewayClient(cfg.Gateway, baseURL, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	guard, err := gate.NewGuard(gate.GuardConfig{Policy: cfg.Gate.GuardPolicy(), Paths: paths})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build guard: %w", err)
	}
	table, err := newRouteTable(cfg.Gate, paths)
	if err != nil {
		return ServiceContainer{}, err
	}

	tabs := newTabStorage(cfg.TabStore, deps.RedisClient)
	cache := newCacheRepository(cfg.Cache, deps.RedisClient)
	tenants := core.NewTenantDirectory(core.TenantDirectoryOptions{
		Cache:  cache,
		TTL:    cfg.Cache.TenantTTL,
		Logger: logger,
	})

	templates, err := fs.Sub(console.TemplateFS, "web/templates")
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("template fs: %w", err)
	}
	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{TemplateFS: templates, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("parse templates: %w", err)
	}

	var api http.Handler
	if cfg.Gateway.ProxyAPI {
		if api, err = httpx.NewAPIProxy(baseURL, nil, logger); err != nil {
			return ServiceContainer{}, err
		}
	}

	checks := map[string]httpx.HealthCheck{"cache": cache}
	if deps.RedisClient != nil {
		checks["redis"] = redisHealth{client: deps.RedisClient}
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Pages: httpx.NewPageFactory(httpx.PageFactoryOptions{
			Gateway: client,
			Tabs:    tabs,
			Paths:   paths,
			Logger:  logger,
			Metrics: deps.Metrics,
		}),
		Renderer:      renderer,
		Guard:         guard,
		Table:         table,
		Tenants:       tenants,
		API:           api,
		Checks:        checks,
		CookieName:    cfg.Gate.AccessTokenCookie,
		SecureCookies: cfg.HTTP.SecureCookies,
		Logger:        logger,
		Metrics:       deps.Metrics,
	})

	return ServiceContainer{
		Router:  router,
		Gateway: client,
		Tabs:    tabs,
		Tenants: tenants,
		Guard:   guard,
		Table:   table,
	}, nil
}

func newGatewayClient(cfg config.GatewayConfig, baseURL string, logger *slog.Logger) (*gateway.Client, error) {
	var roles gateway.RoleMapper
	if cfg.RoleAliases != "" {
		aliases, err := authroles.ParseAliases(cfg.RoleAliases)
		if err != nil {
			return nil, fmt.Errorf("parse role aliases: %w", err)
		}
		roles = authroles.AliasMapper{Aliases: aliases}
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:     baseURL,
		Timeout:     cfg.Timeout,
		UserPath:    cfg.UserPath,
		MessagePath: cfg.MessagePath,
		Roles:       roles,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build gateway client: %w", err)
	}
	return client, nil
}

func newRouteTable(cfg config.GateConfig, paths domainauth.Paths) (*gate.Table, error) {
	if cfg.RoutesFile == "" {
		return gate.DefaultTable(paths), nil
	}
	table, err := gate.LoadTableFile(cfg.RoutesFile, paths)
	if err != nil {
		return nil, fmt.Errorf("load route table: %w", err)
	}
	return table, nil
}

//nolint:ireturn // the tab store backend is chosen by configuration.
func newTabStorage(cfg config.TabStoreConfig, client redis.UniversalClient) ports.TabStorage {
	if cfg.Backend == config.StoreBackendRedis {
		return redisadapter.NewFlagStoreWithPrefix(client, cfg.KeyPrefix, cfg.TTL)
	}
	return tabstore.NewMemory(tabstore.MemoryOptions{TTL: cfg.TTL})
}

//nolint:ireturn // the cache backend is chosen by configuration.
func newCacheRepository(cfg config.CacheConfig, client redis.UniversalClient) core.CacheRepository {
	if cfg.Backend == config.StoreBackendRedis {
		return data.NewRedisCacheRepo(client, cfg.KeyPrefix)
	}
	return data.NewMemoryCacheRepo(nil)
}

// NewMetrics builds the StatsD client. A disabled client discards metrics.
func NewMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init statsd client: %w", err)
	}
	return client, nil
}

type redisHealth struct {
	client redis.UniversalClient
}

func (h redisHealth) Health(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
