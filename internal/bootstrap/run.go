package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/target/restaurant-console/config"
	"golang.org/x/sync/errgroup"
)

// Run wires the console from cfg and serves until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("run requires an AppConfig")
	}
	if logger == nil {
		logger = slog.Default()
	}

	deps := ServiceDeps{Config: cfg, Logger: logger}

	if cfg.RedisRequired() {
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := client.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
		deps.RedisClient = client
	}

	metrics, err := NewMetrics(cfg.Observability.Metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd client failed", "error", cerr)
		}
	}()
	deps.Metrics = metrics

	var servers []namedServer

	if cfg.Gateway.Mode == config.GatewayModeDev {
		backend, err := NewDevBackend(cfg.DevBackend, cfg.Gate.AccessTokenCookie, logger)
		if err != nil {
			return err
		}
		ln, err := listen(ctx, cfg.DevBackend.Addr)
		if err != nil {
			return fmt.Errorf("listen dev backend: %w", err)
		}
		deps.GatewayURL = "http://" + ln.Addr().String()
		servers = append(servers, namedServer{name: "dev-backend", srv: newServer(cfg.HTTP, backend.Handler()), ln: ln})
		logger.WarnContext(ctx, "using the in-process dev backend; do not run this in production")
	}

	services, err := NewServices(deps)
	if err != nil {
		closeListeners(servers, logger)
		return err
	}
	ln, err := listen(ctx, cfg.HTTP.Addr)
	if err != nil {
		closeListeners(servers, logger)
		return fmt.Errorf("listen console: %w", err)
	}
	servers = append(servers, namedServer{name: "console", srv: newServer(cfg.HTTP, services.Router), ln: ln})

	logger.InfoContext(ctx, "starting restaurant console",
		"gate_policy", cfg.Gate.Policy,
		"gateway_mode", cfg.Gateway.Mode,
		"tabstore", cfg.TabStore.Backend,
		"cache", cfg.Cache.Backend,
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error { return serve(s.srv, s.ln, s.name, logger) })
	}
	g.Go(func() error {
		<-gctx.Done()
		var errs []error
		for _, s := range servers {
			if err := shutdown(s.srv, s.name, cfg.HTTP.ShutdownTimeout, logger); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", s.name, err))
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}

type namedServer struct {
	name string
	srv  *http.Server
	ln   net.Listener
}

func closeListeners(servers []namedServer, logger *slog.Logger) {
	for _, s := range servers {
		if err := s.ln.Close(); err != nil {
			logger.Warn("close listener failed", "server", s.name, "error", err)
		}
	}
}
