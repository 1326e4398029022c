package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/target/restaurant-console/config"
)

const readHeaderTimeout = 10 * time.Second

func newServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// serve runs srv on ln until it is shut down. A clean shutdown is not an error.
func serve(srv *http.Server, ln net.Listener, name string, logger *slog.Logger) error {
	logger.Info("starting HTTP server", "server", name, "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("HTTP server failed", "server", name, "error", err)
		return err
	}
	return nil
}

// shutdown gracefully stops srv within timeout.
func shutdown(srv *http.Server, name string, timeout time.Duration, logger *slog.Logger) error {
	logger.Info("shutting down HTTP server", "server", name)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("HTTP server stopped", "server", name)
	return nil
}
