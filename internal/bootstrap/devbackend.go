package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/target/restaurant-console/config"
	"github.com/target/restaurant-console/internal/adapters/devbackend"
)

// NewDevBackend builds the in-process dev backend from configuration.
func NewDevBackend(cfg config.DevBackendConfig, cookieName string, logger *slog.Logger) (*devbackend.Backend, error) {
	users, err := devbackend.ParseUsers(cfg.Users)
	if err != nil {
		return nil, fmt.Errorf("parse dev users: %w", err)
	}
	backend, err := devbackend.New(devbackend.Config{
		Users:           users,
		Tenants:         devbackend.TenantsFromNames(cfg.Tenants),
		CookieName:      cookieName,
		SessionDuration: cfg.SessionDuration,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build dev backend: %w", err)
	}
	return backend, nil
}
