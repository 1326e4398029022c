package ports

// Package ports defines interfaces (hexagonal ports) for the console's authentication gate.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/domain/model"
)

// LoginInput carries the credentials submitted on the login form.
type LoginInput struct {
	Username string
	Password string
}

// IdentityGateway reaches the backend's authentication endpoints.
// The access token travels only as an ambient cookie; no method exposes it.
type IdentityGateway interface {
	// Me resolves the current identity from the ambient cookie.
	Me(ctx context.Context) (domainauth.User, error)

	// Login submits credentials; on success the backend sets the access-token cookie.
	Login(ctx context.Context, in LoginInput) (domainauth.User, error)

	// Logout asks the backend to clear the access-token cookie.
	Logout(ctx context.Context) error
}

// TenantSource lists the tenants visible to the current visitor.
type TenantSource interface {
	ListTenants(ctx context.Context) ([]model.Tenant, error)
}

// Navigator moves the visitor to another console path.
type Navigator interface {
	// Navigate performs an in-app navigation.
	Navigate(path string)

	// Reload performs a full-page navigation that discards all page state.
	Reload(path string)
}

// TabStorage holds ephemeral flags scoped to a browser tab.
type TabStorage interface {
	SetFlag(ctx context.Context, tabID, key string) error
	Flag(ctx context.Context, tabID, key string) (bool, error)
	ClearFlag(ctx context.Context, tabID, key string) error
}

// FlagStore is a TabStorage bound to a single tab.
type FlagStore interface {
	Set(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, key string) error
}
