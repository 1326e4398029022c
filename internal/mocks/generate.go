// Package mocks provides mock implementations for testing the console's authentication gate.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gateway := mocks.NewMockIdentityGateway(ctrl)
//	gateway.EXPECT().Me(gomock.Any()).Return(user, nil)
package mocks

// Generate mocks for the gate's backend-facing ports:
// IdentityGateway (Me, Login, Logout), TabStorage (SetFlag, Flag, ClearFlag), TenantSource (ListTenants).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/restaurant-console/internal/ports IdentityGateway,TabStorage,TenantSource
