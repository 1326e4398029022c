package auth

// Package auth contains simple hand-written test doubles for the gate's ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityGateway = (*FakeGateway)(nil)
	_ ports.Navigator       = (*RecordingNavigator)(nil)
	_ ports.FlagStore       = (*MemoryFlags)(nil)
)

// Gateway operation names recorded by FakeGateway.
const (
	OpMe     = "me"
	OpLogin  = "login"
	OpLogout = "logout"
)

// FakeGateway simulates the backend's identity endpoints and records every call.
type FakeGateway struct {
	MeFunc     func(ctx context.Context) (domainauth.User, error)
	LoginFunc  func(ctx context.Context, in ports.LoginInput) (domainauth.User, error)
	LogoutFunc func(ctx context.Context) error

	// Started, when non-nil, receives the op name as each call begins.
	Started chan string
	// Release, when non-nil, blocks every call until it is closed.
	Release chan struct{}

	mu    sync.Mutex
	calls []string
}

// NewFakeGateway returns a gateway whose Me and Login succeed with user.
func NewFakeGateway(user domainauth.User) *FakeGateway {
	return &FakeGateway{
		MeFunc: func(context.Context) (domainauth.User, error) { return user, nil },
		LoginFunc: func(context.Context, ports.LoginInput) (domainauth.User, error) {
			return user, nil
		},
	}
}

func (g *FakeGateway) Me(ctx context.Context) (domainauth.User, error) {
	g.enter(OpMe)
	if g.MeFunc == nil {
		return domainauth.User{}, nil
	}
	return g.MeFunc(ctx)
}

func (g *FakeGateway) Login(ctx context.Context, in ports.LoginInput) (domainauth.User, error) {
	g.enter(OpLogin)
	if g.LoginFunc == nil {
		return domainauth.User{}, nil
	}
	return g.LoginFunc(ctx, in)
}

func (g *FakeGateway) Logout(ctx context.Context) error {
	g.enter(OpLogout)
	if g.LogoutFunc == nil {
		return nil
	}
	return g.LogoutFunc(ctx)
}

// Calls returns the recorded operations in order.
func (g *FakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// Count returns how many times op was called.
func (g *FakeGateway) Count(op string) int {
	n := 0
	for _, c := range g.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func (g *FakeGateway) enter(op string) {
	g.mu.Lock()
	g.calls = append(g.calls, op)
	g.mu.Unlock()
	if g.Started != nil {
		g.Started <- op
	}
	if g.Release != nil {
		<-g.Release
	}
}

// Navigation is one recorded navigation.
type Navigation struct {
	Path string
	Hard bool
}

// RecordingNavigator records navigations instead of performing them.
type RecordingNavigator struct {
	mu   sync.Mutex
	navs []Navigation
}

func (n *RecordingNavigator) Navigate(path string) { n.record(Navigation{Path: path}) }

func (n *RecordingNavigator) Reload(path string) { n.record(Navigation{Path: path, Hard: true}) }

func (n *RecordingNavigator) record(nav Navigation) {
	n.mu.Lock()
	n.navs = append(n.navs, nav)
	n.mu.Unlock()
}

// All returns every recorded navigation.
func (n *RecordingNavigator) All() []Navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Navigation(nil), n.navs...)
}

// Last returns the most recent navigation, or a zero value.
func (n *RecordingNavigator) Last() Navigation {
	all := n.All()
	if len(all) == 0 {
		return Navigation{}
	}
	return all[len(all)-1]
}

// MemoryFlags is an in-memory FlagStore for a single tab.
type MemoryFlags struct {
	mu    sync.Mutex
	flags map[string]bool
	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryFlags returns an empty flag store.
func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{flags: make(map[string]bool)}
}

func (m *MemoryFlags) Set(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.flags[key] = true
	return nil
}

func (m *MemoryFlags) Get(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return m.flags[key], nil
}

func (m *MemoryFlags) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.flags, key)
	return nil
}
