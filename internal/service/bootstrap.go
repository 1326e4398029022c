package service

import (
	"context"
	"errors"
	"log/slog"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/observability/metrics"
	"github.com/target/restaurant-console/internal/observability/statsd"
	"github.com/target/restaurant-console/internal/ports"
)

// BootstrapPhase is a state of the root-route reconciliation machine.
type BootstrapPhase string

const (
	PhaseStart      BootstrapPhase = "start"
	PhaseRecovering BootstrapPhase = "recovering"
	PhaseProbing    BootstrapPhase = "probing"
	PhaseRouting    BootstrapPhase = "routing"
	// PhaseReconciled is terminal: the visitor has been sent to a destination.
	PhaseReconciled BootstrapPhase = "reconciled"
)

// Bootstrap routes, recorded on the outcome for logs and metrics.
const (
	RouteRecovered       = "recovered_logout"
	RouteUnauthenticated = "unauthenticated"
	RouteLanding         = "landing"
	RouteDetached        = "detached"
)

// BootstrapOutcome describes how a root-route bootstrap finished.
type BootstrapOutcome struct {
	Phase       BootstrapPhase
	Route       string
	Destination string
	Trail       []BootstrapPhase
}

// BootstrapOptions groups dependencies for BootstrapCoordinator.
type BootstrapOptions struct {
	Store     *SessionStore
	Gateway   ports.IdentityGateway
	Flags     ports.FlagStore
	Navigator ports.Navigator
	Paths     domainauth.Paths
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// BootstrapCoordinator reconciles an interrupted logout, resolves the session,
// and sends the visitor to their landing path. It runs once per root page load.
type BootstrapCoordinator struct {
	store   *SessionStore
	gateway ports.IdentityGateway
	flags   ports.FlagStore
	nav     ports.Navigator
	paths   domainauth.Paths
	logger  *slog.Logger
	metrics statsd.Sink

	phase BootstrapPhase
	trail []BootstrapPhase
	last  BootstrapOutcome
}

// NewBootstrapCoordinator constructs a coordinator in PhaseStart.
func NewBootstrapCoordinator(opts BootstrapOptions) *BootstrapCoordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BootstrapCoordinator{
		store:   opts.Store,
		gateway: opts.Gateway,
		flags:   opts.Flags,
		nav:     opts.Navigator,
		paths:   opts.Paths.WithDefaults(),
		logger:  logger,
		metrics: opts.Metrics,
		phase:   PhaseStart,
		trail:   []BootstrapPhase{PhaseStart},
	}
}

// Phase returns the current phase.
func (b *BootstrapCoordinator) Phase() BootstrapPhase { return b.phase }

// Run executes the bootstrap sequence. Each step completes before the next begins.
// Calling Run again after reconciliation returns the recorded outcome unchanged.
func (b *BootstrapCoordinator) Run(ctx context.Context) BootstrapOutcome {
	if b.phase == PhaseReconciled {
		return b.last
	}

	pending, err := b.flags.Get(ctx, LogoutPendingKey)
	if err != nil {
		b.logger.WarnContext(ctx, "read logout flag failed", "error", err)
	}
	if pending {
		return b.recover(ctx)
	}

	b.enter(PhaseProbing)
	if err := b.store.CheckAuthStatus(ctx); err != nil {
		if errors.Is(err, ErrDetached) {
			return b.finish(RouteDetached, "")
		}
		b.logger.DebugContext(ctx, "bootstrap probe found no session", "error", err)
	}

	sess := b.store.Snapshot()
	if !sess.Authenticated() {
		b.nav.Navigate(b.paths.Login)
		return b.finish(RouteUnauthenticated, b.paths.Login)
	}

	b.enter(PhaseRouting)
	dest := domainauth.LandingPath(sess.User.Roles, b.paths)
	b.nav.Navigate(dest)
	return b.finish(RouteLanding, dest)
}

// recover completes a logout that a reload interrupted. No identity check runs.
func (b *BootstrapCoordinator) recover(ctx context.Context) BootstrapOutcome {
	b.enter(PhaseRecovering)
	if err := b.gateway.Logout(ctx); err != nil {
		b.logger.WarnContext(ctx, "recovery logout call failed, continuing to login", "error", err)
	}
	if err := b.flags.Clear(ctx, LogoutPendingKey); err != nil {
		b.logger.WarnContext(ctx, "clear logout flag failed", "error", err)
	}
	b.nav.Reload(b.paths.Login)
	return b.finish(RouteRecovered, b.paths.Login)
}

func (b *BootstrapCoordinator) enter(p BootstrapPhase) {
	b.phase = p
	b.trail = append(b.trail, p)
}

func (b *BootstrapCoordinator) finish(route, dest string) BootstrapOutcome {
	b.enter(PhaseReconciled)
	metrics.EmitBootstrap(b.metrics, route, dest)
	b.last = BootstrapOutcome{
		Phase:       b.phase,
		Route:       route,
		Destination: dest,
		Trail:       append([]BootstrapPhase(nil), b.trail...),
	}
	return b.last
}
