package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	apperrors "github.com/target/restaurant-console/internal/errors"
	"github.com/target/restaurant-console/internal/observability/metrics"
	"github.com/target/restaurant-console/internal/observability/statsd"
	"github.com/target/restaurant-console/internal/ports"
)

// LogoutPendingKey names the tab flag that marks an unconfirmed logout.
const LogoutPendingKey = "logout_pending"

// DefaultLoginFailureMessage is shown when a login fails without a backend message.
const DefaultLoginFailureMessage = "Sign-in is unavailable right now. Please try again."

// privateFlightKey is used by a store that does not share its flights.
const privateFlightKey = "auth"

// ErrDetached is returned when a response arrives after the page instance was detached.
var ErrDetached = errors.New("session store detached from page")

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Gateway   ports.IdentityGateway
	Navigator ports.Navigator
	Flags     ports.FlagStore
	Paths     domainauth.Paths
	Logger    *slog.Logger
	Metrics   statsd.Sink

	// Flights coalesces Login and CheckAuthStatus with other stores that use the
	// same FlightKey. A nil Flights gives the store its own group.
	Flights   *AuthFlights
	FlightKey string
}

// SessionStore holds the authentication state of one page instance.
// A fresh store always starts anonymous and is rebuilt via CheckAuthStatus.
type SessionStore struct {
	gateway ports.IdentityGateway
	nav     ports.Navigator
	flags   ports.FlagStore
	paths   domainauth.Paths
	logger  *slog.Logger
	metrics statsd.Sink

	flights   *AuthFlights
	flightKey string

	mu       sync.Mutex
	state    domainauth.Session
	detached bool
}

// NewSessionStore constructs an anonymous SessionStore.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	flights, key := opts.Flights, opts.FlightKey
	if flights == nil || key == "" {
		flights, key = NewAuthFlights(opts.Metrics), privateFlightKey
	}
	return &SessionStore{
		flights:   flights,
		flightKey: key,
		gateway:   opts.Gateway,
		nav:       opts.Navigator,
		flags:     opts.Flags,
		paths:     opts.Paths.WithDefaults(),
		logger:    logger,
		metrics:   opts.Metrics,
		state:     domainauth.Session{Status: domainauth.StatusAnonymous},
	}
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() domainauth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	if s.state.User != nil {
		u := *s.state.User
		u.Roles = maps.Clone(u.Roles)
		out.User = &u
	}
	return out
}

// Detach ends the page instance. Responses that arrive afterwards are discarded.
func (s *SessionStore) Detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}

// CheckAuthStatus resolves the current identity from the ambient cookie.
// Failures leave the store anonymous without setting Error; the returned error
// is for the caller's routing only.
func (s *SessionStore) CheckAuthStatus(ctx context.Context) error {
	return s.authenticate(ctx, authCall{
		op: "check",
		call: func(ctx context.Context) (domainauth.User, error) {
			return s.gateway.Me(ctx)
		},
	})
}

// Login submits credentials. A failure moves the store to StatusError with a
// visitor-facing message. Login never retries.
func (s *SessionStore) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, authCall{
		op:    "login",
		login: true,
		call: func(ctx context.Context) (domainauth.User, error) {
			return s.gateway.Login(ctx, ports.LoginInput{Username: username, Password: password})
		},
	})
}

// ClearError drops a stale login error. An errored store returns to anonymous.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
	if s.state.Status == domainauth.StatusError {
		s.state.Status = domainauth.StatusAnonymous
	}
}

// Logout marks the tab as logging out, asks the backend to clear the cookie, and
// always finishes on the login page, even when the backend call fails. If the page
// instance ends first, the flag is left set for BootstrapCoordinator to recover.
func (s *SessionStore) Logout(ctx context.Context) {
	if err := s.flags.Set(ctx, LogoutPendingKey); err != nil {
		s.logger.WarnContext(ctx, "set logout flag failed", "error", err)
	}

	start := time.Now()
	err := s.gateway.Logout(ctx)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		s.logger.WarnContext(ctx, "logout call failed, continuing to login", "error", err)
	}
	metrics.EmitAuthCall(s.metrics, metrics.AuthCallMetric{
		Op: "logout", Result: result, Duration: time.Since(start), Err: err,
	})

	if s.interrupted(ctx) {
		// The flag stays set; the next root load of this tab finishes the logout.
		s.logger.InfoContext(ctx, "logout interrupted before completion")
		return
	}

	if clearErr := s.flags.Clear(ctx, LogoutPendingKey); clearErr != nil {
		s.logger.WarnContext(ctx, "clear logout flag failed", "error", clearErr)
	}

	s.mu.Lock()
	s.state = domainauth.Session{Status: domainauth.StatusAnonymous}
	s.mu.Unlock()

	s.nav.Reload(s.paths.Login)
}

// interrupted reports whether the page instance ended while a call was in flight.
func (s *SessionStore) interrupted(ctx context.Context) bool {
	return ctx.Err() != nil || s.isDetached()
}

type authCall struct {
	op    string
	login bool
	call  func(ctx context.Context) (domainauth.User, error)
}

// authOutcome is what a flight hands to every caller that joined it.
type authOutcome struct {
	user  domainauth.User
	login bool
}

// authenticate runs c, or joins the authentication call already in flight for
// this store's key and applies that call's outcome instead.
func (s *SessionStore) authenticate(ctx context.Context, c authCall) error {
	if !s.begin(c) {
		return ErrDetached
	}

	led := false
	ch, leave := s.flights.join(s.flightKey, c.op, func() (any, error) {
		led = true
		return s.execute(context.WithoutCancel(ctx), c)
	})
	defer leave()

	select {
	case res := <-ch:
		out, _ := res.Val.(authOutcome)
		if !led {
			s.logger.DebugContext(ctx, "authentication call coalesced", "op", c.op)
			if apperrors.IsUnauthenticated(res.Err) {
				// The backend's 401 reached only the leading page.
				s.nav.Reload(s.paths.Login)
			}
		}
		return s.settle(out, res.Err)
	case <-ctx.Done():
		s.mu.Lock()
		s.state.Loading = false
		s.mu.Unlock()
		return ctx.Err()
	}
}

// begin marks the store as loading. It reports false for a detached store.
func (s *SessionStore) begin(c authCall) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return false
	}
	s.state.Loading = true
	if c.login {
		s.state.Status = domainauth.StatusAuthenticating
		s.state.Error = ""
		s.state.User = nil
	}
	return true
}

// execute makes the network call on behalf of every caller of the flight.
func (s *SessionStore) execute(ctx context.Context, c authCall) (authOutcome, error) {
	start := time.Now()
	user, err := c.call(ctx)
	in := metrics.AuthCallMetric{Op: c.op, Result: metrics.ResultSuccess, Duration: time.Since(start)}

	switch {
	case s.isDetached():
		in.Result = metrics.ResultDetached
	case err != nil:
		in.Result, in.Err = metrics.ResultError, err
	}
	metrics.EmitAuthCall(s.metrics, in)

	out := authOutcome{user: user, login: c.login}
	if err == nil {
		return out, nil
	}
	if c.login {
		return out, fmt.Errorf("login: %w", err)
	}
	return out, fmt.Errorf("check auth status: %w", err)
}

// settle applies a flight's outcome to this store. The outcome follows the
// operation that led the flight: a check that joined a login sees the login result.
func (s *SessionStore) settle(out authOutcome, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detached {
		return ErrDetached
	}
	s.state.Loading = false
	if err == nil {
		user := out.user
		s.state.Status = domainauth.StatusAuthenticated
		s.state.User = &user
		s.state.Error = ""
		return nil
	}

	s.state.User = nil
	if out.login {
		s.state.Status = domainauth.StatusError
		s.state.Error = apperrors.DisplayMessage(err, DefaultLoginFailureMessage)
		return err
	}
	s.state.Status = domainauth.StatusAnonymous
	return err
}

func (s *SessionStore) isDetached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}
