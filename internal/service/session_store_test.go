package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	apperrors "github.com/target/restaurant-console/internal/errors"
	"github.com/target/restaurant-console/internal/mocks"
	fakes "github.com/target/restaurant-console/internal/mocks/auth"
	"github.com/target/restaurant-console/internal/observability/statsd"
	"github.com/target/restaurant-console/internal/ports"
	"go.uber.org/mock/gomock"
)

func testUser(roles ...domainauth.Role) domainauth.User {
	return domainauth.User{ID: "u-1", FirstName: "Ana", Roles: domainauth.NewRoleSet(roles...)}
}

type storeFixture struct {
	store   *SessionStore
	gateway *fakes.FakeGateway
	nav     *fakes.RecordingNavigator
	flags   *fakes.MemoryFlags
}

func newStoreFixture(gw *fakes.FakeGateway) storeFixture {
	nav := &fakes.RecordingNavigator{}
	flags := fakes.NewMemoryFlags()
	store := NewSessionStore(SessionStoreOptions{
		Gateway:   gw,
		Navigator: nav,
		Flags:     flags,
		Paths:     domainauth.DefaultPaths(),
	})
	return storeFixture{store: store, gateway: gw, nav: nav, flags: flags}
}

func requireInvariant(t *testing.T, s domainauth.Session) {
	t.Helper()
	require.NoError(t, s.Validate())
}

func TestSessionStore_StartsAnonymous(t *testing.T) {
	f := newStoreFixture(fakes.NewFakeGateway(testUser()))
	snap := f.store.Snapshot()
	assert.Equal(t, domainauth.StatusAnonymous, snap.Status)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

func TestSessionStore_CheckAuthStatus_Success(t *testing.T) {
	f := newStoreFixture(fakes.NewFakeGateway(testUser(domainauth.RoleManager)))

	require.NoError(t, f.store.CheckAuthStatus(context.Background()))

	snap := f.store.Snapshot()
	requireInvariant(t, snap)
	assert.Equal(t, domainauth.StatusAuthenticated, snap.Status)
	require.NotNil(t, snap.User)
	assert.True(t, snap.User.Roles.Has(domainauth.RoleManager))
	assert.False(t, snap.Loading)
}

func TestSessionStore_CheckAuthStatus_FailureIsSilent(t *testing.T) {
	for name, failure := range map[string]error{
		"rejected credential": apperrors.Unauthenticated("token expired"),
		"network failure":     apperrors.Unavailable(errors.New("connection refused"), "gateway unreachable"),
	} {
		t.Run(name, func(t *testing.T) {
			gw := fakes.NewFakeGateway(testUser())
			gw.MeFunc = func(context.Context) (domainauth.User, error) { return domainauth.User{}, failure }
			f := newStoreFixture(gw)

			err := f.store.CheckAuthStatus(context.Background())
			require.ErrorIs(t, err, failure)

			snap := f.store.Snapshot()
			requireInvariant(t, snap)
			assert.Equal(t, domainauth.StatusAnonymous, snap.Status)
			assert.Empty(t, snap.Error)
			assert.False(t, snap.Loading)
			assert.Empty(t, f.nav.All())
		})
	}
}

func TestSessionStore_Login_Success(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser(domainauth.RoleServer))
	var got ports.LoginInput
	gw.LoginFunc = func(_ context.Context, in ports.LoginInput) (domainauth.User, error) {
		got = in
		return testUser(domainauth.RoleServer), nil
	}
	f := newStoreFixture(gw)

	require.NoError(t, f.store.Login(context.Background(), "ana", "s3cret"))

	assert.Equal(t, ports.LoginInput{Username: "ana", Password: "s3cret"}, got)
	snap := f.store.Snapshot()
	requireInvariant(t, snap)
	assert.Equal(t, domainauth.StatusAuthenticated, snap.Status)
	assert.False(t, snap.Loading)
}

func TestSessionStore_Login_LoadingWhileInFlight(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.Started = make(chan string, 1)
	gw.Release = make(chan struct{})
	f := newStoreFixture(gw)

	done := make(chan error, 1)
	go func() { done <- f.store.Login(context.Background(), "ana", "pw") }()
	<-gw.Started

	snap := f.store.Snapshot()
	assert.Equal(t, domainauth.StatusAuthenticating, snap.Status)
	assert.True(t, snap.Loading)
	requireInvariant(t, snap)

	close(gw.Release)
	require.NoError(t, <-done)
	assert.False(t, f.store.Snapshot().Loading)
}

func TestSessionStore_Login_FailureSurfacesMessage(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.LoginFunc = func(context.Context, ports.LoginInput) (domainauth.User, error) {
		return domainauth.User{}, apperrors.CredentialsRejected("Invalid username or password", 401)
	}
	f := newStoreFixture(gw)

	err := f.store.Login(context.Background(), "ana", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsCredentialsRejected(err))

	snap := f.store.Snapshot()
	requireInvariant(t, snap)
	assert.Equal(t, domainauth.StatusError, snap.Status)
	assert.Equal(t, "Invalid username or password", snap.Error)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, gw.Count(fakes.OpLogin), "login must not retry")
	assert.Empty(t, f.nav.All(), "credential rejection must not navigate")
}

func TestSessionStore_Login_TransportFailureUsesGenericMessage(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.LoginFunc = func(context.Context, ports.LoginInput) (domainauth.User, error) {
		return domainauth.User{}, apperrors.Unavailable(errors.New("dial tcp 10.0.0.7:443"), "gateway unreachable")
	}
	f := newStoreFixture(gw)

	require.Error(t, f.store.Login(context.Background(), "ana", "pw"))
	assert.Equal(t, DefaultLoginFailureMessage, f.store.Snapshot().Error)
}

func TestSessionStore_ClearError(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.LoginFunc = func(context.Context, ports.LoginInput) (domainauth.User, error) {
		return domainauth.User{}, apperrors.CredentialsRejected("nope", 401)
	}
	f := newStoreFixture(gw)
	require.Error(t, f.store.Login(context.Background(), "ana", "pw"))

	f.store.ClearError()

	snap := f.store.Snapshot()
	requireInvariant(t, snap)
	assert.Empty(t, snap.Error)
	assert.Equal(t, domainauth.StatusAnonymous, snap.Status)
}

func TestSessionStore_ClearError_KeepsAuthenticatedSession(t *testing.T) {
	f := newStoreFixture(fakes.NewFakeGateway(testUser(domainauth.RoleCook)))
	require.NoError(t, f.store.CheckAuthStatus(context.Background()))

	f.store.ClearError()

	snap := f.store.Snapshot()
	assert.Equal(t, domainauth.StatusAuthenticated, snap.Status)
	assert.NotNil(t, snap.User)
}

// awaitWaiters blocks until n callers are attached to one authentication flight.
func awaitWaiters(t *testing.T, rec *statsd.Recorder, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, m := range rec.Named("gate.auth.waiters") {
			if m.Value == float64(n) {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
}

func TestSessionStore_ConcurrentLoginsAcrossPagesCoalesce(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockIdentityGateway(ctrl)
	release := make(chan struct{})
	gw.EXPECT().
		Login(gomock.Any(), ports.LoginInput{Username: "ana", Password: "pw"}).
		DoAndReturn(func(context.Context, ports.LoginInput) (domainauth.User, error) {
			<-release
			return testUser(domainauth.RoleManager), nil
		}).
		Times(1)

	rec := &statsd.Recorder{}
	flights := NewAuthFlights(rec)
	stores := make([]*SessionStore, 2)
	for i := range stores {
		stores[i] = NewSessionStore(SessionStoreOptions{
			Gateway:   gw,
			Navigator: &fakes.RecordingNavigator{},
			Flags:     fakes.NewMemoryFlags(),
			Flights:   flights,
			FlightKey: AuthFlightKey("tab-0001"),
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, len(stores))
	for i, store := range stores {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = store.Login(context.Background(), "ana", "pw")
		}()
	}

	awaitWaiters(t, rec, 2)
	close(release)
	wg.Wait()

	for i, store := range stores {
		require.NoError(t, errs[i])
		snap := store.Snapshot()
		assert.Equal(t, domainauth.StatusAuthenticated, snap.Status)
		requireInvariant(t, snap)
	}
	assert.Len(t, rec.Named("gate.auth.call"), 1)
}

func TestSessionStore_SeparateTabsDoNotCoalesce(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.Started = make(chan string, 2)
	gw.Release = make(chan struct{})
	flights := NewAuthFlights(nil)

	done := make(chan error, 2)
	for _, tab := range []string{"tab-0001", "tab-0002"} {
		store := NewSessionStore(SessionStoreOptions{
			Gateway:   gw,
			Navigator: &fakes.RecordingNavigator{},
			Flags:     fakes.NewMemoryFlags(),
			Flights:   flights,
			FlightKey: AuthFlightKey(tab),
		})
		go func() { done <- store.CheckAuthStatus(context.Background()) }()
	}

	assert.Equal(t, fakes.OpMe, <-gw.Started)
	assert.Equal(t, fakes.OpMe, <-gw.Started)
	close(gw.Release)
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.Equal(t, 2, gw.Count(fakes.OpMe))
}

func TestSessionStore_CheckJoinsInFlightLogin(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.Started = make(chan string, 2)
	gw.Release = make(chan struct{})
	gw.LoginFunc = func(context.Context, ports.LoginInput) (domainauth.User, error) {
		return domainauth.User{}, apperrors.CredentialsRejected("locked out", 403)
	}
	rec := &statsd.Recorder{}
	store := NewSessionStore(SessionStoreOptions{
		Gateway:   gw,
		Navigator: &fakes.RecordingNavigator{},
		Flags:     fakes.NewMemoryFlags(),
		Metrics:   rec,
	})

	loginErr := make(chan error, 1)
	checkErr := make(chan error, 1)
	go func() { loginErr <- store.Login(context.Background(), "ana", "pw") }()
	assert.Equal(t, fakes.OpLogin, <-gw.Started)
	go func() { checkErr <- store.CheckAuthStatus(context.Background()) }()

	awaitWaiters(t, rec, 2)
	close(gw.Release)

	lErr, cErr := <-loginErr, <-checkErr
	require.Error(t, lErr)
	assert.Equal(t, lErr, cErr, "joined caller observes the in-flight outcome")
	assert.Equal(t, []string{fakes.OpLogin}, gw.Calls())
	assert.Equal(t, domainauth.StatusError, store.Snapshot().Status)
}

func TestSessionStore_JoinedCheckFollowsUnauthorizedToLogin(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser())
	gw.Started = make(chan string, 1)
	gw.Release = make(chan struct{})
	gw.MeFunc = func(context.Context) (domainauth.User, error) {
		return domainauth.User{}, apperrors.Unauthenticated("token expired")
	}
	rec := &statsd.Recorder{}
	flights := NewAuthFlights(rec)
	navs := []*fakes.RecordingNavigator{{}, {}}

	done := make(chan error, 2)
	start := func(nav *fakes.RecordingNavigator) {
		store := NewSessionStore(SessionStoreOptions{
			Gateway:   gw,
			Navigator: nav,
			Flags:     fakes.NewMemoryFlags(),
			Flights:   flights,
			FlightKey: AuthFlightKey("tab-0001"),
		})
		go func() { done <- store.CheckAuthStatus(context.Background()) }()
	}

	start(navs[0])
	<-gw.Started
	start(navs[1])
	awaitWaiters(t, rec, 2)
	close(gw.Release)

	require.Error(t, <-done)
	require.Error(t, <-done)
	assert.Equal(t, 1, gw.Count(fakes.OpMe))
	// The leading page is redirected by the gateway's 401 interceptor, not the store.
	assert.Empty(t, navs[0].All())
	assert.Equal(t, []fakes.Navigation{{Path: "/auth/login", Hard: true}}, navs[1].All())
}

func TestSessionStore_LeaderCancellationDoesNotFailJoiners(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser(domainauth.RoleManager))
	gw.Started = make(chan string, 1)
	gw.Release = make(chan struct{})
	gw.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		if err := ctx.Err(); err != nil {
			return domainauth.User{}, err
		}
		return testUser(domainauth.RoleManager), nil
	}
	rec := &statsd.Recorder{}
	flights := NewAuthFlights(rec)
	newStore := func() *SessionStore {
		return NewSessionStore(SessionStoreOptions{
			Gateway:   gw,
			Navigator: &fakes.RecordingNavigator{},
			Flags:     fakes.NewMemoryFlags(),
			Flights:   flights,
			FlightKey: AuthFlightKey("tab-0001"),
		})
	}
	leader, joiner := newStore(), newStore()

	ctx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() { leaderErr <- leader.CheckAuthStatus(ctx) }()
	<-gw.Started

	joinerErr := make(chan error, 1)
	go func() { joinerErr <- joiner.CheckAuthStatus(context.Background()) }()
	awaitWaiters(t, rec, 2)

	cancel()
	require.ErrorIs(t, <-leaderErr, context.Canceled)
	close(gw.Release)

	require.NoError(t, <-joinerErr)
	assert.Equal(t, domainauth.StatusAuthenticated, joiner.Snapshot().Status)
	assert.False(t, leader.Snapshot().Loading)
}

func TestSessionStore_SequentialCallsAreNotCoalesced(t *testing.T) {
	f := newStoreFixture(fakes.NewFakeGateway(testUser()))
	ctx := context.Background()

	require.NoError(t, f.store.CheckAuthStatus(ctx))
	require.NoError(t, f.store.CheckAuthStatus(ctx))
	assert.Equal(t, 2, f.gateway.Count(fakes.OpMe))
}

func TestSessionStore_DetachDiscardsLateResponse(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser(domainauth.RoleAdministrator))
	gw.Started = make(chan string, 1)
	gw.Release = make(chan struct{})
	f := newStoreFixture(gw)

	done := make(chan error, 1)
	go func() { done <- f.store.CheckAuthStatus(context.Background()) }()
	<-gw.Started

	f.store.Detach()
	close(gw.Release)

	require.ErrorIs(t, <-done, ErrDetached)
	snap := f.store.Snapshot()
	assert.NotEqual(t, domainauth.StatusAuthenticated, snap.Status)
	assert.Nil(t, snap.User)
}

func TestSessionStore_DetachedStoreMakesNoCalls(t *testing.T) {
	f := newStoreFixture(fakes.NewFakeGateway(testUser()))
	f.store.Detach()

	require.ErrorIs(t, f.store.CheckAuthStatus(context.Background()), ErrDetached)
	assert.Empty(t, f.gateway.Calls())
}

func TestSessionStore_Logout(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "backend confirms"},
		{name: "backend fails", logoutErr: apperrors.Unavailable(errors.New("timeout"), "gateway unreachable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := fakes.NewFakeGateway(testUser(domainauth.RoleManager))
			f := newStoreFixture(gw)
			var flagDuringCall bool
			gw.LogoutFunc = func(ctx context.Context) error {
				flagDuringCall, _ = f.flags.Get(ctx, LogoutPendingKey)
				return tt.logoutErr
			}
			ctx := context.Background()
			require.NoError(t, f.store.CheckAuthStatus(ctx))

			f.store.Logout(ctx)

			assert.True(t, flagDuringCall, "flag is set before the network call")
			pending, err := f.flags.Get(ctx, LogoutPendingKey)
			require.NoError(t, err)
			assert.False(t, pending)

			snap := f.store.Snapshot()
			requireInvariant(t, snap)
			assert.Equal(t, domainauth.StatusAnonymous, snap.Status)
			assert.Equal(t, fakes.Navigation{Path: "/auth/login", Hard: true}, f.nav.Last())
		})
	}
}

func TestSessionStore_LogoutSurvivesFlagStorageFailure(t *testing.T) {
	f := newStoreFixture(fakes.NewFakeGateway(testUser()))
	f.flags.Err = errors.New("storage unavailable")

	f.store.Logout(context.Background())

	assert.Equal(t, 1, f.gateway.Count(fakes.OpLogout))
	assert.Equal(t, "/auth/login", f.nav.Last().Path)
}

func TestSessionStore_InterruptedLogoutLeavesFlag(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser(domainauth.RoleManager))
	f := newStoreFixture(gw)
	ctx, cancel := context.WithCancel(context.Background())
	gw.LogoutFunc = func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}

	f.store.Logout(ctx)

	pending, err := f.flags.Get(context.Background(), LogoutPendingKey)
	require.NoError(t, err)
	assert.True(t, pending, "recovery needs the flag after an interrupted logout")
	assert.Empty(t, f.nav.All())
}

func TestSessionStore_InterruptedLogoutRecoveredOnNextLoad(t *testing.T) {
	gw := fakes.NewFakeGateway(testUser(domainauth.RoleManager))
	flags := fakes.NewMemoryFlags()
	first := NewSessionStore(SessionStoreOptions{Gateway: gw, Navigator: &fakes.RecordingNavigator{}, Flags: flags})
	first.Detach()
	first.Logout(context.Background())

	nav := &fakes.RecordingNavigator{}
	next := NewSessionStore(SessionStoreOptions{Gateway: gw, Navigator: nav, Flags: flags})
	out := NewBootstrapCoordinator(BootstrapOptions{
		Store: next, Gateway: gw, Flags: flags, Navigator: nav,
	}).Run(context.Background())

	assert.Equal(t, RouteRecovered, out.Route)
	assert.Equal(t, []string{fakes.OpLogout, fakes.OpLogout}, gw.Calls())
	pending, err := flags.Get(context.Background(), LogoutPendingKey)
	require.NoError(t, err)
	assert.False(t, pending)
}
