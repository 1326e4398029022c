package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/restaurant-console/internal/adapters/authroles"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	apperrors "github.com/target/restaurant-console/internal/errors"
	"github.com/target/restaurant-console/internal/ports"
)

func newBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func visitorRequest(cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://backend"})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://backend", MessagePath: "error.["})
	require.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://backend:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8080/api/auth/me", c.endpoint(PathMe))
}

func TestBinding_MeForwardsVisitorCookie(t *testing.T) {
	var seen string
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PathMe, r.URL.Path)
		if ck, err := r.Cookie("accessToken"); err == nil {
			seen = ck.Value
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","firstName":"Ana","roles":["manager","sommelier"]}`))
	})

	b, err := c.Bind(httptest.NewRecorder(), visitorRequest(&http.Cookie{Name: "accessToken", Value: "opaque"}), BindOptions{})
	require.NoError(t, err)

	user, err := b.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque", seen)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Ana", user.FirstName)
	assert.Equal(t, domainauth.NewRoleSet(domainauth.RoleManager), user.Roles, "unknown tags are dropped")
}

func TestBinding_MeUnauthorized(t *testing.T) {
	var fired atomic.Int32
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{OnUnauthorized: func() { fired.Add(1) }})
	require.NoError(t, err)

	_, err = b.Me(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Equal(t, int32(1), fired.Load())
}

func TestBinding_MeServerError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{})
	require.NoError(t, err)

	_, err = b.Me(context.Background())
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestBinding_LoginRelaysSetCookie(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]string{"username": "ana", "password": "pw"}, in)
		w.Header().Add("Set-Cookie", "accessToken=fresh; Path=/; HttpOnly")
		_, _ = w.Write([]byte(`{"user":{"id":"u-1","firstName":"Ana","roles":["server"]}}`))
	})

	rec := httptest.NewRecorder()
	b, err := c.Bind(rec, visitorRequest(), BindOptions{})
	require.NoError(t, err)

	user, err := b.Login(context.Background(), ports.LoginInput{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, user.Roles.Has(domainauth.RoleServer))
	assert.Equal(t, []string{"accessToken=fresh; Path=/; HttpOnly"}, rec.Header().Values("Set-Cookie"))
}

func TestBinding_LoginRejectionMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "top-level message", body: `{"message":"Account locked"}`, want: "Account locked"},
		{name: "nested error message", body: `{"error":{"message":"Wrong password"}}`, want: "Wrong password"},
		{name: "error string", body: `{"error":"Unknown user"}`, want: "Unknown user"},
		{name: "no payload", body: ``, want: DefaultRejectionMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fired bool
			c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tt.body))
			})
			b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{OnUnauthorized: func() { fired = true }})
			require.NoError(t, err)

			_, err = b.Login(context.Background(), ports.LoginInput{Username: "ana", Password: "bad"})
			require.Error(t, err)
			assert.True(t, apperrors.IsCredentialsRejected(err))
			assert.Equal(t, tt.want, apperrors.DisplayMessage(err, "fallback"))
			assert.False(t, fired, "login rejections are exempt from the 401 interceptor")
		})
	}
}

func TestBinding_CustomMessagePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"Password expired"}]}`))
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, MessagePath: "errors[0].detail"})
	require.NoError(t, err)
	b, err := c.Bind(nil, visitorRequest(), BindOptions{})
	require.NoError(t, err)

	_, err = b.Login(context.Background(), ports.LoginInput{})
	assert.Equal(t, "Password expired", apperrors.DisplayMessage(err, ""))
}

func TestBinding_Logout(t *testing.T) {
	var calls atomic.Int32
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, PathLogout, r.URL.Path)
		w.Header().Add("Set-Cookie", "accessToken=; Path=/; Max-Age=0")
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	b, err := c.Bind(rec, visitorRequest(&http.Cookie{Name: "accessToken", Value: "x"}), BindOptions{})
	require.NoError(t, err)

	require.NoError(t, b.Logout(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"accessToken=; Path=/; Max-Age=0"}, rec.Header().Values("Set-Cookie"))
}

func TestBinding_LogoutFailure(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{})
	require.NoError(t, err)
	assert.True(t, apperrors.IsUnavailable(b.Logout(context.Background())))
}

func TestBinding_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url})
	require.NoError(t, err)
	b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{})
	require.NoError(t, err)

	_, err = b.Me(context.Background())
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestBinding_ListTenants(t *testing.T) {
	for name, body := range map[string]string{
		"bare array": `[{"id":"t-1","name":"Downtown","active":true}]`,
		"envelope":   `{"tenants":[{"id":"t-1","name":"Downtown","active":true}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathTenants, r.URL.Path)
				_, _ = w.Write([]byte(body))
			})
			b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{})
			require.NoError(t, err)

			tenants, err := b.ListTenants(context.Background())
			require.NoError(t, err)
			require.Len(t, tenants, 1)
			assert.Equal(t, "Downtown", tenants[0].Name)
		})
	}
}

func TestBinding_ListTenantsUnauthorizedFiresInterceptor(t *testing.T) {
	var fired bool
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	b, err := c.Bind(httptest.NewRecorder(), visitorRequest(), BindOptions{OnUnauthorized: func() { fired = true }})
	require.NoError(t, err)

	_, err = b.ListTenants(context.Background())
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.True(t, fired)
}

func TestBinding_DetachStopsCookieRelay(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Set-Cookie", "accessToken=late; Path=/")
		_, _ = w.Write([]byte(`{"id":"u-1","roles":[]}`))
	})
	rec := httptest.NewRecorder()
	b, err := c.Bind(rec, visitorRequest(), BindOptions{})
	require.NoError(t, err)

	b.Detach()
	_, err = b.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestUnauthorizedInterceptor_Exempt(t *testing.T) {
	var fired []string
	rt := &UnauthorizedInterceptor{
		Next: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusUnauthorized, Body: http.NoBody, Header: http.Header{}}, nil
		}),
		Exempt:         ExemptPaths(PathLogin, PathLogout),
		OnUnauthorized: func(r *http.Request) { fired = append(fired, r.URL.Path) },
	}

	for _, p := range []string{PathLogin, PathLogout, PathMe, "/api/inventory"} {
		req := httptest.NewRequest(http.MethodGet, "http://backend"+p, nil)
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, []string{PathMe, "/api/inventory"}, fired)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestBinding_RoleMapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u-9","firstName":"Kai","roles":["ADMIN","line-cook"]}`))
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{
		BaseURL: srv.URL,
		Roles: authroles.AliasMapper{Aliases: map[string]domainauth.Role{
			"admin":     domainauth.RoleAdministrator,
			"line-cook": domainauth.RoleCook,
		}},
	})
	require.NoError(t, err)
	b, err := c.Bind(nil, visitorRequest(), BindOptions{})
	require.NoError(t, err)

	user, err := b.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainauth.NewRoleSet(domainauth.RoleAdministrator, domainauth.RoleCook), user.Roles)
}
