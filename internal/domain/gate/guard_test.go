package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
)

func newGuard(t *testing.T, p Policy) *Guard {
	t.Helper()
	g, err := NewGuard(GuardConfig{Policy: p, Paths: domainauth.DefaultPaths()})
	require.NoError(t, err)
	return g
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("STRICT")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	_, err = ParsePolicy("")
	require.Error(t, err)
}

func TestNewGuard_RejectsUnknownPolicy(t *testing.T) {
	_, err := NewGuard(GuardConfig{Policy: "paranoid"})
	require.Error(t, err)
}

func TestGuard_Decide(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		path     string
		token    bool
		redirect string
		reason   Reason
	}{
		{"api excluded strict", PolicyStrict, "/api/auth/me", false, "", ReasonExcluded},
		{"api root excluded", PolicyStrict, "/api", false, "", ReasonExcluded},
		{"next static excluded", PolicyStrict, "/_next/static/chunk.js", false, "", ReasonExcluded},
		{"next image excluded", PolicyStrict, "/_next/image/logo.png", false, "", ReasonExcluded},
		{"favicon excluded", PolicyStrict, "/favicon.ico", false, "", ReasonExcluded},
		{"logout no token", PolicyStrict, "/auth/logout", false, "", ReasonLogout},
		{"logout with token", PolicyStrict, "/auth/logout", true, "", ReasonLogout},
		{"logout with token lazy", PolicyLazy, "/auth/logout", true, "", ReasonLogout},
		{"login with token strict", PolicyStrict, "/auth/login", true, "/dashboard", ReasonAuthenticatedLogin},
		{"login with token lazy", PolicyLazy, "/auth/login", true, "/dashboard", ReasonAuthenticatedLogin},
		{"login trailing slash with token", PolicyLazy, "/auth/login/", true, "/dashboard", ReasonAuthenticatedLogin},
		{"login without token strict", PolicyStrict, "/auth/login", false, "", ReasonLoginForm},
		{"login input without token strict", PolicyStrict, "/auth/login/input", false, "", ReasonLoginForm},
		{"login input with token", PolicyStrict, "/auth/login/input", true, "/dashboard", ReasonAuthenticatedLogin},
		{"root without token strict", PolicyStrict, "/", false, "", ReasonRoot},
		{"root with token", PolicyStrict, "/", true, "", ReasonRoot},
		{"dashboard without token strict", PolicyStrict, "/dashboard", false, "/auth/login", ReasonNoToken},
		{"dashboard without token lazy", PolicyLazy, "/dashboard", false, "", ReasonLazy},
		{"dashboard with token strict", PolicyStrict, "/dashboard", true, "", ReasonTokenPresent},
		{"deep link without token strict", PolicyStrict, "/inventory/42", false, "/auth/login", ReasonNoToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newGuard(t, tt.policy).Decide(tt.path, tt.token)
			target, redirect := d.Redirect()
			assert.Equal(t, tt.redirect != "", redirect)
			assert.Equal(t, tt.redirect, target)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestGuard_LogoutAlwaysPasses(t *testing.T) {
	for _, p := range []Policy{PolicyStrict, PolicyLazy} {
		for _, token := range []bool{true, false} {
			assert.True(t, newGuard(t, p).Decide("/auth/logout", token).IsPass())
		}
	}
}

func TestGuard_CustomMatcher(t *testing.T) {
	g, err := NewGuard(GuardConfig{
		Policy:  PolicyStrict,
		Matcher: &Matcher{ExcludedPrefixes: []string{"/public/"}},
	})
	require.NoError(t, err)
	assert.True(t, g.Decide("/public/menu.pdf", false).IsPass())
	assert.False(t, g.Decide("/api/auth/me", false).IsPass())
}

func TestTokenPresent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, TokenPresent(r, "accessToken"))

	r.AddCookie(&http.Cookie{Name: "accessToken", Value: ""})
	assert.False(t, TokenPresent(r, "accessToken"))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "accessToken", Value: "opaque"})
	assert.True(t, TokenPresent(r, "accessToken"))
}
