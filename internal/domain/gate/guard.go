// Package gate holds the routing decisions shared by the edge guard and the
// page layer. Everything here is a pure function of its inputs.
package gate

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
)

// Policy selects how the edge guard treats requests without an access token.
type Policy string

const (
	// PolicyStrict redirects token-less requests for protected paths to login.
	PolicyStrict Policy = "strict"
	// PolicyLazy passes every request and relies on backend 401s.
	PolicyLazy Policy = "lazy"
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(v string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(v))); p {
	case PolicyStrict, PolicyLazy:
		return p, nil
	default:
		return "", fmt.Errorf("invalid gate policy %q (valid options: strict, lazy)", v)
	}
}

// Reason explains a decision for logs and metrics.
type Reason string

const (
	ReasonExcluded           Reason = "excluded"
	ReasonLogout             Reason = "logout"
	ReasonAuthenticatedLogin Reason = "authenticated_login"
	ReasonLoginForm          Reason = "login_form"
	ReasonRoot               Reason = "root"
	ReasonNoToken            Reason = "no_token"
	ReasonLazy               Reason = "lazy"
	ReasonTokenPresent       Reason = "token_present"
	ReasonUnauthenticated    Reason = "unauthenticated"
	ReasonForbiddenRole      Reason = "forbidden_role"
	ReasonAllowed            Reason = "allowed"
)

// Decision is either a pass-through or a redirect to a single path.
type Decision struct {
	redirect string
	Reason   Reason
}

// Pass builds a pass-through decision.
func Pass(reason Reason) Decision { return Decision{Reason: reason} }

// RedirectTo builds a redirect decision.
func RedirectTo(target string, reason Reason) Decision {
	return Decision{redirect: target, Reason: reason}
}

// IsPass reports whether the request should continue unchanged.
func (d Decision) IsPass() bool { return d.redirect == "" }

// Redirect returns the redirect target and true, or "" and false for a pass.
func (d Decision) Redirect() (string, bool) { return d.redirect, d.redirect != "" }

func (d Decision) String() string {
	if d.IsPass() {
		return "pass(" + string(d.Reason) + ")"
	}
	return "redirect(" + d.redirect + ", " + string(d.Reason) + ")"
}

// Matcher selects which paths the edge guard evaluates at all.
type Matcher struct {
	ExcludedPrefixes []string
	ExcludedPaths    []string
}

// DefaultMatcher excludes the API namespace, framework asset namespaces and the favicon.
func DefaultMatcher() Matcher {
	return Matcher{
		ExcludedPrefixes: []string{"/api/", "/_next/static/", "/_next/image/", "/static/"},
		ExcludedPaths:    []string{"/favicon.ico"},
	}
}

// Excluded reports whether p is outside the guard's scope.
func (m Matcher) Excluded(p string) bool {
	for _, exact := range m.ExcludedPaths {
		if p == exact {
			return true
		}
	}
	for _, prefix := range m.ExcludedPrefixes {
		if strings.HasPrefix(p, prefix) || p == strings.TrimSuffix(prefix, "/") {
			return true
		}
	}
	return false
}

// GuardConfig groups the inputs of NewGuard.
type GuardConfig struct {
	Policy  Policy
	Paths   domainauth.Paths
	Matcher *Matcher
}

// Guard is the edge-layer routing decision. It never sees session state,
// only the request path and whether the access-token cookie exists.
type Guard struct {
	policy  Policy
	paths   domainauth.Paths
	matcher Matcher
}

// NewGuard validates cfg and builds a Guard.
func NewGuard(cfg GuardConfig) (*Guard, error) {
	if _, err := ParsePolicy(string(cfg.Policy)); err != nil {
		return nil, err
	}
	m := DefaultMatcher()
	if cfg.Matcher != nil {
		m = *cfg.Matcher
	}
	return &Guard{policy: cfg.Policy, paths: cfg.Paths.WithDefaults(), matcher: m}, nil
}

// Policy returns the configured policy.
func (g *Guard) Policy() Policy { return g.policy }

// Excluded reports whether the matcher keeps p away from the guard.
func (g *Guard) Excluded(p string) bool { return g.matcher.Excluded(p) }

// Decide returns the edge decision for a request path.
func (g *Guard) Decide(requestPath string, tokenPresent bool) Decision {
	if g.matcher.Excluded(requestPath) {
		return Pass(ReasonExcluded)
	}

	p := cleanPath(requestPath)
	switch {
	case p == g.paths.Logout:
		return Pass(ReasonLogout)
	case g.isLogin(p) && tokenPresent:
		return RedirectTo(g.paths.Dashboard, ReasonAuthenticatedLogin)
	case g.isLogin(p):
		return Pass(ReasonLoginForm)
	case p == g.paths.Root:
		return Pass(ReasonRoot)
	case tokenPresent:
		return Pass(ReasonTokenPresent)
	case g.policy == PolicyStrict:
		return RedirectTo(g.paths.Login, ReasonNoToken)
	default:
		return Pass(ReasonLazy)
	}
}

// isLogin matches the login form and its sub-resources.
func (g *Guard) isLogin(p string) bool {
	return p == g.paths.Login || strings.HasPrefix(p, g.paths.Login+"/")
}

// TokenPresent reports whether the named cookie exists with a non-empty value.
// The value itself is never returned.
func TokenPresent(r *http.Request, cookieName string) bool {
	c, err := r.Cookie(cookieName)
	return err == nil && c.Value != ""
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
