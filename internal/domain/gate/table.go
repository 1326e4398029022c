package gate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"gopkg.in/yaml.v3"
)

// RouteRule restricts a console page (and everything below it) to a role set.
type RouteRule struct {
	Path  string   `yaml:"path"`
	Roles []string `yaml:"roles"`
}

type tableFile struct {
	Routes []RouteRule `yaml:"routes"`
}

type compiledRule struct {
	path  string
	roles domainauth.RoleSet
}

// Table is the steady-state authorization table consulted by the page layer
// once the session is known. It refines, and may override, the edge decision.
type Table struct {
	paths domainauth.Paths
	rules []compiledRule
}

// DefaultRules returns the console's built-in page restrictions.
func DefaultRules() []RouteRule {
	privileged := []string{string(domainauth.RoleAdministrator), string(domainauth.RoleManager)}
	return []RouteRule{
		{Path: "/dashboard", Roles: privileged},
		{Path: "/menu", Roles: privileged},
		{Path: "/tenants", Roles: privileged},
		{Path: "/users", Roles: privileged},
		{Path: "/inventory", Roles: append(append([]string(nil), privileged...), string(domainauth.RoleWarehouseOperator))},
	}
}

// NewTable compiles rules against paths.
func NewTable(paths domainauth.Paths, rules []RouteRule) (*Table, error) {
	t := &Table{paths: paths.WithDefaults()}
	for i, r := range rules {
		p := cleanPath(r.Path)
		if r.Path == "" {
			return nil, fmt.Errorf("route %d: path is required", i)
		}
		if p == t.paths.Profile || p == t.paths.Login || p == t.paths.Logout || p == t.paths.Root {
			return nil, fmt.Errorf("route %s: gate paths cannot be role-restricted", p)
		}
		roles := make(domainauth.RoleSet, len(r.Roles))
		for _, tag := range r.Roles {
			role, err := domainauth.ParseRole(tag)
			if err != nil {
				return nil, fmt.Errorf("route %s: %w", p, err)
			}
			roles[role] = struct{}{}
		}
		if roles.Empty() {
			return nil, fmt.Errorf("route %s: at least one role is required", p)
		}
		t.rules = append(t.rules, compiledRule{path: p, roles: roles})
	}
	return t, nil
}

// DefaultTable compiles DefaultRules.
func DefaultTable(paths domainauth.Paths) *Table {
	t, err := NewTable(paths, DefaultRules())
	if err != nil {
		// DefaultRules only uses known roles and non-gate paths.
		panic(err)
	}
	return t
}

// LoadTable reads a YAML routes document.
func LoadTable(r io.Reader, paths domainauth.Paths) (*Table, error) {
	var doc tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	return NewTable(paths, doc.Routes)
}

// LoadTableFile reads a YAML routes file from disk.
func LoadTableFile(name string, paths domainauth.Paths) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer f.Close()
	return LoadTable(f, paths)
}

// Paths returns the table's gate paths.
func (t *Table) Paths() domainauth.Paths { return t.paths }

// RequiredRoles returns the roles guarding p, or nil when p is unrestricted.
func (t *Table) RequiredRoles(p string) domainauth.RoleSet {
	p = cleanPath(p)
	var best *compiledRule
	for i := range t.rules {
		r := &t.rules[i]
		if p != r.path && !strings.HasPrefix(p, r.path+"/") {
			continue
		}
		if best == nil || len(r.path) > len(best.path) {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	return best.roles
}

// Authorize decides whether a page may render for the given session.
// Unauthenticated visitors go to login; authenticated visitors lacking a
// required role go to their landing path, or the profile path when the
// landing path is itself the denied page.
func (t *Table) Authorize(p string, s domainauth.Session) Decision {
	p = cleanPath(p)
	if p == t.paths.Logout {
		return Pass(ReasonLogout)
	}
	if !s.Authenticated() {
		if p == t.paths.Login || p == t.paths.Root {
			return Pass(ReasonUnauthenticated)
		}
		return RedirectTo(t.paths.Login, ReasonUnauthenticated)
	}

	roles := s.User.Roles
	if p == t.paths.Login {
		return RedirectTo(domainauth.LandingPath(roles, t.paths), ReasonAuthenticatedLogin)
	}

	if t.allows(p, roles) {
		return Pass(ReasonAllowed)
	}

	target := domainauth.LandingPath(roles, t.paths)
	if target == p || !t.allows(target, roles) {
		target = t.paths.Profile
	}
	return RedirectTo(target, ReasonForbiddenRole)
}

func (t *Table) allows(p string, roles domainauth.RoleSet) bool {
	required := t.RequiredRoles(p)
	return required == nil || roles.HasAny(required.Slice()...)
}
