package auth

// Package auth contains domain-level types for the console's authentication gate.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"slices"
	"strings"
)

// Role is a server-assigned authorization tag drawn from a closed vocabulary.
// The console only ever reads roles; it never derives new ones.
type Role string

const (
	RoleAdministrator     Role = "administrator"
	RoleManager           Role = "manager"
	RoleWarehouseOperator Role = "warehouse-operator"
	RoleServer            Role = "server"
	RoleCook              Role = "cook"
	RoleUser              Role = "generic-user"
)

// AllRoles lists the closed role vocabulary in a stable order.
func AllRoles() []Role {
	return []Role{RoleAdministrator, RoleManager, RoleWarehouseOperator, RoleServer, RoleCook, RoleUser}
}

// ParseRole maps a role tag to a Role. Unknown tags are rejected.
func ParseRole(tag string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(tag)))
	if slices.Contains(AllRoles(), r) {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", tag)
}

// RoleSet is an immutable-by-convention set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// ParseRoleSet builds a set from wire tags, dropping tags outside the vocabulary.
// The second return lists the dropped tags so callers can log them.
func ParseRoleSet(tags []string) (RoleSet, []string) {
	s := make(RoleSet, len(tags))
	var unknown []string
	for _, t := range tags {
		r, err := ParseRole(t)
		if err != nil {
			unknown = append(unknown, t)
			continue
		}
		s[r] = struct{}{}
	}
	return s, unknown
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAny reports whether the set contains at least one of roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Empty() bool { return len(s) == 0 }

// IsPrivileged reports administrator or manager membership.
func (s RoleSet) IsPrivileged() bool {
	return s.HasAny(RoleAdministrator, RoleManager)
}

// Slice returns the roles in vocabulary order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles() {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Tags returns the roles as wire strings in vocabulary order.
func (s RoleSet) Tags() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// User is the identity resolved by the backend gateway.
type User struct {
	ID        string
	FirstName string
	Roles     RoleSet
}

// Status is the session status of a single page instance.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusError          Status = "error"
)

// Session is a point-in-time copy of a page's authentication state.
type Session struct {
	Status  Status
	User    *User
	Error   string
	Loading bool
}

// Authenticated reports whether the session holds a resolved user.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Validate checks the status/user invariant.
func (s Session) Validate() error {
	switch s.Status {
	case StatusAuthenticated:
		if s.User == nil {
			return fmt.Errorf("status %s requires a user", s.Status)
		}
	case StatusAnonymous, StatusError:
		if s.User != nil {
			return fmt.Errorf("status %s must not carry a user", s.Status)
		}
	case StatusAuthenticating:
	default:
		return fmt.Errorf("unknown status %q", s.Status)
	}
	return nil
}
