package authroles

import (
	"fmt"
	"strings"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
)

// AliasMapper maps backend role tags onto console roles. Tags are compared
// case-insensitively; canonical tags always map to themselves.
type AliasMapper struct {
	Aliases map[string]domainauth.Role
}

// Map returns the recognised roles and the tags that matched nothing.
func (m AliasMapper) Map(tags []string) (domainauth.RoleSet, []string) {
	set := domainauth.NewRoleSet()
	var unknown []string
	for _, tag := range tags {
		norm := strings.ToLower(strings.TrimSpace(tag))
		if r, err := domainauth.ParseRole(norm); err == nil {
			set[r] = struct{}{}
			continue
		}
		if r, ok := m.Aliases[norm]; ok {
			set[r] = struct{}{}
			continue
		}
		unknown = append(unknown, tag)
	}
	return set, unknown
}

// ParseAliases parses "alias=role" pairs separated by commas,
// e.g. "admin=administrator,wh=warehouse-operator".
func ParseAliases(raw string) (map[string]domainauth.Role, error) {
	out := make(map[string]domainauth.Role)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		alias, role, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("role alias %q: want alias=role", pair)
		}
		r, err := domainauth.ParseRole(strings.TrimSpace(role))
		if err != nil {
			return nil, fmt.Errorf("role alias %q: %w", pair, err)
		}
		out[strings.ToLower(strings.TrimSpace(alias))] = r
	}
	return out, nil
}
