package auth

// LandingPath maps a role set to the visitor's canonical landing route.
//
// An empty set falls back to the dashboard; this is a routing default, not an
// authorization decision. The result depends only on its inputs.
func LandingPath(roles RoleSet, paths Paths) string {
	paths = paths.WithDefaults()
	if roles.Empty() || roles.IsPrivileged() {
		return paths.Dashboard
	}
	return paths.Profile
}
