package auth

// Paths names the console routes the gate reasons about.
type Paths struct {
	Root      string
	Login     string
	Logout    string
	Dashboard string
	Profile   string
}

// DefaultPaths returns the console's canonical routes.
func DefaultPaths() Paths {
	return Paths{
		Root:      "/",
		Login:     "/auth/login",
		Logout:    "/auth/logout",
		Dashboard: "/dashboard",
		Profile:   "/profile",
	}
}

// WithDefaults fills empty fields from DefaultPaths.
func (p Paths) WithDefaults() Paths {
	d := DefaultPaths()
	if p.Root == "" {
		p.Root = d.Root
	}
	if p.Login == "" {
		p.Login = d.Login
	}
	if p.Logout == "" {
		p.Logout = d.Logout
	}
	if p.Dashboard == "" {
		p.Dashboard = d.Dashboard
	}
	if p.Profile == "" {
		p.Profile = d.Profile
	}
	return p
}
