package config

import (
	"strings"

	"github.com/target/restaurant-console/internal/domain/gate"
)

const defaultAccessTokenCookie = "accessToken"

// GatePolicy is the edge guard policy for requests without an access-token cookie.
type GatePolicy string

// UnmarshalText implements encoding.TextUnmarshaler for GatePolicy.
func (p *GatePolicy) UnmarshalText(text []byte) error {
	parsed, err := gate.ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = GatePolicy(parsed)
	return nil
}

// Set implements pflag.Value so the policy can be overridden on the command line.
func (p *GatePolicy) Set(v string) error { return p.UnmarshalText([]byte(v)) }

// String implements pflag.Value.
func (p *GatePolicy) String() string { return string(*p) }

// Type implements pflag.Value.
func (p *GatePolicy) Type() string { return "policy" }

// GateConfig configures the edge guard and the page route table.
type GateConfig struct {
	// Policy is strict (redirect tokenless requests at the edge) or lazy
	// (let pages resolve the session and redirect on failure).
	Policy GatePolicy `env:"GATE_POLICY" envDefault:"strict"`

	// AccessTokenCookie is the name of the backend's access-token cookie.
	// The console only checks for its presence.
	AccessTokenCookie string `env:"GATE_ACCESS_TOKEN_COOKIE" envDefault:"accessToken"`

	// RoutesFile optionally replaces the built-in route table with a YAML file.
	RoutesFile string `env:"GATE_ROUTES_FILE"`
}

// Sanitize applies guardrails to gate configuration values.
func (g *GateConfig) Sanitize() {
	if g.Policy == "" {
		g.Policy = GatePolicy(gate.PolicyStrict)
	}
	g.AccessTokenCookie = strings.TrimSpace(g.AccessTokenCookie)
	if g.AccessTokenCookie == "" {
		g.AccessTokenCookie = defaultAccessTokenCookie
	}
	g.RoutesFile = strings.TrimSpace(g.RoutesFile)
}

// GuardPolicy returns the policy as the domain type.
func (g GateConfig) GuardPolicy() gate.Policy { return gate.Policy(g.Policy) }
