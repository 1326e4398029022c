package config

import (
	"fmt"
	"strings"
	"time"
)

// GatewayMode selects which backend the console talks to.
type GatewayMode string

const (
	// GatewayModeRemote talks to the backend at GATEWAY_BASE_URL.
	GatewayModeRemote GatewayMode = "remote"
	// GatewayModeDev starts the in-process dev backend (for development only).
	GatewayModeDev GatewayMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for GatewayMode.
func (m *GatewayMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "remote", "dev":
		*m = GatewayMode(v)
		return nil
	default:
		return fmt.Errorf("invalid GatewayMode: %q (valid options: remote, dev)", v)
	}
}

// GatewayConfig configures the backend gateway client.
type GatewayConfig struct {
	Mode GatewayMode `env:"GATEWAY_MODE" envDefault:"remote"`

	// BaseURL is the backend origin. Ignored in dev mode.
	BaseURL string        `env:"GATEWAY_BASE_URL" envDefault:"http://localhost:3000"`
	Timeout time.Duration `env:"GATEWAY_TIMEOUT"  envDefault:"10s"`

	// UserPath and MessagePath are JMESPath expressions applied to backend bodies.
	// Empty values use the gateway defaults.
	UserPath    string `env:"GATEWAY_USER_PATH"`
	MessagePath string `env:"GATEWAY_MESSAGE_PATH"`

	// RoleAliases maps backend role tags onto console roles, e.g. "admin=administrator".
	RoleAliases string `env:"GATEWAY_ROLE_ALIASES"`

	// ProxyAPI forwards browser /api requests to the backend.
	ProxyAPI bool `env:"GATEWAY_PROXY_API" envDefault:"true"`
}

// Sanitize applies guardrails to gateway configuration values.
func (g *GatewayConfig) Sanitize() {
	if g.Mode == "" {
		g.Mode = GatewayModeRemote
	}
	g.BaseURL = strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if g.Timeout <= 0 {
		g.Timeout = 10 * time.Second
	}
	g.UserPath = strings.TrimSpace(g.UserPath)
	g.MessagePath = strings.TrimSpace(g.MessagePath)
	g.RoleAliases = strings.TrimSpace(g.RoleAliases)
}

// DevBackendConfig controls the in-process dev backend.
// Used when GATEWAY_MODE=dev for development and testing.
type DevBackendConfig struct {
	// Addr is the listener for the dev backend; the gateway points at it.
	Addr string `env:"ADDR" envDefault:"127.0.0.1:8081"`

	// Users is a comma-separated list of username:password:role|role[:FirstName].
	Users string `env:"USERS" envDefault:"manager:manager:manager:Morgan,admin:admin:administrator:Alex,server:server:server:Sam,warehouse:warehouse:warehouse-operator:Wren"`

	// Tenants is a comma-separated list of tenant names.
	Tenants []string `env:"TENANTS" envDefault:"Downtown,Harbor Street,Airport Kiosk" envSeparator:","`

	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// Sanitize applies guardrails to dev backend configuration values.
func (d *DevBackendConfig) Sanitize() {
	d.Addr = strings.TrimSpace(d.Addr)
	if d.Addr == "" {
		d.Addr = "127.0.0.1:8081"
	}
	tenants := d.Tenants[:0]
	for _, t := range d.Tenants {
		if t = strings.TrimSpace(t); t != "" {
			tenants = append(tenants, t)
		}
	}
	d.Tenants = tenants
	if d.SessionDuration <= 0 {
		d.SessionDuration = 8 * time.Hour
	}
}
