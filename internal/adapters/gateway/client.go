// Package gateway reaches the restaurant backend on behalf of one visitor.
package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
)

// Backend endpoint paths.
const (
	PathMe      = "/api/auth/me"
	PathLogin   = "/api/auth/login"
	PathLogout  = "/api/auth/logout"
	PathTenants = "/api/tenants"
)

// Default JMESPath expressions for backend payloads.
const (
	DefaultUserPath    = "user || @"
	DefaultMessagePath = "message || error.message || error"
)

const defaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// UserPath locates the user object in identity and login responses.
	UserPath string
	// MessagePath locates the visitor-facing message in failure payloads.
	MessagePath string
	// Roles maps backend role tags; nil accepts canonical tags only.
	Roles  RoleMapper
	Logger *slog.Logger
}

// RoleMapper turns backend role tags into console roles, returning the tags it
// could not map.
type RoleMapper interface {
	Map(tags []string) (domainauth.RoleSet, []string)
}

type canonicalRoles struct{}

func (canonicalRoles) Map(tags []string) (domainauth.RoleSet, []string) {
	return domainauth.ParseRoleSet(tags)
}

// Client holds the process-wide gateway settings. Bind it to a request to talk
// to the backend with that visitor's cookies.
type Client struct {
	base      *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	userExpr  searcher
	msgExpr   searcher
	roles     RoleMapper
	logger    *slog.Logger
}

// NewClient validates cfg and compiles its payload expressions.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway: unsupported base URL scheme %q", base.Scheme)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	userExpr, err := compile(cfg.UserPath, DefaultUserPath)
	if err != nil {
		return nil, fmt.Errorf("gateway: user path: %w", err)
	}
	msgExpr, err := compile(cfg.MessagePath, DefaultMessagePath)
	if err != nil {
		return nil, fmt.Errorf("gateway: message path: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	roles := cfg.Roles
	if roles == nil {
		roles = canonicalRoles{}
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		base:      base,
		timeout:   timeout,
		transport: transport,
		userExpr:  userExpr,
		msgExpr:   msgExpr,
		roles:     roles,
		logger:    logger.With("component", "gateway"),
	}, nil
}

// BaseURL returns a copy of the backend base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) endpoint(p string) string {
	u := *c.base
	u.Path += p
	return u.String()
}

// searcher is a compiled JMESPath expression.
type searcher interface {
	Search(data any) (any, error)
}

func compile(expr, fallback string) (searcher, error) {
	if strings.TrimSpace(expr) == "" {
		expr = fallback
	}
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiled, nil
}
