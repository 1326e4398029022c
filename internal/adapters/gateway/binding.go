package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/domain/model"
	apperrors "github.com/target/restaurant-console/internal/errors"
	"github.com/target/restaurant-console/internal/ports"
	"golang.org/x/net/publicsuffix"
)

var (
	_ ports.IdentityGateway = (*Binding)(nil)
	_ ports.TenantSource    = (*Binding)(nil)
)

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 1 << 20

// DefaultRejectionMessage is used when a rejected login carries no message.
const DefaultRejectionMessage = "Invalid username or password."

// BindOptions configures a per-visitor Binding.
type BindOptions struct {
	// OnUnauthorized runs when a backend call other than login or logout answers 401.
	OnUnauthorized func()
}

// Binding talks to the backend as one visitor. It forwards the visitor's cookies
// and relays backend Set-Cookie headers to the visitor's response verbatim.
type Binding struct {
	client *Client
	http   *http.Client
	relay  *cookieRelay
}

// Bind creates a Binding for the visitor behind r. Set-Cookie headers from the
// backend are added to w's headers until Detach is called.
func (c *Client) Bind(w http.ResponseWriter, r *http.Request, opts BindOptions) (*Binding, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("gateway: cookie jar: %w", err)
	}
	if cookies := r.Cookies(); len(cookies) > 0 {
		jar.SetCookies(c.base, cookies)
	}

	var dst http.Header
	if w != nil {
		dst = w.Header()
	}
	relay := &cookieRelay{next: c.transport, dst: dst}

	var rt http.RoundTripper = relay
	if opts.OnUnauthorized != nil {
		onUnauthorized := opts.OnUnauthorized
		rt = &UnauthorizedInterceptor{
			Next:           relay,
			Exempt:         ExemptPaths(PathLogin, PathLogout),
			OnUnauthorized: func(*http.Request) { onUnauthorized() },
		}
	}

	return &Binding{
		client: c,
		http:   &http.Client{Jar: jar, Transport: rt, Timeout: c.timeout},
		relay:  relay,
	}, nil
}

// Detach stops relaying cookies to the visitor's response.
func (b *Binding) Detach() { b.relay.detach() }

// Me resolves the current identity from the forwarded cookie.
func (b *Binding) Me(ctx context.Context) (domainauth.User, error) {
	status, body, err := b.do(ctx, http.MethodGet, PathMe, nil)
	if err != nil {
		return domainauth.User{}, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domainauth.User{}, apperrors.Unauthenticated(b.message(body, "not authenticated"))
	case status >= 300:
		return domainauth.User{}, apperrors.Unavailablef("identity check answered %d", status)
	}
	return b.decodeUser(ctx, body)
}

// Login submits credentials. A 4xx answer is a credential rejection carrying the
// backend's message.
func (b *Binding) Login(ctx context.Context, in ports.LoginInput) (domainauth.User, error) {
	payload, err := json.Marshal(map[string]string{"username": in.Username, "password": in.Password})
	if err != nil {
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode login request")
	}
	status, body, err := b.do(ctx, http.MethodPost, PathLogin, payload)
	if err != nil {
		return domainauth.User{}, err
	}
	switch {
	case status >= 400 && status < 500:
		return domainauth.User{}, apperrors.CredentialsRejected(b.message(body, DefaultRejectionMessage), status)
	case status >= 300:
		return domainauth.User{}, apperrors.Unavailablef("login answered %d", status)
	}
	return b.decodeUser(ctx, body)
}

// Logout asks the backend to clear the access-token cookie.
func (b *Binding) Logout(ctx context.Context) error {
	status, _, err := b.do(ctx, http.MethodPost, PathLogout, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return apperrors.Unavailablef("logout answered %d", status)
	}
	return nil
}

// ListTenants returns the tenants visible to the visitor.
func (b *Binding) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	status, body, err := b.do(ctx, http.MethodGet, PathTenants, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, apperrors.Unauthenticated("not authenticated")
	case status >= 300:
		return nil, apperrors.Unavailablef("tenant list answered %d", status)
	}

	var wrapped struct {
		Tenants []model.Tenant `json:"tenants"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Tenants != nil {
		return wrapped.Tenants, nil
	}
	var tenants []model.Tenant
	if err := json.Unmarshal(body, &tenants); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode tenant list")
	}
	return tenants, nil
}

func (b *Binding) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.client.endpoint(path), body)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := b.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, apperrors.Unavailable(err, "backend unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, apperrors.Unavailable(err, "read backend response")
	}
	b.client.logger.DebugContext(ctx, "backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp.StatusCode, data, nil
}

type userPayload struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	Roles     []string `json:"roles"`
}

func (b *Binding) decodeUser(ctx context.Context, body []byte) (domainauth.User, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode identity")
	}
	found, err := b.client.userExpr.Search(doc)
	if err != nil || found == nil {
		return domainauth.User{}, apperrors.Unavailablef("identity payload has no user")
	}
	raw, err := json.Marshal(found)
	if err != nil {
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode identity")
	}
	var p userPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode identity")
	}
	if p.ID == "" {
		return domainauth.User{}, apperrors.Unavailablef("identity payload has no user id")
	}

	roles, unknown := b.client.roles.Map(p.Roles)
	if len(unknown) > 0 {
		b.client.logger.WarnContext(ctx, "ignoring unknown role tags", "user_id", p.ID, "tags", unknown)
	}
	return domainauth.User{ID: p.ID, FirstName: p.FirstName, Roles: roles}, nil
}

// message extracts the visitor-facing failure message, or returns fallback.
func (b *Binding) message(body []byte, fallback string) string {
	var doc any
	if len(body) == 0 || json.Unmarshal(body, &doc) != nil {
		return fallback
	}
	found, err := b.client.msgExpr.Search(doc)
	if err != nil {
		return fallback
	}
	if s, ok := found.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
