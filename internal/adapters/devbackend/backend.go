package devbackend

// Package devbackend provides a config-driven stand-in for the restaurant backend's
// authentication and tenant endpoints, for local development.

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/target/restaurant-console/internal/domain/model"
)

// User is a dev account.
type User struct {
	ID        string
	Username  string
	Password  string
	FirstName string
	Roles     []string
}

// Config controls the dev backend.
type Config struct {
	Users   []User
	Tenants []model.Tenant
	// CookieName defaults to accessToken.
	CookieName string
	// SessionDuration defaults to 8h.
	SessionDuration time.Duration
	Logger          *slog.Logger
}

type session struct {
	userID    string
	expiresAt time.Time
}

// Backend serves /api/auth/me, /api/auth/login, /api/auth/logout and /api/tenants.
// Tokens are opaque random strings held in memory.
type Backend struct {
	cookieName string
	duration   time.Duration
	logger     *slog.Logger
	tenants    []model.Tenant

	byName map[string]User
	byID   map[string]User

	mu       sync.Mutex
	sessions map[string]session
	now      func() time.Time
}

// New validates cfg and builds a Backend.
func New(cfg Config) (*Backend, error) {
	if len(cfg.Users) == 0 {
		return nil, errors.New("dev backend: at least one user is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{
		cookieName: cfg.CookieName,
		duration:   cfg.SessionDuration,
		logger:     logger.With("component", "devbackend"),
		tenants:    append([]model.Tenant(nil), cfg.Tenants...),
		byName:     make(map[string]User, len(cfg.Users)),
		byID:       make(map[string]User, len(cfg.Users)),
		sessions:   make(map[string]session),
		now:        time.Now,
	}
	if b.cookieName == "" {
		b.cookieName = "accessToken"
	}
	if b.duration == 0 {
		b.duration = 8 * time.Hour
	}
	for _, u := range cfg.Users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("dev backend: user %q needs a username and password", u.Username)
		}
		if _, dup := b.byName[u.Username]; dup {
			return nil, fmt.Errorf("dev backend: duplicate user %q", u.Username)
		}
		if u.ID == "" {
			u.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(u.Username)).String()
		}
		if u.FirstName == "" {
			u.FirstName = u.Username
		}
		b.byName[u.Username] = u
		b.byID[u.ID] = u
	}
	return b, nil
}

// Handler returns the backend's routes.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", b.handleMe)
	mux.HandleFunc("POST /api/auth/login", b.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", b.handleLogout)
	mux.HandleFunc("GET /api/tenants", b.handleTenants)
	return mux
}

type userBody struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	Roles     []string `json:"roles"`
}

func toBody(u User) userBody {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userBody{ID: u.ID, FirstName: u.FirstName, Roles: roles}
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := b.current(r)
	if !ok {
		b.unauthorized(w, r)
		return
	}
	writeJSON(w, http.StatusOK, toBody(u))
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed login request."})
		return
	}
	u, ok := b.byName[in.Username]
	if !ok || u.Password != in.Password {
		b.logger.InfoContext(r.Context(), "dev login rejected", "username", in.Username)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password."})
		return
	}

	token, err := randomString(32)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Could not start a session."})
		return
	}
	expires := b.now().Add(b.duration)
	b.mu.Lock()
	b.sessions[token] = session{userID: u.ID, expiresAt: expires}
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     b.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"user": toBody(u)})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(b.cookieName); err == nil {
		b.mu.Lock()
		delete(b.sessions, c.Value)
		b.mu.Unlock()
	}
	b.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// unauthorized answers 401 and clears a stale token so the visitor's browser
// stops presenting it.
func (b *Backend) unauthorized(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(b.cookieName); err == nil && c.Value != "" {
		b.clearCookie(w)
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authenticated."})
}

func (b *Backend) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     b.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (b *Backend) handleTenants(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.current(r); !ok {
		b.unauthorized(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": b.tenants})
}

func (b *Backend) current(r *http.Request) (User, bool) {
	c, err := r.Cookie(b.cookieName)
	if err != nil || c.Value == "" {
		return User{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[c.Value]
	if !ok {
		return User{}, false
	}
	if !b.now().Before(s.expiresAt) {
		delete(b.sessions, c.Value)
		return User{}, false
	}
	u, ok := b.byID[s.userID]
	return u, ok
}

// ParseUsers parses "username:password:role|role" entries separated by commas.
// An optional fourth field sets the first name.
func ParseUsers(raw string) ([]User, error) {
	var users []User
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("dev user %q: want username:password:roles[:first name]", entry)
		}
		u := User{Username: parts[0], Password: parts[1]}
		for _, r := range strings.Split(parts[2], "|") {
			if r = strings.TrimSpace(r); r != "" {
				u.Roles = append(u.Roles, r)
			}
		}
		if len(parts) == 4 {
			u.FirstName = parts[3]
		}
		users = append(users, u)
	}
	return users, nil
}

// TenantsFromNames builds active tenants with IDs derived from their names.
func TenantsFromNames(names []string) []model.Tenant {
	tenants := make([]model.Tenant, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		tenants = append(tenants, model.Tenant{
			ID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte("tenant:"+name)).String(),
			Name:   name,
			Active: true,
		})
	}
	return tenants
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func randomString(n int) (string, error) {
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
