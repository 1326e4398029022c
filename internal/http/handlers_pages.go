package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/restaurant-console/internal/core"
	"github.com/target/restaurant-console/internal/domain/gate"
	apperrors "github.com/target/restaurant-console/internal/errors"
	"github.com/target/restaurant-console/internal/service"
)

const (
	tenantsUnavailableNotice = "Tenants are unavailable right now."
	backendUnavailableNotice = "The restaurant backend cannot be reached. Try again in a moment."
)

// PageHandlers serves the console pages behind the gate.
type PageHandlers struct {
	Pages    *PageFactory
	Renderer *TemplateRenderer
	Table    *gate.Table
	Tenants  *core.TenantDirectory
	// CookieName is the access-token cookie; empty means DefaultAccessTokenCookie.
	CookieName string
	Logger     *slog.Logger
}

// Root runs the bootstrap sequence and redirects to wherever it decides.
func (h *PageHandlers) Root(w http.ResponseWriter, r *http.Request) {
	page, err := h.Pages.Open(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer page.Close()

	out := page.Bootstrap.Run(r.Context())
	h.Logger.DebugContext(r.Context(), "bootstrap finished",
		"route", out.Route,
		"destination", out.Destination,
		"tab_id", page.TabID,
	)
	page.Finish(w, r)
}

// Dashboard lists the tenants visible to a privileged visitor.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	page, ok := h.open(w, r)
	if !ok {
		return
	}
	defer page.Close()

	data := page.Data("Dashboard", PageDashboard)
	if r.URL.Query().Get("refresh") == "1" {
		if err := h.Tenants.Invalidate(r.Context(), data.User.ID); err != nil {
			h.Logger.WarnContext(r.Context(), "tenant cache invalidate failed", "error", err)
		}
	}
	tenants, err := h.Tenants.Tenants(r.Context(), data.User.ID, page.Backend)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			page.ReturnToLogin()
		}
		if page.Finish(w, r) {
			return
		}
		h.Logger.WarnContext(r.Context(), "tenant list unavailable", "error", err)
		data.Notice = tenantsUnavailableNotice
	}
	data.Tenants = tenants

	page.Close()
	h.Renderer.Render(w, r, http.StatusOK, data)
}

// Profile shows the visitor's own identity.
func (h *PageHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	page, ok := h.open(w, r)
	if !ok {
		return
	}
	page.Close()
	h.Renderer.Render(w, r, http.StatusOK, page.Data("Profile", PageProfile))
}

// Section renders a role-gated console section.
func (h *PageHandlers) Section(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := h.open(w, r)
		if !ok {
			return
		}
		page.Close()
		h.Renderer.Render(w, r, http.StatusOK, page.Data(title, PageSection))
	}
}

// open builds the page, resolves the session and applies the route table.
// It returns false when a response has already been written.
func (h *PageHandlers) open(w http.ResponseWriter, r *http.Request) (*Page, bool) {
	page, err := h.Pages.Open(w, r)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}

	err = page.Store.CheckAuthStatus(r.Context())
	if page.Finish(w, r) {
		return nil, false
	}
	switch {
	case err == nil, errors.Is(err, service.ErrDetached):
	case apperrors.IsUnavailable(err) && gate.TokenPresent(r, h.cookieName()):
		// Sending a token holder to login would bounce them straight back here.
		h.Logger.WarnContext(r.Context(), "identity check unavailable", "error", err)
		page.Close()
		data := page.Data("Backend unavailable", PageError)
		data.Notice = backendUnavailableNotice
		h.Renderer.Render(w, r, http.StatusServiceUnavailable, data)
		return nil, false
	default:
		h.Logger.DebugContext(r.Context(), "no session for page", "error", err)
	}

	d := h.Table.Authorize(r.URL.Path, page.Store.Snapshot())
	if target, redirect := d.Redirect(); redirect {
		h.Logger.DebugContext(r.Context(), "page denied", "reason", d.Reason, "target", target)
		page.Close()
		Redirect(w, r, target, false)
		return nil, false
	}
	return page, true
}

func (h *PageHandlers) cookieName() string {
	if h.CookieName == "" {
		return DefaultAccessTokenCookie
	}
	return h.CookieName
}

func (h *PageHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger.ErrorContext(r.Context(), "page setup failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
