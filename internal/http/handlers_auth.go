package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	apperrors "github.com/target/restaurant-console/internal/errors"
)

const missingCredentialsMessage = "Enter your username and password."

// AuthHandlers serves the login form, login submission and logout.
type AuthHandlers struct {
	Pages    *PageFactory
	Renderer *TemplateRenderer
	Paths    domainauth.Paths
	Logger   *slog.Logger
}

// LoginForm renders the sign-in form.
func (h *AuthHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	tabID, _ := TabIDFromContext(r.Context())
	h.Renderer.Render(w, r, http.StatusOK, PageData{
		Title: "Sign in",
		Page:  PageLogin,
		TabID: tabID,
		Paths: h.Paths,
	})
}

// Login submits the credentials to the backend. A rejection re-renders the form
// with the backend's message; success sends the visitor to their landing path.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	page, err := h.Pages.Open(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer page.Close()

	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, page, "", apperrors.DisplayMessage(apperrors.Validation("The form could not be read."), ""))
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.renderForm(w, r, page, username, missingCredentialsMessage)
		return
	}

	if err := page.Store.Login(r.Context(), username, password); err != nil {
		if page.Finish(w, r) {
			return
		}
		h.Logger.InfoContext(r.Context(), "login failed", "code", apperrors.GetCode(err))
		h.renderForm(w, r, page, username, page.Store.Snapshot().Error)
		return
	}

	snap := page.Store.Snapshot()
	page.Close()
	Redirect(w, r, domainauth.LandingPath(snap.User.Roles, h.Paths), false)
}

// LoginInput clears a stale login error once the visitor edits the form.
func (h *AuthHandlers) LoginInput(w http.ResponseWriter, r *http.Request) {
	page, err := h.Pages.Open(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page.Store.ClearError()
	page.Close()

	data := page.Data("Sign in", PageLogin)
	data.Error = page.Store.Snapshot().Error
	h.Renderer.RenderFragment(w, "login-error", data)
}

// Logout ends the session. The visitor always lands on the login page, unless the
// request was abandoned, in which case the next root load completes the logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	page, err := h.Pages.Open(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer page.Close()

	page.Store.Logout(r.Context())
	if !page.Finish(w, r) {
		h.Logger.InfoContext(r.Context(), "logout left pending for recovery", "tab_id", page.TabID)
	}
}

func (h *AuthHandlers) renderForm(w http.ResponseWriter, r *http.Request, page *Page, username, msg string) {
	page.Close()
	data := page.Data("Sign in", PageLogin)
	data.Username = username
	data.Error = msg
	h.Renderer.Render(w, r, http.StatusOK, data)
}

func (h *AuthHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger.ErrorContext(r.Context(), "page setup failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
