package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/domain/model"
)

// PageData is the template model shared by every console page.
type PageData struct {
	Title   string
	Page    string
	TabID   string
	Paths   domainauth.Paths
	User    *domainauth.User
	Roles   []string
	Tenants []model.Tenant

	// Login form state.
	Username string
	Error    string

	Notice string
}

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing *.tmpl files (required)
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses every template in cfg.TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := template.New("root").ParseFS(cfg.TemplateFS, "*.tmpl")
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	return &TemplateRenderer{t: t, logger: logger}, nil
}

// Render writes the full layout, or only the content fragment for htmx requests.
func (r *TemplateRenderer) Render(w http.ResponseWriter, req *http.Request, status int, data PageData) {
	name := "layout"
	if WantsPartial(req) {
		name = "content"
	}
	r.execute(w, name, status, data)
}

// RenderFragment writes a single named template.
func (r *TemplateRenderer) RenderFragment(w http.ResponseWriter, name string, data PageData) {
	r.execute(w, name, http.StatusOK, data)
}

func (r *TemplateRenderer) execute(w http.ResponseWriter, name string, status int, data PageData) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", name),
			slog.Any("error", err),
		)
	}
}
