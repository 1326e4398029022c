package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/restaurant-console/internal/core"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/domain/gate"
	"github.com/target/restaurant-console/internal/observability/statsd"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Pages    *PageFactory
	Renderer *TemplateRenderer
	Guard    *gate.Guard
	Table    *gate.Table
	Tenants  *core.TenantDirectory
	// Optional: handler for /api/ requests, usually the backend proxy.
	API http.Handler
	// Optional: dependencies probed by /readyz.
	Checks map[string]HealthCheck

	CookieName    string
	SecureCookies bool
	Logger        *slog.Logger
	Metrics       statsd.Sink
}

// NewRouter creates the console router. Page and API requests pass through
// tab identity and the edge guard; health probes do not.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	paths := services.Table.Paths()

	mux := http.NewServeMux()
	if services.API != nil {
		mux.Handle("/api/", services.API)
	}

	registerAuthRoutes(mux, paths, &AuthHandlers{
		Pages:    services.Pages,
		Renderer: services.Renderer,
		Paths:    paths,
		Logger:   logger,
	})
	registerPageRoutes(mux, paths, &PageHandlers{
		Pages:      services.Pages,
		Renderer:   services.Renderer,
		Table:      services.Table,
		Tenants:    services.Tenants,
		CookieName: services.CookieName,
		Logger:     logger,
	})

	var h http.Handler = mux
	h = EdgeGuard(EdgeGuardOptions{
		Guard:      services.Guard,
		CookieName: services.CookieName,
		Logger:     logger,
		Metrics:    services.Metrics,
	})(h)
	h = TabIdentity(TabIdentityOptions{
		Skip:         services.Guard.Excluded,
		SecureCookie: services.SecureCookies,
	})(h)

	// Probes bypass the guard so they never redirect to login.
	top := http.NewServeMux()
	top.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	top.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	top.Handle("GET /readyz", readinessHandler(services.Checks, logger))
	top.Handle("/", h)

	return Recover(logger)(Logging(logger)(top))
}

func registerAuthRoutes(mux *http.ServeMux, paths domainauth.Paths, h *AuthHandlers) {
	mux.HandleFunc("GET "+paths.Login, h.LoginForm)
	mux.HandleFunc("POST "+paths.Login, h.Login)
	mux.HandleFunc("POST "+paths.Login+"/input", h.LoginInput)
	mux.HandleFunc("POST "+paths.Logout, h.Logout)
}

func registerPageRoutes(mux *http.ServeMux, paths domainauth.Paths, h *PageHandlers) {
	if paths.Root == "/" {
		mux.HandleFunc("GET /{$}", h.Root)
	} else {
		mux.HandleFunc("GET "+paths.Root, h.Root)
	}
	mux.HandleFunc("GET "+paths.Dashboard, h.Dashboard)
	mux.HandleFunc("GET "+paths.Profile, h.Profile)
	for path, title := range sectionTitles {
		mux.HandleFunc("GET "+path, h.Section(title))
	}
}

var sectionTitles = map[string]string{
	"/menu":      "Menu",
	"/inventory": "Inventory",
	"/tenants":   "Tenants",
	"/users":     "Users",
}
