package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/target/restaurant-console/internal/adapters/gateway"
	"github.com/target/restaurant-console/internal/adapters/tabstore"
	domainauth "github.com/target/restaurant-console/internal/domain/auth"
	"github.com/target/restaurant-console/internal/observability/statsd"
	"github.com/target/restaurant-console/internal/ports"
	"github.com/target/restaurant-console/internal/service"
)

// PageFactoryOptions groups dependencies for PageFactory.
type PageFactoryOptions struct {
	Gateway *gateway.Client
	Tabs    ports.TabStorage
	Paths   domainauth.Paths
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// PageFactory builds one page instance per page request.
type PageFactory struct {
	gateway *gateway.Client
	tabs    ports.TabStorage
	paths   domainauth.Paths
	logger  *slog.Logger
	metrics statsd.Sink
	flights *service.AuthFlights
}

// NewPageFactory constructs a PageFactory.
func NewPageFactory(opts PageFactoryOptions) *PageFactory {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PageFactory{
		gateway: opts.Gateway,
		tabs:    opts.Tabs,
		paths:   opts.Paths.WithDefaults(),
		logger:  logger,
		metrics: opts.Metrics,
		flights: service.NewAuthFlights(opts.Metrics),
	}
}

// Page is the state of one page load: its session store, its backend binding,
// its tab flags and the navigation it has requested.
type Page struct {
	Store     *service.SessionStore
	Bootstrap *service.BootstrapCoordinator
	Backend   *gateway.Binding
	TabID     string

	nav   *pageNavigator
	paths domainauth.Paths
}

// Open builds a fresh page instance for r. Backend Set-Cookie headers are relayed
// onto w until the page is closed.
func (f *PageFactory) Open(w http.ResponseWriter, r *http.Request) (*Page, error) {
	tabID, _ := TabIDFromContext(r.Context())
	logger := f.logger.With("tab_id", tabID, "path", r.URL.Path)
	nav := &pageNavigator{}

	binding, err := f.gateway.Bind(w, r, gateway.BindOptions{
		OnUnauthorized: func() {
			logger.InfoContext(r.Context(), "backend answered 401, returning to login")
			nav.Reload(f.paths.Login)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	flags := tabstore.Bind(f.tabs, tabID)
	opts := service.SessionStoreOptions{
		Gateway:   binding,
		Navigator: nav,
		Flags:     flags,
		Paths:     f.paths,
		Logger:    logger,
		Metrics:   f.metrics,
	}
	if tabID != "" {
		// Pages of one tab share a flight; without a tab a page keeps its own.
		opts.Flights, opts.FlightKey = f.flights, service.AuthFlightKey(tabID)
	}
	store := service.NewSessionStore(opts)
	boot := service.NewBootstrapCoordinator(service.BootstrapOptions{
		Store:     store,
		Gateway:   binding,
		Flags:     flags,
		Navigator: nav,
		Paths:     f.paths,
		Logger:    logger,
		Metrics:   f.metrics,
	})
	return &Page{
		Store:     store,
		Bootstrap: boot,
		Backend:   binding,
		TabID:     tabID,
		nav:       nav,
		paths:     f.paths,
	}, nil
}

// Close detaches the page instance. Late backend responses are discarded.
func (p *Page) Close() {
	p.Store.Detach()
	p.Backend.Detach()
}

// ReturnToLogin requests a hard navigation to the login page. It is used when a
// shared backend call answered 401 on another page's binding.
func (p *Page) ReturnToLogin() { p.nav.Reload(p.paths.Login) }

// Navigated reports whether a navigation has been requested.
func (p *Page) Navigated() bool {
	_, ok := p.nav.pending()
	return ok
}

// Finish writes the pending navigation, if any, and closes the page. It returns
// false when the handler should render instead.
func (p *Page) Finish(w http.ResponseWriter, r *http.Request) bool {
	nav, ok := p.nav.pending()
	if !ok {
		return false
	}
	p.Close()
	Redirect(w, r, nav.path, nav.hard)
	return true
}

// Data returns template data for the page's current session.
func (p *Page) Data(title, page string) PageData {
	d := PageData{Title: title, Page: page, TabID: p.TabID, Paths: p.paths}
	if snap := p.Store.Snapshot(); snap.Authenticated() {
		d.User = snap.User
		d.Roles = snap.User.Roles.Tags()
	}
	return d
}

type navigation struct {
	path string
	hard bool
}

// pageNavigator records the first navigation requested during a page load.
// A response can carry only one redirect; later requests are ignored.
type pageNavigator struct {
	mu  sync.Mutex
	nav *navigation
}

var _ ports.Navigator = (*pageNavigator)(nil)

func (n *pageNavigator) Navigate(path string) { n.set(navigation{path: path}) }

func (n *pageNavigator) Reload(path string) { n.set(navigation{path: path, hard: true}) }

func (n *pageNavigator) set(nav navigation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nav == nil {
		n.nav = &nav
	}
}

func (n *pageNavigator) pending() (navigation, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nav == nil {
		return navigation{}, false
	}
	return *n.nav, true
}
