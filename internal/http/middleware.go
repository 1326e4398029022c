package httpx

import (
	"log/slog"
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/target/restaurant-console/internal/domain/gate"
	"github.com/target/restaurant-console/internal/observability/metrics"
	"github.com/target/restaurant-console/internal/observability/statsd"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// EdgeGuardOptions configures EdgeGuard.
type EdgeGuardOptions struct {
	Guard      *gate.Guard
	CookieName string
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// EdgeGuard applies the route guard before any page handler runs. It sees only
// the raw request and the presence of the access-token cookie.
func EdgeGuard(opts EdgeGuardOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = DefaultAccessTokenCookie
	}
	policy := string(opts.Guard.Policy())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			present := gate.TokenPresent(r, cookieName)
			d := opts.Guard.Decide(r.URL.Path, present)
			if d.Reason == gate.ReasonExcluded {
				next.ServeHTTP(w, r)
				return
			}

			target, redirect := d.Redirect()
			metrics.EmitGuardDecision(opts.Metrics, metrics.GuardMetric{
				Policy:   policy,
				Reason:   string(d.Reason),
				Redirect: redirect,
			})
			logger.DebugContext(r.Context(), "edge guard",
				slog.String("path", r.URL.Path),
				slog.Bool("token_present", present),
				slog.String("decision", d.String()),
			)
			if redirect {
				Redirect(w, r, target, false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var tabIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// TabIdentityOptions configures TabIdentity.
type TabIdentityOptions struct {
	// Skip reports paths that need no tab identity (assets, API).
	Skip         func(path string) bool
	SecureCookie bool
}

// TabIdentity resolves the browser tab identifier from the X-Console-Tab header
// or the console_tab session cookie, minting a new one when neither is usable.
func TabIdentity(opts TabIdentityOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Skip != nil && opts.Skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			id := r.Header.Get(TabHeader)
			if !tabIDPattern.MatchString(id) {
				id = ""
				if c, err := r.Cookie(TabCookie); err == nil && tabIDPattern.MatchString(c.Value) {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     TabCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.SecureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithTabID(r.Context(), id)))
		})
	}
}
