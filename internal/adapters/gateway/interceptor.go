package gateway

import (
	"net/http"
	"sync"
)

// UnauthorizedInterceptor watches backend responses and reports any 401 to
// OnUnauthorized. Requests matched by Exempt are passed through untouched.
type UnauthorizedInterceptor struct {
	Next           http.RoundTripper
	Exempt         func(*http.Request) bool
	OnUnauthorized func(*http.Request)
}

func (t *UnauthorizedInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && t.OnUnauthorized != nil {
		if t.Exempt == nil || !t.Exempt(req) {
			t.OnUnauthorized(req)
		}
	}
	return resp, nil
}

// ExemptPaths matches requests whose URL path ends with one of paths.
func ExemptPaths(paths ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		for _, p := range paths {
			if hasPathSuffix(r.URL.Path, p) {
				return true
			}
		}
		return false
	}
}

func hasPathSuffix(full, p string) bool {
	return len(full) >= len(p) && full[len(full)-len(p):] == p
}

// cookieRelay copies backend Set-Cookie headers onto the visitor's response.
// After detach it drops them, so a late response never touches a finished page.
type cookieRelay struct {
	next http.RoundTripper

	mu       sync.Mutex
	dst      http.Header
	detached bool
}

func (t *cookieRelay) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	values := resp.Header.Values("Set-Cookie")
	if len(values) == 0 {
		return resp, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached || t.dst == nil {
		return resp, nil
	}
	for _, v := range values {
		t.dst.Add("Set-Cookie", v)
	}
	return resp, nil
}

func (t *cookieRelay) detach() {
	t.mu.Lock()
	t.detached = true
	t.mu.Unlock()
}
