package httpx

import "context"

// tabKey is an unexported context key type to avoid collisions across packages.
type tabKey struct{}

// WithTabID returns a child context that carries the browser tab identifier.
func WithTabID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, tabKey{}, id)
}

// TabIDFromContext returns the tab identifier set by TabIdentity.
func TabIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tabKey{}).(string)
	return id, ok && id != ""
}
