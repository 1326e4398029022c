package service

import (
	"sync"

	"github.com/target/restaurant-console/internal/observability/metrics"
	"github.com/target/restaurant-console/internal/observability/statsd"
	"golang.org/x/sync/singleflight"
)

// AuthFlights coalesces authentication calls. One AuthFlights is shared by every
// page instance of the process; keys scope a flight to one browser tab.
type AuthFlights struct {
	group   singleflight.Group
	metrics statsd.Sink

	mu      sync.Mutex
	waiters map[string]int
}

// NewAuthFlights creates an empty AuthFlights.
func NewAuthFlights(sink statsd.Sink) *AuthFlights {
	return &AuthFlights{metrics: sink, waiters: make(map[string]int)}
}

// join starts fn under key, or attaches to the flight already running there.
// The caller must invoke leave once it stops waiting.
func (f *AuthFlights) join(key, op string, fn func() (any, error)) (ch <-chan singleflight.Result, leave func()) {
	ch = f.group.DoChan(key, fn)

	f.mu.Lock()
	f.waiters[key]++
	n := f.waiters[key]
	f.mu.Unlock()
	metrics.EmitAuthWaiters(f.metrics, op, n)

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.waiters[key]--; f.waiters[key] <= 0 {
			delete(f.waiters, key)
		}
	}
}

// AuthFlightKey scopes authentication calls to a browser tab.
func AuthFlightKey(tabID string) string {
	return "tab:" + tabID + ":auth"
}
