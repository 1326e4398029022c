package metrics

import (
	"time"

	obserrors "github.com/target/restaurant-console/internal/observability/errors"
	"github.com/target/restaurant-console/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultDetached = "detached"
	ResultJoined   = "joined"
)

// GuardMetric describes one edge-guard decision.
type GuardMetric struct {
	Policy   string
	Reason   string
	Redirect bool
}

// EmitGuardDecision counts edge-guard decisions by policy, reason and action.
func EmitGuardDecision(sink statsd.Sink, in GuardMetric) {
	if sink == nil {
		return
	}
	action := "pass"
	if in.Redirect {
		action = "redirect"
	}
	sink.Count("gate.guard.decision", 1, map[string]string{
		"policy": in.Policy,
		"reason": in.Reason,
		"action": action,
	})
}

// AuthCallMetric captures an authentication call made by a page's session store.
type AuthCallMetric struct {
	Op       string // check, login, logout
	Result   string
	Duration time.Duration
	Err      error
}

// EmitAuthCall emits authentication call counters and latency.
func EmitAuthCall(sink statsd.Sink, in AuthCallMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"op":     in.Op,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("gate.auth.call", 1, tags)
	if in.Duration > 0 {
		sink.Timing("gate.auth.duration", in.Duration, CloneTags(tags))
	}
}

// EmitBootstrap counts root-route bootstrap outcomes by path taken.
func EmitBootstrap(sink statsd.Sink, route, destination string) {
	if sink == nil {
		return
	}
	sink.Count("gate.bootstrap", 1, map[string]string{
		"route":       route,
		"destination": destination,
	})
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// EmitAuthWaiters reports how many callers are waiting on one authentication flight.
func EmitAuthWaiters(sink statsd.Sink, op string, waiters int) {
	if sink == nil {
		return
	}
	sink.Gauge("gate.auth.waiters", float64(waiters), map[string]string{"op": op})
}
