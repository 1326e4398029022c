// Package tabstore provides tab-scoped flag storage.
package tabstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/target/restaurant-console/internal/ports"
)

var _ ports.TabStorage = (*Memory)(nil)

// ErrNoTab is returned when a flag operation has no tab identifier.
var ErrNoTab = errors.New("tab id is required")

// DefaultTTL keeps a tab flag alive for a working day.
const DefaultTTL = 12 * time.Hour

type flagKey struct {
	tab string
	key string
}

// Memory is an in-process TabStorage. Flags vanish on restart, which matches
// the lifetime of a tab in single-instance deployments.
type Memory struct {
	mu    sync.Mutex
	flags map[flagKey]time.Time
	ttl   time.Duration
	now   func() time.Time
}

// MemoryOptions configures NewMemory.
type MemoryOptions struct {
	TTL time.Duration
	Now func() time.Time
}

// NewMemory creates an empty Memory store.
func NewMemory(opts MemoryOptions) *Memory {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Memory{flags: make(map[flagKey]time.Time), ttl: ttl, now: now}
}

func (m *Memory) SetFlag(_ context.Context, tabID, key string) error {
	if tabID == "" {
		return ErrNoTab
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.flags[flagKey{tabID, key}] = m.now().Add(m.ttl)
	return nil
}

func (m *Memory) Flag(_ context.Context, tabID, key string) (bool, error) {
	if tabID == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.flags[flagKey{tabID, key}]
	if !ok {
		return false, nil
	}
	if !m.now().Before(exp) {
		delete(m.flags, flagKey{tabID, key})
		return false, nil
	}
	return true, nil
}

func (m *Memory) ClearFlag(_ context.Context, tabID, key string) error {
	if tabID == "" {
		return nil
	}
	m.mu.Lock()
	delete(m.flags, flagKey{tabID, key})
	m.mu.Unlock()
	return nil
}

// sweep drops expired flags. Callers hold mu.
func (m *Memory) sweep() {
	now := m.now()
	for k, exp := range m.flags {
		if !now.Before(exp) {
			delete(m.flags, k)
		}
	}
}
