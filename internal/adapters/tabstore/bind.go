package tabstore

import (
	"context"

	"github.com/target/restaurant-console/internal/ports"
)

// Bound is a FlagStore fixed to one tab.
type Bound struct {
	storage ports.TabStorage
	tabID   string
}

var _ ports.FlagStore = Bound{}

// Bind scopes storage to tabID.
func Bind(storage ports.TabStorage, tabID string) Bound {
	return Bound{storage: storage, tabID: tabID}
}

// TabID returns the bound tab identifier.
func (b Bound) TabID() string { return b.tabID }

func (b Bound) Set(ctx context.Context, key string) error {
	return b.storage.SetFlag(ctx, b.tabID, key)
}

func (b Bound) Get(ctx context.Context, key string) (bool, error) {
	return b.storage.Flag(ctx, b.tabID, key)
}

func (b Bound) Clear(ctx context.Context, key string) error {
	return b.storage.ClearFlag(ctx, b.tabID, key)
}
