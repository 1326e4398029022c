package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/restaurant-console/internal/data"
	"github.com/target/restaurant-console/internal/domain/model"
	"github.com/target/restaurant-console/internal/mocks"
	"github.com/target/restaurant-console/internal/testutil"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=core

var sampleTenants = []model.Tenant{
	{ID: "t-2", Name: "uptown", Active: true},
	{ID: "t-1", Name: "Downtown", Active: true},
}

func newDirectory(t *testing.T) (*TenantDirectory, *FixedTimeProvider) {
	t.Helper()
	clock := NewFixedTimeProvider(testutil.TestTime())
	dir := NewTenantDirectory(TenantDirectoryOptions{
		Cache: data.NewMemoryCacheRepo(clock.Now),
		TTL:   time.Minute,
		Clock: clock,
	})
	return dir, clock
}

func TestTenantDirectory_CachesWithinTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil).Times(1)

	dir, clock := newDirectory(t)
	ctx := context.Background()

	first, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown", "uptown"}, names(first))

	clock.Add(59 * time.Second)
	second, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTenantDirectory_RefetchesAfterTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	gomock.InOrder(
		src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants[:1], nil),
		src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil),
	)

	dir, clock := newDirectory(t)
	ctx := context.Background()

	first, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	clock.Add(time.Minute)
	second, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestTenantDirectory_Invalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil).Times(2)

	dir, _ := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	require.NoError(t, dir.Invalidate(ctx, "u-1"))
	_, err = dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
}

func TestTenantDirectory_ScopedPerUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil).Times(2)

	dir, _ := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	_, err = dir.Tenants(ctx, "u-2", src)
	require.NoError(t, err)
}

func TestTenantDirectory_SourceErrorNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	boom := errors.New("backend unavailable")
	gomock.InOrder(
		src.EXPECT().ListTenants(gomock.Any()).Return(nil, boom),
		src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil),
	)

	dir, _ := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Tenants(ctx, "u-1", src)
	require.ErrorIs(t, err, boom)

	got, err := dir.Tenants(ctx, "u-1", src)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTenantDirectory_CacheFailureFallsBackToSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)
	src := mocks.NewMockTenantSource(ctrl)

	cache.EXPECT().Get(gomock.Any(), "tenants:user:u-1").Return(nil, errors.New("redis down"))
	src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil)
	cache.EXPECT().Set(gomock.Any(), "tenants:user:u-1", gomock.Any(), time.Minute).Return(errors.New("redis down"))

	dir := NewTenantDirectory(TenantDirectoryOptions{Cache: cache, TTL: time.Minute})
	got, err := dir.Tenants(context.Background(), "u-1", src)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTenantDirectory_StoresFetchTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)
	src := mocks.NewMockTenantSource(ctrl)
	clock := NewFixedTimeProvider(testutil.TestTime())

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	src.EXPECT().ListTenants(gomock.Any()).Return(sampleTenants, nil)
	cache.EXPECT().
		Set(gomock.Any(), "tenants:user:u-1", gomock.Any(), DefaultTenantTTL).
		DoAndReturn(func(_ context.Context, _ string, raw []byte, _ time.Duration) error {
			var entry tenantEntry
			require.NoError(t, json.Unmarshal(raw, &entry))
			assert.True(t, entry.FetchedAt.Equal(testutil.TestTime()))
			return nil
		})

	dir := NewTenantDirectory(TenantDirectoryOptions{Cache: cache, Clock: clock})
	_, err := dir.Tenants(context.Background(), "u-1", src)
	require.NoError(t, err)
}

func TestTenantDirectory_ConcurrentMissesShareFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	release := make(chan struct{})
	src.EXPECT().ListTenants(gomock.Any()).DoAndReturn(func(context.Context) ([]model.Tenant, error) {
		<-release
		return sampleTenants, nil
	}).MinTimes(1).MaxTimes(2)

	dir, _ := newDirectory(t)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := dir.Tenants(context.Background(), "u-1", src)
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	close(release)
	wg.Wait()
}

func TestTenantDirectory_RequiresUser(t *testing.T) {
	dir, _ := newDirectory(t)
	_, err := dir.Tenants(context.Background(), "", nil)
	require.Error(t, err)
}

func names(ts []model.Tenant) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func TestTenantDirectory_FetchOutlivesCancelledCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockTenantSource(ctrl)
	started := make(chan struct{})
	release := make(chan struct{})
	src.EXPECT().ListTenants(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]model.Tenant, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleTenants, nil
	}).Times(1)

	dir, _ := newDirectory(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := dir.Tenants(ctx, "u-1", src)
		done <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(release)

	// The abandoned fetch still completes and fills the cache.
	require.Eventually(t, func() bool {
		got, err := dir.Tenants(context.Background(), "u-1", src)
		return err == nil && len(got) == 2
	}, time.Second, time.Millisecond)
}
