package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResourceFirstFetchStoresData(t *testing.T) {
	cache := NewCache()
	r := NewResource(cache, "items", func(ctx context.Context) ([]int, error) {
		return []int{1, 2, 3}, nil
	}, ResourceOptions{StaleAfter: time.Minute, Enabled: true})

	require.NoError(t, r.EnsureFresh(context.Background()))

	snap := r.Snapshot()
	require.True(t, snap.HasData)
	require.Equal(t, []int{1, 2, 3}, snap.Data)
	require.NoError(t, snap.Err)
	require.False(t, snap.Loading)
}

func TestResourceErrorBeforeFirstSuccess(t *testing.T) {
	boom := errors.New("boom")
	r := NewResource(NewCache(), "items", func(ctx context.Context) (int, error) {
		return 0, boom
	}, ResourceOptions{StaleAfter: time.Minute, Enabled: true})

	require.ErrorIs(t, r.EnsureFresh(context.Background()), boom)

	snap := r.Snapshot()
	require.False(t, snap.HasData)
	require.ErrorIs(t, snap.Err, boom)
}

func TestResourceKeepsDataOnLaterError(t *testing.T) {
	var fail atomic.Bool
	r := NewResource(NewCache(), "items", func(ctx context.Context) (int, error) {
		if fail.Load() {
			return 0, errors.New("network down")
		}
		return 42, nil
	}, ResourceOptions{StaleAfter: time.Minute, Enabled: true})

	require.NoError(t, r.EnsureFresh(context.Background()))
	fail.Store(true)
	r.Invalidate()
	require.Error(t, r.EnsureFresh(context.Background()))

	// Stale-while-revalidate: old data survives, Err stays nil.
	snap := r.Snapshot()
	require.True(t, snap.HasData)
	require.Equal(t, 42, snap.Data)
	require.NoError(t, snap.Err)
	require.Error(t, snap.LastErr)
}

func TestResourceStalenessWindow(t *testing.T) {
	var calls atomic.Int32
	r := NewResource(NewCache(), "items", func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}, ResourceOptions{StaleAfter: time.Hour, Enabled: true})

	ctx := context.Background()
	require.NoError(t, r.EnsureFresh(ctx))
	require.NoError(t, r.EnsureFresh(ctx))
	require.NoError(t, r.EnsureFresh(ctx))
	require.Equal(t, int32(1), calls.Load(), "fresh data must not refetch")

	r.Invalidate()
	require.NoError(t, r.EnsureFresh(ctx))
	require.Equal(t, int32(2), calls.Load(), "invalidation forces a refetch")
}

func TestResourceDisabledNeverFetches(t *testing.T) {
	var calls atomic.Int32
	r := NewResource(NewCache(), "items", func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}, ResourceOptions{StaleAfter: time.Minute})

	ctx := context.Background()
	require.NoError(t, r.EnsureFresh(ctx))
	require.ErrorIs(t, r.Refetch(ctx), ErrDisabled)
	require.Equal(t, int32(0), calls.Load())

	// Enabling later permits the first fetch.
	r.SetEnabled(true)
	require.NoError(t, r.EnsureFresh(ctx))
	require.Equal(t, int32(1), calls.Load())
}

func TestResourceRefetchCoalesces(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := NewResource(NewCache(), "items", func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}, ResourceOptions{StaleAfter: time.Minute, Enabled: true})

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Refetch(ctx)
		}()
	}

	// Wait until the single fetch is in flight, then let it finish.
	require.Eventually(t, r.Fetching, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load(), "concurrent refetches must share one request")
	require.Equal(t, 7, r.Snapshot().Data)
}

func TestCacheInvalidateByKeyAndPrefix(t *testing.T) {
	cache := NewCache()
	var feedCalls, schemaCalls atomic.Int32
	feeds := NewResource(cache, "feeds", func(ctx context.Context) (int, error) {
		return int(feedCalls.Add(1)), nil
	}, ResourceOptions{StaleAfter: time.Hour, Enabled: true})
	schema := NewResource(cache, "schemas/source/rss", func(ctx context.Context) (int, error) {
		return int(schemaCalls.Add(1)), nil
	}, ResourceOptions{StaleAfter: time.Hour, Enabled: true})

	ctx := context.Background()
	require.NoError(t, feeds.EnsureFresh(ctx))
	require.NoError(t, schema.EnsureFresh(ctx))

	cache.Invalidate("feeds")
	require.NoError(t, feeds.EnsureFresh(ctx))
	require.NoError(t, schema.EnsureFresh(ctx))
	require.Equal(t, int32(2), feedCalls.Load())
	require.Equal(t, int32(1), schemaCalls.Load())

	cache.InvalidatePrefix("schemas/")
	require.NoError(t, schema.EnsureFresh(ctx))
	require.Equal(t, int32(2), schemaCalls.Load())
}
