// Package query provides the client-side cache layer: read resources with
// staleness tracking and coalesced refetches, and write mutations with a
// pending/error lifecycle and cache invalidation on success.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedmill/feedadmin/internal/logging"
)

// Resource errors.
var (
	// ErrDisabled is returned when a fetch is requested on a disabled
	// resource.
	ErrDisabled = errors.New("resource is disabled")
)

// FetchFunc loads the remote value for a resource.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is the point-in-time view of a resource that screens render
// from. Err is non-nil only while the resource has never succeeded; after a
// first success, later fetch failures keep the old data and surface only
// through LastErr (stale-while-revalidate).
type Snapshot[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	LastErr   error
	UpdatedAt time.Time
}

// ResourceOptions configures a Resource.
type ResourceOptions struct {
	// StaleAfter is how long a successful fetch is served without
	// refetching. Zero means always stale (every EnsureFresh refetches).
	StaleAfter time.Duration

	// Enabled gates fetching. Disabled resources never fetch; enabling
	// later permits the first fetch.
	Enabled bool
}

// Resource wraps a remote fetch under a cache key. All methods are safe for
// concurrent use; fetches are coalesced so at most one request per resource
// is in flight, and a generation counter guarantees a late, older result
// never overwrites a newer one.
type Resource[T any] struct {
	key    string
	fetch  FetchFunc[T]
	logger zerolog.Logger

	mu         sync.Mutex
	data       T
	hasData    bool
	err        error
	lastErr    error
	updatedAt  time.Time
	stale      bool
	enabled    bool
	staleAfter time.Duration

	inflight   chan struct{}
	generation uint64
	applied    uint64
}

// NewResource creates a Resource and registers it with the cache under key.
func NewResource[T any](cache *Cache, key string, fetch FetchFunc[T], opts ResourceOptions) *Resource[T] {
	r := &Resource[T]{
		key:        key,
		fetch:      fetch,
		logger:     logging.Component("query").With().Str("key", key).Logger(),
		enabled:    opts.Enabled,
		staleAfter: opts.StaleAfter,
		stale:      true,
	}
	if cache != nil {
		cache.register(key, r)
	}
	return r
}

// Key returns the cache key.
func (r *Resource[T]) Key() string { return r.key }

// Snapshot returns the current view of the resource.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot[T]{
		Data:      r.data,
		HasData:   r.hasData,
		Loading:   r.inflight != nil && !r.hasData,
		Err:       r.err,
		LastErr:   r.lastErr,
		UpdatedAt: r.updatedAt,
	}
}

// Fetching reports whether a request is currently in flight.
func (r *Resource[T]) Fetching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inflight != nil
}

// SetEnabled toggles the fetch gate.
func (r *Resource[T]) SetEnabled(enabled bool) {
	r.mu.Lock()
	r.enabled = enabled
	r.mu.Unlock()
}

// Invalidate marks the resource stale. The next EnsureFresh refetches; the
// old data keeps rendering until then.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	r.stale = true
	r.mu.Unlock()
}

// EnsureFresh fetches when the resource is enabled, nothing is in flight,
// and the data is missing, invalidated, or older than the staleness window.
// Callers drive this from a periodic tick to get interval refetching.
func (r *Resource[T]) EnsureFresh(ctx context.Context) error {
	r.mu.Lock()
	if !r.enabled || r.inflight != nil {
		r.mu.Unlock()
		return nil
	}
	fresh := r.hasData && !r.stale &&
		r.staleAfter > 0 && time.Since(r.updatedAt) < r.staleAfter
	if fresh {
		r.mu.Unlock()
		return nil
	}
	return r.fetchLocked(ctx)
}

// Refetch forces a fetch. Concurrent callers coalesce onto the single
// in-flight request and observe its outcome.
func (r *Resource[T]) Refetch(ctx context.Context) error {
	r.mu.Lock()
	if !r.enabled {
		r.mu.Unlock()
		return ErrDisabled
	}
	if done := r.inflight; done != nil {
		r.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.hasData {
			return nil
		}
		return r.lastErr
	}
	return r.fetchLocked(ctx)
}

// fetchLocked starts a fetch. The caller must hold r.mu; it is released
// before the fetch function runs.
func (r *Resource[T]) fetchLocked(ctx context.Context) error {
	done := make(chan struct{})
	r.inflight = done
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	data, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	close(done)
	if r.inflight == done {
		r.inflight = nil
	}

	// Latest wins: a result from an older generation never overwrites a
	// newer one.
	if gen < r.applied {
		return err
	}
	r.applied = gen

	if err != nil {
		r.lastErr = err
		if !r.hasData {
			r.err = err
		}
		r.logger.Debug().Err(err).Msg("fetch failed")
		return err
	}

	r.data = data
	r.hasData = true
	r.err = nil
	r.lastErr = nil
	r.stale = false
	r.updatedAt = time.Now()
	return nil
}
