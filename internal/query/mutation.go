package query

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feedmill/feedadmin/internal/logging"
)

// MutationFunc performs the remote write.
type MutationFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Mutation wraps one write operation with a pending/error lifecycle. There
// is no queuing: a second Do while one is pending starts a second concurrent
// request, so call sites disable their triggering controls while Pending.
// State never rolls back optimistic UI changes; the OnError callback is
// where callers revert them.
type Mutation[In, Out any] struct {
	name   string
	fn     MutationFunc[In, Out]
	logger zerolog.Logger

	mu        sync.Mutex
	pending   int
	err       error
	onSuccess func(Out)
	onError   func(error)
}

// NewMutation creates a mutation wrapper around fn.
func NewMutation[In, Out any](name string, fn MutationFunc[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		name:   name,
		fn:     fn,
		logger: logging.Component("mutation").With().Str("op", name).Logger(),
	}
}

// OnSuccess sets the success callback (cache invalidation, notifications,
// closing a modal, clearing a selection). Returns the mutation for chaining.
func (m *Mutation[In, Out]) OnSuccess(fn func(Out)) *Mutation[In, Out] {
	m.mu.Lock()
	m.onSuccess = fn
	m.mu.Unlock()
	return m
}

// OnError sets the failure callback. Returns the mutation for chaining.
func (m *Mutation[In, Out]) OnError(fn func(error)) *Mutation[In, Out] {
	m.mu.Lock()
	m.onError = fn
	m.mu.Unlock()
	return m
}

// Do runs the write and fires the matching callback.
func (m *Mutation[In, Out]) Do(ctx context.Context, input In) (Out, error) {
	m.mu.Lock()
	m.pending++
	m.err = nil
	onSuccess := m.onSuccess
	onError := m.onError
	m.mu.Unlock()

	out, err := m.fn(ctx, input)

	m.mu.Lock()
	m.pending--
	if err != nil {
		m.err = err
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Debug().Err(err).Msg("mutation failed")
		if onError != nil {
			onError(err)
		}
		return out, err
	}

	if onSuccess != nil {
		onSuccess(out)
	}
	return out, nil
}

// Pending reports whether any invocation is in flight.
func (m *Mutation[In, Out]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Err returns the most recent failure, if any.
func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Reset clears the error state. Modals call it on open so a stale error
// banner from a previous attempt does not reappear.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
}
