// Package runs tracks triggered feed runs to completion. It owns the
// process-wide "running" set that collection views render spinners from.
package runs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedmill/feedadmin/internal/logging"
	"github.com/feedmill/feedadmin/internal/models"
)

// Tracker errors.
var (
	ErrStopped = errors.New("run tracker is stopped")
)

// StatusFetcher polls a run's current status.
type StatusFetcher interface {
	GetRun(ctx context.Context, runID string) (models.Run, error)
}

// Options configures a Tracker.
type Options struct {
	// Interval is the polling cadence. Default: 2s.
	Interval time.Duration

	// MaxWait caps how long a run is polled. When it elapses without a
	// terminal status the running indicator is dropped anyway (fail open,
	// no stuck spinner) and the next list refresh shows true state.
	// Default: 5m.
	MaxWait time.Duration

	// OnSettle fires exactly once per tracked run, after the feed id has
	// left the running set. Status is empty when the poll timed out.
	OnSettle func(feedID int64, status models.RunStatus)
}

// task is one cancelable poll loop, keyed by feed id in the registry so
// concurrent runs of different feeds never interfere.
type task struct {
	runID  string
	cancel context.CancelFunc
}

// Tracker manages the running set and its poll tasks. Tracking is
// deliberately decoupled from any screen's lifetime: navigating away does
// not cancel a poll, so coming back still reflects correct run status.
type Tracker struct {
	fetcher  StatusFetcher
	interval time.Duration
	maxWait  time.Duration
	onSettle func(int64, models.RunStatus)
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	tasks   map[int64]*task
	wg      sync.WaitGroup
}

// NewTracker creates a Tracker. Callers must Stop it on shutdown.
func NewTracker(fetcher StatusFetcher, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		fetcher:  fetcher,
		interval: opts.Interval,
		maxWait:  opts.MaxWait,
		onSettle: opts.OnSettle,
		logger:   logging.Component("run-tracker"),
		ctx:      ctx,
		cancel:   cancel,
		tasks:    make(map[int64]*task),
	}
}

// Track adds feedID to the running set and starts polling runID. A
// re-trigger for a feed already tracked replaces its poll task.
func (t *Tracker) Track(feedID int64, runID string) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return ErrStopped
	}
	if old := t.tasks[feedID]; old != nil {
		old.cancel()
	}
	taskCtx, taskCancel := context.WithCancel(t.ctx)
	tk := &task{runID: runID, cancel: taskCancel}
	t.tasks[feedID] = tk
	t.wg.Add(1)
	t.mu.Unlock()

	go t.poll(taskCtx, feedID, tk)
	return nil
}

// Untrack removes feedID from the running set without firing OnSettle.
// Used to revert an optimistic marker when the trigger request itself
// failed.
func (t *Tracker) Untrack(feedID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk := t.tasks[feedID]; tk != nil {
		tk.cancel()
		delete(t.tasks, feedID)
	}
}

// IsRunning reports whether feedID is in the running set.
func (t *Tracker) IsRunning(feedID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tasks[feedID]
	return ok
}

// Running returns the running feed ids, sorted.
func (t *Tracker) Running() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.tasks) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(t.tasks))
	for id := range t.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stop cancels every poll task and waits for them to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.cancel()
	t.wg.Wait()
}

// poll is one task's loop: immediate first check, then ticks until a
// terminal status, the deadline, or cancellation.
func (t *Tracker) poll(ctx context.Context, feedID int64, tk *task) {
	defer t.wg.Done()

	logger := t.logger.With().Int64("feed_id", feedID).Str("run_id", tk.runID).Logger()
	deadline := time.Now().Add(t.maxWait)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		status, done := t.check(ctx, tk.runID, logger)
		if done {
			t.settle(feedID, tk, status, logger)
			return
		}
		if time.Now().After(deadline) {
			logger.Warn().Msg("run never reached a terminal status, dropping running indicator")
			t.settle(feedID, tk, "", logger)
			return
		}
		select {
		case <-ctx.Done():
			t.remove(feedID, tk)
			return
		case <-ticker.C:
		}
	}
}

// check performs one status fetch. Fetch errors are not terminal; the next
// tick retries until the deadline.
func (t *Tracker) check(ctx context.Context, runID string, logger zerolog.Logger) (models.RunStatus, bool) {
	run, err := t.fetcher.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", false
		}
		logger.Debug().Err(err).Msg("run status poll failed")
		return "", false
	}
	if run.Status.Terminal() {
		return run.Status, true
	}
	return run.Status, false
}

// settle removes the feed from the running set and fires OnSettle once.
func (t *Tracker) settle(feedID int64, tk *task, status models.RunStatus, logger zerolog.Logger) {
	if !t.remove(feedID, tk) {
		return
	}
	logger.Info().Str("status", string(status)).Msg("run settled")
	if t.onSettle != nil {
		t.onSettle(feedID, status)
	}
}

// remove deletes the registry entry if tk is still the current task for
// feedID. A replaced task must not clear its successor.
func (t *Tracker) remove(feedID int64, tk *task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tasks[feedID] != tk {
		return false
	}
	delete(t.tasks, feedID)
	return true
}
