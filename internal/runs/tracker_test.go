package runs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/models"
)

// fakeFetcher serves scripted statuses per run id, advancing one step per
// poll.
type fakeFetcher struct {
	mu     sync.Mutex
	script map[string][]models.RunStatus
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{script: make(map[string][]models.RunStatus)}
}

func (f *fakeFetcher) set(runID string, statuses ...models.RunStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[runID] = statuses
}

func (f *fakeFetcher) GetRun(ctx context.Context, runID string) (models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	statuses := f.script[runID]
	status := models.RunStatusRunning
	if len(statuses) > 0 {
		status = statuses[0]
		if len(statuses) > 1 {
			f.script[runID] = statuses[1:]
		}
	}
	return models.Run{ID: runID, Status: status}, nil
}

type settleRecorder struct {
	mu      sync.Mutex
	settled map[int64]models.RunStatus
}

func newSettleRecorder() *settleRecorder {
	return &settleRecorder{settled: make(map[int64]models.RunStatus)}
}

func (r *settleRecorder) record(feedID int64, status models.RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled[feedID] = status
}

func (r *settleRecorder) get(feedID int64) (models.RunStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.settled[feedID]
	return status, ok
}

func TestTrackerSettlesOnTerminalStatus(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("run-99", models.RunStatusRunning, models.RunStatusRunning, models.RunStatusCompleted)
	rec := newSettleRecorder()

	tracker := NewTracker(fetcher, Options{
		Interval: 5 * time.Millisecond,
		MaxWait:  time.Second,
		OnSettle: rec.record,
	})
	defer tracker.Stop()

	require.NoError(t, tracker.Track(7, "run-99"))
	require.True(t, tracker.IsRunning(7), "feed must appear in running set immediately")

	require.Eventually(t, func() bool {
		_, ok := rec.get(7)
		return ok
	}, time.Second, time.Millisecond)

	status, _ := rec.get(7)
	require.Equal(t, models.RunStatusCompleted, status)
	require.False(t, tracker.IsRunning(7))
}

func TestTrackerFailsOpenOnTimeout(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("run-1", models.RunStatusRunning)
	rec := newSettleRecorder()

	tracker := NewTracker(fetcher, Options{
		Interval: 2 * time.Millisecond,
		MaxWait:  20 * time.Millisecond,
		OnSettle: rec.record,
	})
	defer tracker.Stop()

	require.NoError(t, tracker.Track(3, "run-1"))

	require.Eventually(t, func() bool {
		return !tracker.IsRunning(3)
	}, time.Second, time.Millisecond, "running indicator must drop after max wait")

	status, ok := rec.get(3)
	require.True(t, ok, "OnSettle fires even on timeout")
	require.Equal(t, models.RunStatus(""), status)
}

func TestTrackerIndependentTasks(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("run-a", models.RunStatusCompleted)
	fetcher.set("run-b", models.RunStatusRunning)
	rec := newSettleRecorder()

	tracker := NewTracker(fetcher, Options{
		Interval: 5 * time.Millisecond,
		MaxWait:  time.Minute,
		OnSettle: rec.record,
	})
	defer tracker.Stop()

	require.NoError(t, tracker.Track(1, "run-a"))
	require.NoError(t, tracker.Track(2, "run-b"))
	require.Equal(t, []int64{1, 2}, tracker.Running())

	// Feed 1 settles; feed 2 keeps polling undisturbed.
	require.Eventually(t, func() bool {
		return !tracker.IsRunning(1)
	}, time.Second, time.Millisecond)
	require.True(t, tracker.IsRunning(2))
}

func TestTrackerUntrackRevertsOptimisticMarker(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("run-x", models.RunStatusRunning)
	rec := newSettleRecorder()

	tracker := NewTracker(fetcher, Options{
		Interval: time.Hour, // never ticks during the test
		MaxWait:  time.Hour,
		OnSettle: rec.record,
	})
	defer tracker.Stop()

	require.NoError(t, tracker.Track(5, "run-x"))
	tracker.Untrack(5)
	require.False(t, tracker.IsRunning(5))

	_, ok := rec.get(5)
	require.False(t, ok, "untrack must not fire OnSettle")
}

func TestTrackerRejectsTrackAfterStop(t *testing.T) {
	tracker := NewTracker(newFakeFetcher(), Options{Interval: time.Millisecond, MaxWait: time.Second})
	tracker.Stop()
	require.ErrorIs(t, tracker.Track(1, "run"), ErrStopped)
}
