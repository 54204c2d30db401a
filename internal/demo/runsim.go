package demo

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/feedmill/feedadmin/internal/logging"
	"github.com/feedmill/feedadmin/internal/models"
)

// Simulator fakes run execution: a triggered run moves from queued to
// running and then to a terminal state after the configured duration.
type Simulator struct {
	store    *Store
	duration time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	ctx    context.Context
}

// NewSimulator builds a simulator writing to the given store. duration is
// how long a simulated run takes end to end.
func NewSimulator(store *Store, duration time.Duration) *Simulator {
	if duration <= 0 {
		duration = 6 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Simulator{
		store:    store,
		duration: duration,
		log:      logging.Component("demo.simulator"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Stop cancels all in-flight simulated runs and waits for them to finish.
func (s *Simulator) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger creates a queued run for the feed and starts its lifecycle in
// the background. It returns the new run id.
func (s *Simulator) Trigger(feedID int64) (string, error) {
	run := models.Run{
		ID:        uuid.NewString(),
		FeedID:    feedID,
		Status:    models.RunStatusQueued,
		StartedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRun(run); err != nil {
		return "", err
	}
	if err := s.store.SetFeedLastRun(feedID, models.RunStatusQueued, run.StartedAt); err != nil {
		return "", err
	}

	s.wg.Add(1)
	go s.advance(run.ID, feedID)

	s.log.Info().Str("run_id", run.ID).Int64("feed_id", feedID).Msg("run triggered")
	return run.ID, nil
}

// advance walks the run through queued, running and a terminal state.
func (s *Simulator) advance(runID string, feedID int64) {
	defer s.wg.Done()

	queueDelay := s.duration / 4
	runDelay := s.duration - queueDelay

	if !s.sleep(queueDelay) {
		return
	}
	if err := s.store.SetRunStatus(runID, models.RunStatusRunning, 0, ""); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("could not mark run running")
		return
	}
	_ = s.store.SetFeedLastRun(feedID, models.RunStatusRunning, time.Now().UTC())

	if !s.sleep(runDelay) {
		return
	}

	status, items, runErr := s.outcome()
	if err := s.store.SetRunStatus(runID, status, items, runErr); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("could not finish run")
		return
	}
	_ = s.store.SetFeedLastRun(feedID, status, time.Now().UTC())
	s.log.Info().Str("run_id", runID).Str("status", string(status)).Int("items", items).Msg("run finished")
}

// outcome picks a weighted terminal state so all status renderings show
// up during a demo session.
func (s *Simulator) outcome() (models.RunStatus, int, string) {
	switch n := rand.Intn(10); {
	case n < 7:
		return models.RunStatusCompleted, 5 + rand.Intn(40), ""
	case n < 9:
		return models.RunStatusCompletedWithErrors, 1 + rand.Intn(10), "2 items failed to parse"
	default:
		return models.RunStatusFailed, 0, "upstream returned 503"
	}
}

func (s *Simulator) sleep(d time.Duration) bool {
	select {
	case <-s.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
