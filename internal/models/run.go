package models

import (
	"time"
)

// RunStatus is the lifecycle state of a feed run.
type RunStatus string

const (
	RunStatusQueued              RunStatus = "queued"
	RunStatusRunning             RunStatus = "running"
	RunStatusCompleted           RunStatus = "completed"
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
	RunStatusFailed              RunStatus = "failed"
)

// Terminal reports whether the status is final. The poller stops on the
// first terminal status it observes.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusCompletedWithErrors, RunStatusFailed:
		return true
	default:
		return false
	}
}

// Run is one triggered execution of a feed.
type Run struct {
	// ID is the run identifier returned by the trigger endpoint.
	ID string `json:"id"`

	// FeedID is the feed this run belongs to.
	FeedID int64 `json:"feed_id"`

	// Status is the current lifecycle state.
	Status RunStatus `json:"status"`

	// ItemsFetched is how many items the run pulled in.
	ItemsFetched int `json:"items_fetched,omitempty"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty"`

	// StartedAt is when the run was triggered.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run reached a terminal status.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
