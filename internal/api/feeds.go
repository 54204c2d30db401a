package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feedmill/feedadmin/internal/models"
)

// FeedInput is the create/update payload for feeds. Pointer fields are
// omitted when nil so PATCH only touches what the caller set.
type FeedInput struct {
	Name            *string  `json:"name,omitempty"`
	SourceID        *int64   `json:"source_id,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	IntervalMinutes *int     `json:"interval_minutes,omitempty"`
	Active          *bool    `json:"active,omitempty"`
}

// RunHandle is returned by the run trigger endpoint.
type RunHandle struct {
	ID string `json:"id"`
}

// ListFeeds returns all feeds.
func (c *Client) ListFeeds(ctx context.Context) ([]models.Feed, error) {
	var feeds []models.Feed
	if err := c.do(ctx, http.MethodGet, "/api/feeds", nil, &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// CreateFeed creates a feed and returns the saved entity.
func (c *Client) CreateFeed(ctx context.Context, input FeedInput) (models.Feed, error) {
	var feed models.Feed
	if err := c.do(ctx, http.MethodPost, "/api/feeds", input, &feed); err != nil {
		return models.Feed{}, err
	}
	return feed, nil
}

// UpdateFeed patches a feed and returns the saved entity.
func (c *Client) UpdateFeed(ctx context.Context, id int64, input FeedInput) (models.Feed, error) {
	var feed models.Feed
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/feeds/%d", id), input, &feed); err != nil {
		return models.Feed{}, err
	}
	return feed, nil
}

// DeleteFeed removes a feed.
func (c *Client) DeleteFeed(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/feeds/%d", id), nil, nil)
}

// BatchDeleteFeeds removes multiple feeds in one request.
func (c *Client) BatchDeleteFeeds(ctx context.Context, ids []int64) error {
	payload := struct {
		IDs []int64 `json:"ids"`
	}{IDs: ids}
	return c.do(ctx, http.MethodPost, "/api/feeds/batch-delete", payload, nil)
}

// RunFeed triggers an immediate run and returns its handle.
func (c *Client) RunFeed(ctx context.Context, id int64) (RunHandle, error) {
	var handle RunHandle
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/feeds/%d/run", id), nil, &handle); err != nil {
		return RunHandle{}, err
	}
	return handle, nil
}

// SetFeedActive toggles a feed's scheduling.
func (c *Client) SetFeedActive(ctx context.Context, id int64, active bool) (models.Feed, error) {
	return c.UpdateFeed(ctx, id, FeedInput{Active: &active})
}

// GetRun fetches the current status of a run.
func (c *Client) GetRun(ctx context.Context, runID string) (models.Run, error) {
	var run models.Run
	if err := c.do(ctx, http.MethodGet, "/api/runs/"+runID, nil, &run); err != nil {
		return models.Run{}, err
	}
	return run, nil
}
