// Package models defines the entities exchanged with the feed service API.
package models

import (
	"time"
)

// Entity is anything with a stable server-assigned numeric id. Identity is
// by id only; all other fields are owned by the backend.
type Entity interface {
	EntityID() int64
}

// Feed is a scheduled aggregation job over one source.
type Feed struct {
	// ID is the unique identifier for the feed.
	ID int64 `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// SourceID references the source this feed pulls from.
	SourceID int64 `json:"source_id"`

	// SourceName is denormalized for display.
	SourceName string `json:"source_name,omitempty"`

	// Tags are the tag names attached to this feed.
	Tags []string `json:"tags,omitempty"`

	// IntervalMinutes is how often the feed runs.
	IntervalMinutes int `json:"interval_minutes"`

	// Active indicates whether the feed is scheduled.
	Active bool `json:"active"`

	// LastRunStatus is the status of the most recent run, if any.
	LastRunStatus RunStatus `json:"last_run_status,omitempty"`

	// LastRunAt is when the feed last ran.
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// CreatedAt is when the feed was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the feed was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID implements Entity.
func (f Feed) EntityID() int64 { return f.ID }

// Source is an upstream content origin (RSS feed, API endpoint, scraper).
type Source struct {
	// ID is the unique identifier for the source.
	ID int64 `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Type selects the connector and its config schema.
	Type string `json:"type"`

	// URL is the upstream location, when the type has one.
	URL string `json:"url,omitempty"`

	// Config holds connector-specific settings keyed by schema field.
	Config map[string]any `json:"config,omitempty"`

	// CreatedAt is when the source was registered.
	CreatedAt time.Time `json:"created_at"`
}

// EntityID implements Entity.
func (s Source) EntityID() int64 { return s.ID }

// Tag labels feeds for filtering and export routing.
type Tag struct {
	// ID is the unique identifier for the tag.
	ID int64 `json:"id"`

	// Name is the tag text.
	Name string `json:"name"`

	// Color is an optional display color (hex or ANSI index).
	Color string `json:"color,omitempty"`
}

// EntityID implements Entity.
func (t Tag) EntityID() int64 { return t.ID }

// Connection is a stored credentialed link to an external system.
type Connection struct {
	// ID is the unique identifier for the connection.
	ID int64 `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Type selects the connection kind and its config schema.
	Type string `json:"type"`

	// Config holds type-specific settings keyed by schema field.
	Config map[string]any `json:"config,omitempty"`

	// CreatedAt is when the connection was created.
	CreatedAt time.Time `json:"created_at"`
}

// EntityID implements Entity.
func (c Connection) EntityID() int64 { return c.ID }

// Exporter pushes aggregated content to a destination.
type Exporter struct {
	// ID is the unique identifier for the exporter.
	ID int64 `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Type selects the destination kind and its config schema.
	Type string `json:"type"`

	// Enabled indicates whether the exporter receives content.
	Enabled bool `json:"enabled"`

	// Config holds destination-specific settings keyed by schema field.
	Config map[string]any `json:"config,omitempty"`

	// CreatedAt is when the exporter was created.
	CreatedAt time.Time `json:"created_at"`
}

// EntityID implements Entity.
func (e Exporter) EntityID() int64 { return e.ID }

// IDsOf returns the ids of a slice of entities, in order.
func IDsOf[T Entity](items []T) []int64 {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.EntityID()
	}
	return ids
}
