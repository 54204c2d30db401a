package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feedmill/feedadmin/internal/models"
)

// TagInput is the create/update payload for tags.
type TagInput struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// ConnectionInput is the create/update payload for connections.
type ConnectionInput struct {
	Name   *string        `json:"name,omitempty"`
	Type   *string        `json:"type,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// ExporterInput is the create/update payload for exporters.
type ExporterInput struct {
	Name    *string        `json:"name,omitempty"`
	Type    *string        `json:"type,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, input TagInput) (models.Tag, error) {
	var tag models.Tag
	if err := c.do(ctx, http.MethodPost, "/api/tags", input, &tag); err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

// UpdateTag patches a tag.
func (c *Client) UpdateTag(ctx context.Context, id int64, input TagInput) (models.Tag, error) {
	var tag models.Tag
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tags/%d", id), input, &tag); err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), nil, nil)
}

// ListConnections returns all connections.
func (c *Client) ListConnections(ctx context.Context) ([]models.Connection, error) {
	var connections []models.Connection
	if err := c.do(ctx, http.MethodGet, "/api/connections", nil, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

// CreateConnection creates a connection.
func (c *Client) CreateConnection(ctx context.Context, input ConnectionInput) (models.Connection, error) {
	var connection models.Connection
	if err := c.do(ctx, http.MethodPost, "/api/connections", input, &connection); err != nil {
		return models.Connection{}, err
	}
	return connection, nil
}

// UpdateConnection patches a connection.
func (c *Client) UpdateConnection(ctx context.Context, id int64, input ConnectionInput) (models.Connection, error) {
	var connection models.Connection
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/connections/%d", id), input, &connection); err != nil {
		return models.Connection{}, err
	}
	return connection, nil
}

// DeleteConnection removes a connection.
func (c *Client) DeleteConnection(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/connections/%d", id), nil, nil)
}

// ListExporters returns all exporters.
func (c *Client) ListExporters(ctx context.Context) ([]models.Exporter, error) {
	var exporters []models.Exporter
	if err := c.do(ctx, http.MethodGet, "/api/exporters", nil, &exporters); err != nil {
		return nil, err
	}
	return exporters, nil
}

// CreateExporter creates an exporter.
func (c *Client) CreateExporter(ctx context.Context, input ExporterInput) (models.Exporter, error) {
	var exporter models.Exporter
	if err := c.do(ctx, http.MethodPost, "/api/exporters", input, &exporter); err != nil {
		return models.Exporter{}, err
	}
	return exporter, nil
}

// UpdateExporter patches an exporter.
func (c *Client) UpdateExporter(ctx context.Context, id int64, input ExporterInput) (models.Exporter, error) {
	var exporter models.Exporter
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/exporters/%d", id), input, &exporter); err != nil {
		return models.Exporter{}, err
	}
	return exporter, nil
}

// DeleteExporter removes an exporter.
func (c *Client) DeleteExporter(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/exporters/%d", id), nil, nil)
}

// SetExporterEnabled toggles an exporter.
func (c *Client) SetExporterEnabled(ctx context.Context, id int64, enabled bool) (models.Exporter, error) {
	return c.UpdateExporter(ctx, id, ExporterInput{Enabled: &enabled})
}

// GetSchema fetches the field schema for an entity kind and type, e.g.
// ("source", "rss") or ("exporter", "webhook").
func (c *Client) GetSchema(ctx context.Context, kind, typ string) (models.Schema, error) {
	var schema models.Schema
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/schemas/%s/%s", kind, typ), nil, &schema); err != nil {
		return nil, err
	}
	return schema, nil
}
