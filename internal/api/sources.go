package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feedmill/feedadmin/internal/models"
)

// SourceInput is the create/update payload for sources.
type SourceInput struct {
	Name   *string        `json:"name,omitempty"`
	Type   *string        `json:"type,omitempty"`
	URL    *string        `json:"url,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// SourcePreview is a parsed summary of an upstream feed URL.
type SourcePreview struct {
	Title     string `json:"title"`
	ItemCount int    `json:"item_count"`
	Kind      string `json:"kind,omitempty"`
}

// ListSources returns all sources.
func (c *Client) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	if err := c.do(ctx, http.MethodGet, "/api/sources", nil, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// CreateSource creates a source and returns the saved entity.
func (c *Client) CreateSource(ctx context.Context, input SourceInput) (models.Source, error) {
	var source models.Source
	if err := c.do(ctx, http.MethodPost, "/api/sources", input, &source); err != nil {
		return models.Source{}, err
	}
	return source, nil
}

// UpdateSource patches a source and returns the saved entity.
func (c *Client) UpdateSource(ctx context.Context, id int64, input SourceInput) (models.Source, error) {
	var source models.Source
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/sources/%d", id), input, &source); err != nil {
		return models.Source{}, err
	}
	return source, nil
}

// DeleteSource removes a source.
func (c *Client) DeleteSource(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/sources/%d", id), nil, nil)
}

// PreviewSource asks the service to fetch and parse a feed URL.
func (c *Client) PreviewSource(ctx context.Context, feedURL string) (SourcePreview, error) {
	payload := struct {
		URL string `json:"url"`
	}{URL: feedURL}
	var preview SourcePreview
	if err := c.do(ctx, http.MethodPost, "/api/sources/preview", payload, &preview); err != nil {
		return SourcePreview{}, err
	}
	return preview, nil
}
