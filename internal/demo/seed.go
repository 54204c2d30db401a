package demo

import (
	"github.com/feedmill/feedadmin/internal/models"
)

// seed populates sample data so the console has something to show on
// first launch. It is a no-op when sources already exist.
func (s *Server) seed() error {
	existing, err := s.store.ListSources()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	sources := []models.Source{
		{Name: "Hacker News", Type: "rss", URL: "https://news.ycombinator.com/rss",
			Config: map[string]any{"max_items": 50, "verify_tls": true}},
		{Name: "Go Blog", Type: "rss", URL: "https://go.dev/blog/feed.atom",
			Config: map[string]any{"max_items": 20, "verify_tls": true}},
		{Name: "Status API", Type: "api", URL: "https://api.example.com/v1/items",
			Config: map[string]any{"api_key": "demo-key", "page_size": 50, "format": "json"}},
		{Name: "Release Notes", Type: "scraper", URL: "https://example.com/releases",
			Config: map[string]any{"selector": ".release-entry", "delay_seconds": 1}},
	}
	ids := make([]int64, 0, len(sources))
	for _, src := range sources {
		saved, err := s.store.CreateSource(src)
		if err != nil {
			return err
		}
		ids = append(ids, saved.ID)
	}

	feeds := []models.Feed{
		{Name: "Tech news hourly", SourceID: ids[0], Tags: []string{"news", "tech"}, IntervalMinutes: 60, Active: true},
		{Name: "Go releases", SourceID: ids[1], Tags: []string{"golang"}, IntervalMinutes: 240, Active: true},
		{Name: "Partner items", SourceID: ids[2], Tags: []string{"partner"}, IntervalMinutes: 30, Active: true},
		{Name: "Release watch", SourceID: ids[3], Tags: []string{"releases"}, IntervalMinutes: 720, Active: false},
	}
	for _, feed := range feeds {
		if _, err := s.store.CreateFeed(feed); err != nil {
			return err
		}
	}

	tags := []models.Tag{
		{Name: "news", Color: "blue"},
		{Name: "tech", Color: "cyan"},
		{Name: "golang", Color: "green"},
		{Name: "partner", Color: "yellow"},
		{Name: "releases", Color: "magenta"},
	}
	for _, tag := range tags {
		if _, err := s.store.CreateTag(tag); err != nil {
			return err
		}
	}

	conns := []models.Connection{
		{Name: "Warehouse", Type: "postgres", Config: map[string]any{"dsn": "postgres://demo", "pool_size": 8}},
		{Name: "Archive bucket", Type: "s3", Config: map[string]any{
			"bucket": "feed-archive", "region": "us-east-1",
			"access_key": "demo", "secret_key": "demo"}},
	}
	for _, conn := range conns {
		if _, err := s.store.CreateConnection(conn); err != nil {
			return err
		}
	}

	exporters := []models.Exporter{
		{Name: "Public RSS", Type: "rss", Enabled: true,
			Config: map[string]any{"path": "/var/feeds/public.xml", "max_items": 50}},
		{Name: "Partner API", Type: "json_api", Enabled: true,
			Config: map[string]any{"route": "/export/partner", "pretty": false}},
		{Name: "Weekly digest", Type: "email_digest", Enabled: false,
			Config: map[string]any{"recipients": "team@example.com", "schedule": "weekly"}},
	}
	for _, exp := range exporters {
		if _, err := s.store.CreateExporter(exp); err != nil {
			return err
		}
	}

	s.log.Info().Int("sources", len(sources)).Int("feeds", len(feeds)).Msg("seeded demo data")
	return nil
}
