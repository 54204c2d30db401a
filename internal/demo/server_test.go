package demo

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/api"
	"github.com/feedmill/feedadmin/internal/models"
)

func newTestServer(t *testing.T, seed bool) (*api.Client, *Server) {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := NewServer(store, Options{RunDuration: 50 * time.Millisecond, Seed: seed})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	return client, srv
}

func strPtr(s string) *string { return &s }

func TestSeedProvidesWorkingData(t *testing.T) {
	client, _ := newTestServer(t, true)
	ctx := context.Background()

	feeds, err := client.ListFeeds(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, feeds)
	require.NotEmpty(t, feeds[0].SourceName, "list must resolve source names")

	sources, err := client.ListSources(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	tags, err := client.ListTags(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tags)
}

func TestFeedCRUDRoundTrip(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	src, err := client.CreateSource(ctx, api.SourceInput{
		Name: strPtr("blog"),
		Type: strPtr("rss"),
		URL:  strPtr("https://example.com/feed.xml"),
	})
	require.NoError(t, err)

	interval := 30
	active := true
	feed, err := client.CreateFeed(ctx, api.FeedInput{
		Name:            strPtr("blog hourly"),
		SourceID:        &src.ID,
		IntervalMinutes: &interval,
		Active:          &active,
		Tags:            []string{"blog"},
	})
	require.NoError(t, err)
	require.NotZero(t, feed.ID)
	require.Equal(t, "blog", feed.SourceName)
	require.Equal(t, []string{"blog"}, feed.Tags)

	// Patch only the name; everything else must survive.
	updated, err := client.UpdateFeed(ctx, feed.ID, api.FeedInput{Name: strPtr("blog daily")})
	require.NoError(t, err)
	require.Equal(t, "blog daily", updated.Name)
	require.Equal(t, 30, updated.IntervalMinutes)
	require.True(t, updated.Active)

	require.NoError(t, client.DeleteFeed(ctx, feed.ID))

	feeds, err := client.ListFeeds(ctx)
	require.NoError(t, err)
	require.Empty(t, feeds)
}

func TestFeedValidationErrors(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	_, err := client.CreateFeed(ctx, api.FeedInput{Name: strPtr("orphan")})
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 422, apiErr.Status)

	src, err := client.CreateSource(ctx, api.SourceInput{Name: strPtr("s"), Type: strPtr("rss")})
	require.NoError(t, err)

	tooFast := 1
	_, err = client.CreateFeed(ctx, api.FeedInput{
		Name: strPtr("fast"), SourceID: &src.ID, IntervalMinutes: &tooFast,
	})
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Message, "interval_minutes")
}

func TestBatchDeleteFeeds(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	src, err := client.CreateSource(ctx, api.SourceInput{Name: strPtr("s"), Type: strPtr("rss")})
	require.NoError(t, err)

	interval := 60
	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		feed, err := client.CreateFeed(ctx, api.FeedInput{
			Name: strPtr(name), SourceID: &src.ID, IntervalMinutes: &interval,
		})
		require.NoError(t, err)
		ids = append(ids, feed.ID)
	}

	require.NoError(t, client.BatchDeleteFeeds(ctx, ids[:2]))

	feeds, err := client.ListFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	require.Equal(t, "c", feeds[0].Name)
}

func TestRunLifecycle(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	src, err := client.CreateSource(ctx, api.SourceInput{Name: strPtr("s"), Type: strPtr("rss")})
	require.NoError(t, err)
	interval := 60
	active := true
	feed, err := client.CreateFeed(ctx, api.FeedInput{
		Name: strPtr("runnable"), SourceID: &src.ID, IntervalMinutes: &interval, Active: &active,
	})
	require.NoError(t, err)

	handle, err := client.RunFeed(ctx, feed.ID)
	require.NoError(t, err)
	require.NotEmpty(t, handle.ID)

	run, err := client.GetRun(ctx, handle.ID)
	require.NoError(t, err)
	require.False(t, run.Status.Terminal())

	require.Eventually(t, func() bool {
		run, err := client.GetRun(ctx, handle.ID)
		return err == nil && run.Status.Terminal()
	}, 2*time.Second, 20*time.Millisecond, "run should reach a terminal state")

	got, err := client.GetRun(ctx, handle.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FinishedAt)

	// The feed row carries the outcome for the list view.
	feeds, err := client.ListFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	require.True(t, feeds[0].LastRunStatus.Terminal())
}

func TestRunInactiveFeedRejected(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	src, err := client.CreateSource(ctx, api.SourceInput{Name: strPtr("s"), Type: strPtr("rss")})
	require.NoError(t, err)
	interval := 60
	inactive := false
	feed, err := client.CreateFeed(ctx, api.FeedInput{
		Name: strPtr("paused"), SourceID: &src.ID, IntervalMinutes: &interval, Active: &inactive,
	})
	require.NoError(t, err)

	_, err = client.RunFeed(ctx, feed.ID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 409, apiErr.Status)
}

func TestSchemasServed(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	schema, err := client.GetSchema(ctx, "feed", "default")
	require.NoError(t, err)
	require.NoError(t, schema.Validate())
	field, ok := schema.Field("source_id")
	require.True(t, ok)
	require.Equal(t, "sources", field.OptionsFrom)

	schema, err = client.GetSchema(ctx, "source", "api")
	require.NoError(t, err)
	secret, ok := schema.Field("api_key")
	require.True(t, ok)
	require.Equal(t, models.FieldTypeSecret, secret.Type)

	_, err = client.GetSchema(ctx, "source", "carrier-pigeon")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.NotFound())
}

func TestExporterToggle(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	exp, err := client.CreateExporter(ctx, api.ExporterInput{
		Name:   strPtr("public"),
		Type:   strPtr("rss"),
		Config: map[string]any{"path": "/tmp/out.xml"},
	})
	require.NoError(t, err)
	require.True(t, exp.Enabled)

	toggled, err := client.SetExporterEnabled(ctx, exp.ID, false)
	require.NoError(t, err)
	require.False(t, toggled.Enabled)
}

func TestNotFoundError(t *testing.T) {
	client, _ := newTestServer(t, false)
	ctx := context.Background()

	err := client.DeleteFeed(ctx, 9999)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.NotFound())
	require.Equal(t, "not found", apiErr.Message)
}
