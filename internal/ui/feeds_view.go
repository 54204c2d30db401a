package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/feedmill/feedadmin/internal/api"
	"github.com/feedmill/feedadmin/internal/forms"
	"github.com/feedmill/feedadmin/internal/models"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/selection"
	"github.com/feedmill/feedadmin/internal/ui/styles"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type feedsAPI interface {
	ListFeeds(ctx context.Context) ([]models.Feed, error)
	ListSources(ctx context.Context) ([]models.Source, error)
	GetSchema(ctx context.Context, kind, typ string) (models.Schema, error)
	CreateFeed(ctx context.Context, input api.FeedInput) (models.Feed, error)
	UpdateFeed(ctx context.Context, id int64, input api.FeedInput) (models.Feed, error)
	DeleteFeed(ctx context.Context, id int64) error
	BatchDeleteFeeds(ctx context.Context, ids []int64) error
	RunFeed(ctx context.Context, id int64) (api.RunHandle, error)
	SetFeedActive(ctx context.Context, id int64, active bool) (models.Feed, error)
}

var _ feedsAPI = (*api.Client)(nil)

type feedUpdate struct {
	id    int64
	input api.FeedInput
}

type feedActive struct {
	id     int64
	active bool
}

// runDoneMsg reports the outcome of a run trigger for one feed.
type runDoneMsg struct {
	feedID int64
	runID  string
	err    error
}

// feedFormIntent remembers that a form was requested while its schema and
// source options are still loading.
type feedFormIntent struct {
	feed *models.Feed
}

type feedsView struct {
	deps   *Deps
	client feedsAPI

	feeds   *query.Resource[[]models.Feed]
	sources *query.Resource[[]models.Source]
	schema  *query.Resource[models.Schema]

	create     *query.Mutation[api.FeedInput, models.Feed]
	update     *query.Mutation[feedUpdate, models.Feed]
	remove     *query.Mutation[int64, struct{}]
	bulkRemove *query.Mutation[[]int64, struct{}]
	toggle     *query.Mutation[feedActive, models.Feed]

	sel   *selection.Model
	table *Table[models.Feed]

	modal      *formModal
	confirm    *confirmModal
	formIntent *feedFormIntent

	// Feeds whose run trigger is in flight; the tracker takes over once
	// the server returns a run id.
	optimistic map[int64]bool

	frame int
}

func newFeedsView(deps *Deps) *feedsView {
	v := &feedsView{
		deps:       deps,
		client:     deps.Client,
		sel:        selection.New(),
		optimistic: make(map[int64]bool),
	}
	v.table = NewTable[models.Feed](nil, v.sel)

	stale := deps.Cfg.TUI.StaleAfter
	v.feeds = query.NewResource(deps.Cache, "feeds", deps.Client.ListFeeds,
		query.ResourceOptions{StaleAfter: stale})
	v.sources = query.NewResource(deps.Cache, "sources", deps.Client.ListSources,
		query.ResourceOptions{StaleAfter: stale, Enabled: false})
	v.schema = query.NewResource(deps.Cache, "schemas/feed/default",
		func(ctx context.Context) (models.Schema, error) {
			return deps.Client.GetSchema(ctx, "feed", "default")
		},
		query.ResourceOptions{StaleAfter: 0, Enabled: false})

	invalidate := func() { deps.Cache.Invalidate("feeds") }
	v.create = query.NewMutation("feed.create", func(ctx context.Context, in api.FeedInput) (models.Feed, error) {
		return v.client.CreateFeed(ctx, in)
	}).OnSuccess(func(models.Feed) { invalidate() })
	v.update = query.NewMutation("feed.update", func(ctx context.Context, in feedUpdate) (models.Feed, error) {
		return v.client.UpdateFeed(ctx, in.id, in.input)
	}).OnSuccess(func(models.Feed) { invalidate() })
	v.remove = query.NewMutation("feed.delete", func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, v.client.DeleteFeed(ctx, id)
	}).OnSuccess(func(struct{}) { invalidate() })
	v.bulkRemove = query.NewMutation("feed.batch-delete", func(ctx context.Context, ids []int64) (struct{}, error) {
		return struct{}{}, v.client.BatchDeleteFeeds(ctx, ids)
	}).OnSuccess(func(struct{}) { invalidate() })
	v.toggle = query.NewMutation("feed.set-active", func(ctx context.Context, in feedActive) (models.Feed, error) {
		return v.client.SetFeedActive(ctx, in.id, in.active)
	}).OnSuccess(func(models.Feed) { invalidate() })

	return v
}

func (v *feedsView) Init() tea.Cmd {
	return refreshCmd(v.deps.Ctx, "feeds", v.feeds.EnsureFresh)
}

func (v *feedsView) HasModal() bool {
	return v.modal != nil || v.confirm != nil
}

func (v *feedsView) Hints() string {
	if v.sel.Count() > 0 {
		return fmt.Sprintf("%d selected · d delete · esc clear", v.sel.Count())
	}
	return "n new · e edit · d delete · r run · t active · space select"
}

func (v *feedsView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tickMsg:
		v.frame++
		cmds := []tea.Cmd{refreshCmd(v.deps.Ctx, "feeds", v.feeds.EnsureFresh)}
		if v.formIntent != nil || v.modal != nil {
			cmds = append(cmds,
				refreshCmd(v.deps.Ctx, "sources", v.sources.EnsureFresh),
				refreshCmd(v.deps.Ctx, "schemas/feed/default", v.schema.EnsureFresh))
		}
		return tea.Batch(cmds...)
	case refreshedMsg:
		if typed.key == "feeds" {
			v.table.Sync(v.feeds.Snapshot().Data)
		}
		if v.formIntent != nil {
			return v.tryOpenForm()
		}
		return nil
	case runDoneMsg:
		return v.handleRunDone(typed)
	case mutationDoneMsg:
		return v.handleMutationDone(typed)
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *feedsView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.modal != nil {
		cmd, done := v.modal.Update(msg)
		if done {
			v.modal = nil
			v.schema.SetEnabled(false)
			v.sources.SetEnabled(false)
		}
		return cmd
	}
	if v.confirm != nil {
		cmd, done := v.confirm.Update(msg)
		if done {
			v.confirm = nil
		}
		return cmd
	}

	items := v.feeds.Snapshot().Data
	key := msg.String()
	if v.table.HandleKey(key, items) {
		return nil
	}

	switch key {
	case "R":
		return refreshCmd(v.deps.Ctx, "feeds", v.feeds.Refetch)
	case "esc":
		v.sel.Clear()
		return nil
	case "n":
		return v.requestForm(nil)
	case "enter", "e":
		if feed, ok := v.table.Cursor(items); ok {
			f := feed
			return v.requestForm(&f)
		}
	case "d":
		return v.requestDelete(items)
	case "r":
		if feed, ok := v.table.Cursor(items); ok {
			return v.triggerRun(feed)
		}
	case "t":
		if feed, ok := v.table.Cursor(items); ok {
			return v.mutate("toggle", func(ctx context.Context) error {
				_, err := v.toggle.Do(ctx, feedActive{id: feed.ID, active: !feed.Active})
				return err
			}, fmt.Sprintf("feed %q %s", feed.Name, activeWord(!feed.Active)))
		}
	}
	return nil
}

func activeWord(active bool) string {
	if active {
		return "activated"
	}
	return "paused"
}

// requestForm enables the schema and source resources and opens the form
// as soon as both are available.
func (v *feedsView) requestForm(feed *models.Feed) tea.Cmd {
	v.formIntent = &feedFormIntent{feed: feed}
	v.schema.SetEnabled(true)
	v.sources.SetEnabled(true)
	return tea.Batch(
		refreshCmd(v.deps.Ctx, "schemas/feed/default", v.schema.EnsureFresh),
		refreshCmd(v.deps.Ctx, "sources", v.sources.EnsureFresh),
		v.tryOpenForm(),
	)
}

func (v *feedsView) tryOpenForm() tea.Cmd {
	schemaSnap := v.schema.Snapshot()
	sourcesSnap := v.sources.Snapshot()
	if schemaSnap.Err != nil && !schemaSnap.HasData {
		v.formIntent = nil
		return noticeCmd(noticeError, api.UserMessage(schemaSnap.Err, "could not load form schema"))
	}
	if !schemaSnap.HasData || !sourcesSnap.HasData {
		return nil
	}

	intent := v.formIntent
	v.formIntent = nil

	options := make([]models.Option, 0, len(sourcesSnap.Data))
	for _, src := range sourcesSnap.Data {
		options = append(options, models.Option{
			Value: strconv.FormatInt(src.ID, 10),
			Label: src.Name,
		})
	}

	var initial map[string]any
	title := "New feed"
	if intent.feed != nil {
		title = "Edit feed: " + intent.feed.Name
		initial = map[string]any{
			"name":             intent.feed.Name,
			"source_id":        strconv.FormatInt(intent.feed.SourceID, 10),
			"interval_minutes": intent.feed.IntervalMinutes,
			"active":           intent.feed.Active,
			"tags":             strings.Join(intent.feed.Tags, ", "),
		}
	}

	engine, err := forms.New(schemaSnap.Data, initial, map[string][]models.Option{
		"sources": options,
	})
	if err != nil {
		return noticeCmd(noticeError, "invalid form schema: "+err.Error())
	}

	var submit func(map[string]any) tea.Cmd
	if intent.feed == nil {
		submit = func(values map[string]any) tea.Cmd {
			input := feedInputFromValues(values)
			return v.mutate("create", func(ctx context.Context) error {
				_, err := v.create.Do(ctx, input)
				return err
			}, "feed created")
		}
	} else {
		id := intent.feed.ID
		submit = func(values map[string]any) tea.Cmd {
			input := feedInputFromValues(values)
			return v.mutate("update", func(ctx context.Context) error {
				_, err := v.update.Do(ctx, feedUpdate{id: id, input: input})
				return err
			}, "feed updated")
		}
	}

	modal := newFormModal(title, engine, submit)
	modal.pending = func() bool { return v.create.Pending() || v.update.Pending() }
	v.modal = modal
	return nil
}

func feedInputFromValues(values map[string]any) api.FeedInput {
	var input api.FeedInput
	if name, ok := values["name"].(string); ok {
		input.Name = &name
	}
	if raw, ok := values["source_id"].(string); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			input.SourceID = &id
		}
	}
	if interval, ok := values["interval_minutes"].(int); ok {
		input.IntervalMinutes = &interval
	}
	if active, ok := values["active"].(bool); ok {
		input.Active = &active
	}
	if raw, ok := values["tags"].(string); ok {
		input.Tags = splitTags(raw)
	}
	return input
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (v *feedsView) requestDelete(items []models.Feed) tea.Cmd {
	if ids := v.sel.Selected(); len(ids) > 0 {
		v.confirm = &confirmModal{
			title: "Delete feeds",
			body:  fmt.Sprintf("Delete %d selected feeds? This cannot be undone.", len(ids)),
			confirm: func() tea.Cmd {
				return v.mutate("batch-delete", func(ctx context.Context) error {
					_, err := v.bulkRemove.Do(ctx, ids)
					return err
				}, fmt.Sprintf("%d feeds deleted", len(ids)))
			},
			pending: v.bulkRemove.Pending,
		}
		return nil
	}
	feed, ok := v.table.Cursor(items)
	if !ok {
		return nil
	}
	v.confirm = &confirmModal{
		title: "Delete feed",
		body:  fmt.Sprintf("Delete feed %q? This cannot be undone.", feed.Name),
		confirm: func() tea.Cmd {
			return v.mutate("delete", func(ctx context.Context) error {
				_, err := v.remove.Do(ctx, feed.ID)
				return err
			}, fmt.Sprintf("feed %q deleted", feed.Name))
		},
		pending: v.remove.Pending,
	}
	return nil
}

func (v *feedsView) triggerRun(feed models.Feed) tea.Cmd {
	if v.isRunning(feed.ID) {
		return noticeCmd(noticeError, fmt.Sprintf("feed %q is already running", feed.Name))
	}
	v.optimistic[feed.ID] = true
	ctx := v.deps.Ctx
	return func() tea.Msg {
		handle, err := v.client.RunFeed(ctx, feed.ID)
		return runDoneMsg{feedID: feed.ID, runID: handle.ID, err: err}
	}
}

func (v *feedsView) handleRunDone(msg runDoneMsg) tea.Cmd {
	delete(v.optimistic, msg.feedID)
	if msg.err != nil {
		return noticeCmd(noticeError, api.UserMessage(msg.err, "could not start run"))
	}
	if err := v.deps.Tracker.Track(msg.feedID, msg.runID); err != nil {
		return noticeCmd(noticeError, "run started but cannot be tracked: "+err.Error())
	}
	return noticeCmd(noticeSuccess, "run started")
}

// mutate runs a write off the event loop and reports back through
// mutationDoneMsg.
func (v *feedsView) mutate(op string, fn func(context.Context) error, successNotice string) tea.Cmd {
	ctx := v.deps.Ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutationDoneMsg{op: op, err: err}
		}
		return mutationDoneMsg{op: op, notice: successNotice}
	}
}

func (v *feedsView) handleMutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		// Form and confirm modals stay open so the input is not lost.
		return noticeCmd(noticeError, api.UserMessage(msg.err, msg.op+" failed"))
	}
	v.modal = nil
	v.confirm = nil
	v.schema.SetEnabled(false)
	v.sources.SetEnabled(false)
	if msg.op == "batch-delete" || msg.op == "delete" {
		v.sel.Clear()
	}
	return tea.Batch(
		noticeCmd(noticeSuccess, msg.notice),
		refreshCmd(v.deps.Ctx, "feeds", v.feeds.EnsureFresh),
	)
}

func (v *feedsView) isRunning(feedID int64) bool {
	return v.optimistic[feedID] || v.deps.Tracker.IsRunning(feedID)
}

func (v *feedsView) columns(st styles.Styles) []Column[models.Feed] {
	return []Column[models.Feed]{
		{Label: "Name", Width: 24, Render: func(f models.Feed) string { return f.Name }},
		{Label: "Source", Width: 18, Render: func(f models.Feed) string { return f.SourceName }},
		{Label: "Tags", Width: 20, Render: func(f models.Feed) string { return strings.Join(f.Tags, ", ") }},
		{Label: "Interval", Width: 8, Render: func(f models.Feed) string {
			return fmt.Sprintf("%dm", f.IntervalMinutes)
		}},
		{Label: "Last run", Width: 22, Render: func(f models.Feed) string {
			return v.renderStatus(st, f)
		}},
		{Label: "Active", Width: 6, Render: func(f models.Feed) string {
			if f.Active {
				return "yes"
			}
			return "no"
		}},
	}
}

func (v *feedsView) renderStatus(st styles.Styles, f models.Feed) string {
	if v.isRunning(f.ID) {
		return st.Running.Render(spinnerFrames[v.frame%len(spinnerFrames)] + " running")
	}
	switch f.LastRunStatus {
	case models.RunStatusCompleted:
		return st.Success.Render("✓ completed")
	case models.RunStatusCompletedWithErrors:
		return st.Warning.Render("⚠ completed with errors")
	case models.RunStatusFailed:
		return st.Error.Render("✗ failed")
	case models.RunStatusQueued:
		return st.Muted.Render("queued")
	case models.RunStatusRunning:
		return st.Running.Render(spinnerFrames[v.frame%len(spinnerFrames)] + " running")
	default:
		return st.Muted.Render("never ran")
	}
}

func (v *feedsView) View(st styles.Styles, width, height int) string {
	if v.modal != nil {
		return v.modal.View(st, width)
	}
	if v.confirm != nil {
		return v.confirm.View(st, width)
	}

	snap := v.feeds.Snapshot()
	var b strings.Builder
	title := "Feeds"
	if snap.HasData {
		title = fmt.Sprintf("Feeds (%d)", len(snap.Data))
	}
	if v.feeds.Fetching() && snap.HasData {
		title += "  " + st.Muted.Render("refreshing…")
	}
	b.WriteString(st.Accent.Bold(true).Render(title))
	b.WriteString("\n\n")

	switch Classify(snap) {
	case StateLoading:
		b.WriteString(renderSkeletonRows(st, width))
	case StateError:
		b.WriteString(renderErrorState(st, snap.Err))
	case StateEmpty:
		b.WriteString(renderEmptyState(st, "feeds", "press n to create one"))
	default:
		v.table.Columns = v.columns(st)
		b.WriteString(v.table.Render(st, snap.Data, width))
		if v.sel.Count() > 0 {
			b.WriteString("\n")
			b.WriteString(st.Badge.Render(fmt.Sprintf(" %d selected ", v.sel.Count())) +
				"  " + st.Muted.Render("d delete · esc clear"))
		}
	}
	return b.String()
}
