package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/feedmill/feedadmin/internal/api"
	"github.com/feedmill/feedadmin/internal/forms"
	"github.com/feedmill/feedadmin/internal/models"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/ui/styles"
)

// sourceTypes are the source kinds the service knows schemas for.
var sourceTypes = []string{"rss", "api", "scraper"}

type sourcesAPI interface {
	ListSources(ctx context.Context) ([]models.Source, error)
	GetSchema(ctx context.Context, kind, typ string) (models.Schema, error)
	CreateSource(ctx context.Context, input api.SourceInput) (models.Source, error)
	UpdateSource(ctx context.Context, id int64, input api.SourceInput) (models.Source, error)
	DeleteSource(ctx context.Context, id int64) error
	PreviewSource(ctx context.Context, feedURL string) (api.SourcePreview, error)
}

var _ sourcesAPI = (*api.Client)(nil)

type sourceUpdate struct {
	id    int64
	input api.SourceInput
}

// sourceSchemaMsg delivers the config schema for a source type so the
// form can open.
type sourceSchemaMsg struct {
	typ    string
	schema models.Schema
	source *models.Source
	err    error
}

// previewMsg delivers the parse result for a source URL.
type previewMsg struct {
	name    string
	preview api.SourcePreview
	err     error
}

// typePicker is the first step of source creation: choosing the type that
// decides which config schema applies.
type typePicker struct {
	cursor int
}

func (p *typePicker) View(st styles.Styles, width int) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("New source"))
	b.WriteString("\n\n")
	b.WriteString(st.Text.Render("Pick a source type:"))
	b.WriteString("\n")
	for i, typ := range sourceTypes {
		line := "  " + typ
		if i == p.cursor {
			line = st.Selected.Render("> " + typ)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("enter choose · esc cancel"))
	return boxModal(st, b.String(), width)
}

type sourcesView struct {
	deps   *Deps
	client sourcesAPI

	sources *query.Resource[[]models.Source]

	create *query.Mutation[api.SourceInput, models.Source]
	update *query.Mutation[sourceUpdate, models.Source]
	remove *query.Mutation[int64, struct{}]

	cards *CardList[models.Source]

	picker     *typePicker
	modal      *formModal
	confirm    *confirmModal
	loadingTyp string

	previewing bool
}

func newSourcesView(deps *Deps) *sourcesView {
	v := &sourcesView{deps: deps, client: deps.Client}

	v.sources = query.NewResource(deps.Cache, "sources", deps.Client.ListSources,
		query.ResourceOptions{StaleAfter: deps.Cfg.TUI.StaleAfter})

	invalidate := func() {
		deps.Cache.Invalidate("sources")
		// Feed rows denormalize the source name.
		deps.Cache.Invalidate("feeds")
	}
	v.create = query.NewMutation("source.create", func(ctx context.Context, in api.SourceInput) (models.Source, error) {
		return v.client.CreateSource(ctx, in)
	}).OnSuccess(func(models.Source) { invalidate() })
	v.update = query.NewMutation("source.update", func(ctx context.Context, in sourceUpdate) (models.Source, error) {
		return v.client.UpdateSource(ctx, in.id, in.input)
	}).OnSuccess(func(models.Source) { invalidate() })
	v.remove = query.NewMutation("source.delete", func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, v.client.DeleteSource(ctx, id)
	}).OnSuccess(func(struct{}) { invalidate() })

	v.cards = NewCardList[models.Source](deps.Cfg.TUI.PageSize, nil)
	return v
}

func (v *sourcesView) Init() tea.Cmd {
	return refreshCmd(v.deps.Ctx, "sources", v.sources.EnsureFresh)
}

func (v *sourcesView) HasModal() bool {
	return v.modal != nil || v.confirm != nil || v.picker != nil
}

func (v *sourcesView) Hints() string {
	return "n new · e edit · d delete · p preview · h/l page"
}

func (v *sourcesView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tickMsg:
		return refreshCmd(v.deps.Ctx, "sources", v.sources.EnsureFresh)
	case refreshedMsg:
		if typed.key == "sources" {
			v.cards.Sync(v.sources.Snapshot().Data)
		}
		return nil
	case sourceSchemaMsg:
		return v.openForm(typed)
	case previewMsg:
		v.previewing = false
		if typed.err != nil {
			return noticeCmd(noticeError, api.UserMessage(typed.err, "preview failed"))
		}
		return noticeCmd(noticeSuccess, fmt.Sprintf("%s: %q, %d items",
			typed.name, typed.preview.Title, typed.preview.ItemCount))
	case mutationDoneMsg:
		return v.handleMutationDone(typed)
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *sourcesView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.modal != nil {
		cmd, done := v.modal.Update(msg)
		if done {
			v.modal = nil
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
	if v.picker != nil {
		return v.handlePickerKey(msg)
	}

	items := v.sources.Snapshot().Data
	key := msg.String()
	if v.cards.HandleKey(key, items) {
		return nil
	}

	switch key {
	case "R":
		return refreshCmd(v.deps.Ctx, "sources", v.sources.Refetch)
	case "n":
		v.picker = &typePicker{}
	case "enter", "e":
		if src, ok := v.cards.Cursor(items); ok {
			s := src
			return v.loadSchema(src.Type, &s)
		}
	case "d":
		if src, ok := v.cards.Cursor(items); ok {
			v.confirm = &confirmModal{
				title: "Delete source",
				body:  fmt.Sprintf("Delete source %q? Feeds using it will stop fetching.", src.Name),
				confirm: func() tea.Cmd {
					return v.mutate("delete", func(ctx context.Context) error {
						_, err := v.remove.Do(ctx, src.ID)
						return err
					}, fmt.Sprintf("source %q deleted", src.Name))
				},
				pending: v.remove.Pending,
			}
		}
	case "p":
		if src, ok := v.cards.Cursor(items); ok && !v.previewing {
			v.previewing = true
			ctx := v.deps.Ctx
			return func() tea.Msg {
				preview, err := v.client.PreviewSource(ctx, src.URL)
				return previewMsg{name: src.Name, preview: preview, err: err}
			}
		}
	}
	return nil
}

func (v *sourcesView) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.picker.cursor > 0 {
			v.picker.cursor--
		}
	case "down", "j":
		if v.picker.cursor < len(sourceTypes)-1 {
			v.picker.cursor++
		}
	case "enter":
		typ := sourceTypes[v.picker.cursor]
		v.picker = nil
		return v.loadSchema(typ, nil)
	case "esc":
		v.picker = nil
	}
	return nil
}

// loadSchema fetches the config schema for a source type, then opens the
// form.
func (v *sourcesView) loadSchema(typ string, source *models.Source) tea.Cmd {
	v.loadingTyp = typ
	ctx := v.deps.Ctx
	return func() tea.Msg {
		schema, err := v.client.GetSchema(ctx, "source", typ)
		return sourceSchemaMsg{typ: typ, schema: schema, source: source, err: err}
	}
}

// baseSourceSchema holds the fields every source has regardless of type.
// Config fields from the service schema are appended after it.
func baseSourceSchema() models.Schema {
	return models.Schema{
		{Key: "name", Type: models.FieldTypeString, Label: "Name", Required: true, Editable: true},
		{Key: "url", Type: models.FieldTypeString, Label: "URL", Required: true, Editable: true},
	}
}

func (v *sourcesView) openForm(msg sourceSchemaMsg) tea.Cmd {
	v.loadingTyp = ""
	if msg.err != nil {
		return noticeCmd(noticeError, api.UserMessage(msg.err, "could not load config schema"))
	}

	schema := append(baseSourceSchema(), msg.schema...)
	initial := map[string]any{}
	title := "New source: " + msg.typ
	if msg.source != nil {
		title = "Edit source: " + msg.source.Name
		initial["name"] = msg.source.Name
		initial["url"] = msg.source.URL
		for key, val := range msg.source.Config {
			initial[key] = val
		}
	}

	engine, err := forms.New(schema, initial, nil)
	if err != nil {
		return noticeCmd(noticeError, "invalid config schema: "+err.Error())
	}

	typ := msg.typ
	var submit func(map[string]any) tea.Cmd
	if msg.source == nil {
		submit = func(values map[string]any) tea.Cmd {
			input := sourceInputFromValues(typ, values)
			return v.mutate("create", func(ctx context.Context) error {
				_, err := v.create.Do(ctx, input)
				return err
			}, "source created")
		}
	} else {
		id := msg.source.ID
		submit = func(values map[string]any) tea.Cmd {
			input := sourceInputFromValues(typ, values)
			return v.mutate("update", func(ctx context.Context) error {
				_, err := v.update.Do(ctx, sourceUpdate{id: id, input: input})
				return err
			}, "source updated")
		}
	}

	modal := newFormModal(title, engine, submit)
	modal.pending = func() bool { return v.create.Pending() || v.update.Pending() }
	v.modal = modal
	return nil
}

func sourceInputFromValues(typ string, values map[string]any) api.SourceInput {
	input := api.SourceInput{Type: &typ, Config: map[string]any{}}
	for key, val := range values {
		switch key {
		case "name":
			if name, ok := val.(string); ok {
				input.Name = &name
			}
		case "url":
			if u, ok := val.(string); ok {
				input.URL = &u
			}
		default:
			input.Config[key] = val
		}
	}
	return input
}

func (v *sourcesView) mutate(op string, fn func(context.Context) error, successNotice string) tea.Cmd {
	ctx := v.deps.Ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutationDoneMsg{op: op, err: err}
		}
		return mutationDoneMsg{op: op, notice: successNotice}
	}
}

func (v *sourcesView) handleMutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		return noticeCmd(noticeError, api.UserMessage(msg.err, msg.op+" failed"))
	}
	v.modal = nil
	v.confirm = nil
	return tea.Batch(
		noticeCmd(noticeSuccess, msg.notice),
		refreshCmd(v.deps.Ctx, "sources", v.sources.EnsureFresh),
	)
}

func (v *sourcesView) renderCard(st styles.Styles, src models.Source, focused bool) string {
	var b strings.Builder
	name := st.Text.Bold(true).Render(src.Name)
	if focused {
		name = st.Selected.Render("> " + src.Name)
	}
	b.WriteString(name + "  " + st.Badge.Render(" "+src.Type+" "))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(src.URL))
	if len(src.Config) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Muted.Render(fmt.Sprintf("%d config values", len(src.Config))))
	}
	return st.Border.Render(b.String())
}

func (v *sourcesView) View(st styles.Styles, width, height int) string {
	if v.modal != nil {
		return v.modal.View(st, width)
	}
	if v.confirm != nil {
		return v.confirm.View(st, width)
	}
	if v.picker != nil {
		return v.picker.View(st, width)
	}

	snap := v.sources.Snapshot()
	var b strings.Builder
	title := "Sources"
	if snap.HasData {
		title = fmt.Sprintf("Sources (%d)", len(snap.Data))
	}
	if v.loadingTyp != "" {
		title += "  " + st.Muted.Render("loading "+v.loadingTyp+" schema…")
	} else if v.previewing {
		title += "  " + st.Muted.Render("previewing…")
	}
	b.WriteString(st.Accent.Bold(true).Render(title))
	b.WriteString("\n\n")

	switch Classify(snap) {
	case StateLoading:
		b.WriteString(renderSkeletonCards(st, width))
	case StateError:
		b.WriteString(renderErrorState(st, snap.Err))
	case StateEmpty:
		b.WriteString(renderEmptyState(st, "sources", "press n to create one"))
	default:
		v.cards.RenderCard = func(src models.Source, focused bool) string {
			return v.renderCard(st, src, focused)
		}
		b.WriteString(v.cards.Render(st, snap.Data, width))
	}
	return b.String()
}
