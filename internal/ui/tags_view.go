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

type tagsAPI interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, input api.TagInput) (models.Tag, error)
	UpdateTag(ctx context.Context, id int64, input api.TagInput) (models.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

var _ tagsAPI = (*api.Client)(nil)

// tagSchema is fixed: tags are simple enough that no service-side schema
// exists for them.
func tagSchema() models.Schema {
	return models.Schema{
		{Key: "name", Type: models.FieldTypeString, Label: "Name", Required: true, Editable: true},
		{Key: "color", Type: models.FieldTypeSelect, Label: "Color", Editable: true, Options: []models.Option{
			{Value: "red", Label: "red"},
			{Value: "green", Label: "green"},
			{Value: "blue", Label: "blue"},
			{Value: "yellow", Label: "yellow"},
			{Value: "magenta", Label: "magenta"},
			{Value: "cyan", Label: "cyan"},
		}},
	}
}

type tagUpdate struct {
	id    int64
	input api.TagInput
}

type tagsView struct {
	deps   *Deps
	client tagsAPI

	tags *query.Resource[[]models.Tag]

	create *query.Mutation[api.TagInput, models.Tag]
	update *query.Mutation[tagUpdate, models.Tag]
	remove *query.Mutation[int64, struct{}]

	table *Table[models.Tag]

	modal   *formModal
	confirm *confirmModal
}

func newTagsView(deps *Deps) *tagsView {
	v := &tagsView{deps: deps, client: deps.Client}
	v.table = NewTable[models.Tag](nil, nil)

	v.tags = query.NewResource(deps.Cache, "tags", deps.Client.ListTags,
		query.ResourceOptions{StaleAfter: deps.Cfg.TUI.StaleAfter})

	invalidate := func() {
		deps.Cache.Invalidate("tags")
		// Feed rows carry tag names.
		deps.Cache.Invalidate("feeds")
	}
	v.create = query.NewMutation("tag.create", func(ctx context.Context, in api.TagInput) (models.Tag, error) {
		return v.client.CreateTag(ctx, in)
	}).OnSuccess(func(models.Tag) { invalidate() })
	v.update = query.NewMutation("tag.update", func(ctx context.Context, in tagUpdate) (models.Tag, error) {
		return v.client.UpdateTag(ctx, in.id, in.input)
	}).OnSuccess(func(models.Tag) { invalidate() })
	v.remove = query.NewMutation("tag.delete", func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, v.client.DeleteTag(ctx, id)
	}).OnSuccess(func(struct{}) { invalidate() })

	return v
}

func (v *tagsView) Init() tea.Cmd {
	return refreshCmd(v.deps.Ctx, "tags", v.tags.EnsureFresh)
}

func (v *tagsView) HasModal() bool {
	return v.modal != nil || v.confirm != nil
}

func (v *tagsView) Hints() string {
	return "n new · e edit · d delete"
}

func (v *tagsView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tickMsg:
		return refreshCmd(v.deps.Ctx, "tags", v.tags.EnsureFresh)
	case refreshedMsg:
		if typed.key == "tags" {
			v.table.Sync(v.tags.Snapshot().Data)
		}
		return nil
	case mutationDoneMsg:
		if typed.err != nil {
			return noticeCmd(noticeError, api.UserMessage(typed.err, typed.op+" failed"))
		}
		v.modal = nil
		v.confirm = nil
		return tea.Batch(
			noticeCmd(noticeSuccess, typed.notice),
			refreshCmd(v.deps.Ctx, "tags", v.tags.EnsureFresh),
		)
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *tagsView) handleKey(msg tea.KeyMsg) tea.Cmd {
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

	items := v.tags.Snapshot().Data
	key := msg.String()
	if v.table.HandleKey(key, items) {
		return nil
	}

	switch key {
	case "R":
		return refreshCmd(v.deps.Ctx, "tags", v.tags.Refetch)
	case "n":
		return v.openForm(nil)
	case "enter", "e":
		if tag, ok := v.table.Cursor(items); ok {
			t := tag
			return v.openForm(&t)
		}
	case "d":
		if tag, ok := v.table.Cursor(items); ok {
			v.confirm = &confirmModal{
				title: "Delete tag",
				body:  fmt.Sprintf("Delete tag %q? It will be removed from all feeds.", tag.Name),
				confirm: func() tea.Cmd {
					return v.mutate("delete", func(ctx context.Context) error {
						_, err := v.remove.Do(ctx, tag.ID)
						return err
					}, fmt.Sprintf("tag %q deleted", tag.Name))
				},
				pending: v.remove.Pending,
			}
		}
	}
	return nil
}

func (v *tagsView) openForm(tag *models.Tag) tea.Cmd {
	var initial map[string]any
	title := "New tag"
	if tag != nil {
		title = "Edit tag: " + tag.Name
		initial = map[string]any{"name": tag.Name, "color": tag.Color}
	}

	engine, err := forms.New(tagSchema(), initial, nil)
	if err != nil {
		return noticeCmd(noticeError, "invalid form schema: "+err.Error())
	}

	var submit func(map[string]any) tea.Cmd
	if tag == nil {
		submit = func(values map[string]any) tea.Cmd {
			input := tagInputFromValues(values)
			return v.mutate("create", func(ctx context.Context) error {
				_, err := v.create.Do(ctx, input)
				return err
			}, "tag created")
		}
	} else {
		id := tag.ID
		submit = func(values map[string]any) tea.Cmd {
			input := tagInputFromValues(values)
			return v.mutate("update", func(ctx context.Context) error {
				_, err := v.update.Do(ctx, tagUpdate{id: id, input: input})
				return err
			}, "tag updated")
		}
	}

	modal := newFormModal(title, engine, submit)
	modal.pending = func() bool { return v.create.Pending() || v.update.Pending() }
	v.modal = modal
	return nil
}

func tagInputFromValues(values map[string]any) api.TagInput {
	var input api.TagInput
	if name, ok := values["name"].(string); ok {
		input.Name = &name
	}
	if color, ok := values["color"].(string); ok {
		input.Color = &color
	}
	return input
}

func (v *tagsView) mutate(op string, fn func(context.Context) error, successNotice string) tea.Cmd {
	ctx := v.deps.Ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutationDoneMsg{op: op, err: err}
		}
		return mutationDoneMsg{op: op, notice: successNotice}
	}
}

func tagColorStyle(st styles.Styles, color string) string {
	swatch := "●"
	switch color {
	case "red":
		return st.Error.Render(swatch)
	case "green":
		return st.Success.Render(swatch)
	case "yellow":
		return st.Warning.Render(swatch)
	case "":
		return st.Muted.Render("○")
	default:
		return st.Accent.Render(swatch)
	}
}

func (v *tagsView) columns(st styles.Styles) []Column[models.Tag] {
	return []Column[models.Tag]{
		{Label: "", Width: 2, Render: func(t models.Tag) string { return tagColorStyle(st, t.Color) }},
		{Label: "Name", Width: 28, Render: func(t models.Tag) string { return t.Name }},
		{Label: "Color", Width: 10, Render: func(t models.Tag) string {
			if t.Color == "" {
				return "none"
			}
			return t.Color
		}},
	}
}

func (v *tagsView) View(st styles.Styles, width, height int) string {
	if v.modal != nil {
		return v.modal.View(st, width)
	}
	if v.confirm != nil {
		return v.confirm.View(st, width)
	}

	snap := v.tags.Snapshot()
	var b strings.Builder
	title := "Tags"
	if snap.HasData {
		title = fmt.Sprintf("Tags (%d)", len(snap.Data))
	}
	b.WriteString(st.Accent.Bold(true).Render(title))
	b.WriteString("\n\n")

	switch Classify(snap) {
	case StateLoading:
		b.WriteString(renderSkeletonRows(st, width))
	case StateError:
		b.WriteString(renderErrorState(st, snap.Err))
	case StateEmpty:
		b.WriteString(renderEmptyState(st, "tags", "press n to create one"))
	default:
		v.table.Columns = v.columns(st)
		b.WriteString(v.table.Render(st, snap.Data, width))
	}
	return b.String()
}
