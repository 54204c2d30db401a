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

// exporterTypes are the export pipelines the service supports.
var exporterTypes = []string{"rss", "json_api", "email_digest"}

type exportersAPI interface {
	ListExporters(ctx context.Context) ([]models.Exporter, error)
	GetSchema(ctx context.Context, kind, typ string) (models.Schema, error)
	CreateExporter(ctx context.Context, input api.ExporterInput) (models.Exporter, error)
	UpdateExporter(ctx context.Context, id int64, input api.ExporterInput) (models.Exporter, error)
	DeleteExporter(ctx context.Context, id int64) error
	SetExporterEnabled(ctx context.Context, id int64, enabled bool) (models.Exporter, error)
}

var _ exportersAPI = (*api.Client)(nil)

type exporterUpdate struct {
	id    int64
	input api.ExporterInput
}

type exporterEnabled struct {
	id      int64
	enabled bool
}

type exporterSchemaMsg struct {
	typ      string
	schema   models.Schema
	exporter *models.Exporter
	err      error
}

type exportersView struct {
	deps   *Deps
	client exportersAPI

	exporters *query.Resource[[]models.Exporter]

	create *query.Mutation[api.ExporterInput, models.Exporter]
	update *query.Mutation[exporterUpdate, models.Exporter]
	remove *query.Mutation[int64, struct{}]
	toggle *query.Mutation[exporterEnabled, models.Exporter]

	table *Table[models.Exporter]

	pickerCursor int
	picking      bool
	modal        *formModal
	confirm      *confirmModal
	loadingTyp   string
}

func newExportersView(deps *Deps) *exportersView {
	v := &exportersView{deps: deps, client: deps.Client}
	v.table = NewTable[models.Exporter](nil, nil)

	v.exporters = query.NewResource(deps.Cache, "exporters", deps.Client.ListExporters,
		query.ResourceOptions{StaleAfter: deps.Cfg.TUI.StaleAfter})

	invalidate := func() { deps.Cache.Invalidate("exporters") }
	v.create = query.NewMutation("exporter.create", func(ctx context.Context, in api.ExporterInput) (models.Exporter, error) {
		return v.client.CreateExporter(ctx, in)
	}).OnSuccess(func(models.Exporter) { invalidate() })
	v.update = query.NewMutation("exporter.update", func(ctx context.Context, in exporterUpdate) (models.Exporter, error) {
		return v.client.UpdateExporter(ctx, in.id, in.input)
	}).OnSuccess(func(models.Exporter) { invalidate() })
	v.remove = query.NewMutation("exporter.delete", func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, v.client.DeleteExporter(ctx, id)
	}).OnSuccess(func(struct{}) { invalidate() })
	v.toggle = query.NewMutation("exporter.set-enabled", func(ctx context.Context, in exporterEnabled) (models.Exporter, error) {
		return v.client.SetExporterEnabled(ctx, in.id, in.enabled)
	}).OnSuccess(func(models.Exporter) { invalidate() })

	return v
}

func (v *exportersView) Init() tea.Cmd {
	return refreshCmd(v.deps.Ctx, "exporters", v.exporters.EnsureFresh)
}

func (v *exportersView) HasModal() bool {
	return v.modal != nil || v.confirm != nil || v.picking
}

func (v *exportersView) Hints() string {
	return "n new · e edit · d delete · t enable/disable"
}

func (v *exportersView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tickMsg:
		return refreshCmd(v.deps.Ctx, "exporters", v.exporters.EnsureFresh)
	case refreshedMsg:
		if typed.key == "exporters" {
			v.table.Sync(v.exporters.Snapshot().Data)
		}
		return nil
	case exporterSchemaMsg:
		return v.openForm(typed)
	case mutationDoneMsg:
		if typed.err != nil {
			return noticeCmd(noticeError, api.UserMessage(typed.err, typed.op+" failed"))
		}
		v.modal = nil
		v.confirm = nil
		return tea.Batch(
			noticeCmd(noticeSuccess, typed.notice),
			refreshCmd(v.deps.Ctx, "exporters", v.exporters.EnsureFresh),
		)
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *exportersView) handleKey(msg tea.KeyMsg) tea.Cmd {
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
	if v.picking {
		return v.handlePickerKey(msg)
	}

	items := v.exporters.Snapshot().Data
	key := msg.String()
	if v.table.HandleKey(key, items) {
		return nil
	}

	switch key {
	case "R":
		return refreshCmd(v.deps.Ctx, "exporters", v.exporters.Refetch)
	case "n":
		v.picking = true
		v.pickerCursor = 0
	case "enter", "e":
		if exp, ok := v.table.Cursor(items); ok {
			e := exp
			return v.loadSchema(exp.Type, &e)
		}
	case "t":
		if exp, ok := v.table.Cursor(items); ok {
			return v.mutate("toggle", func(ctx context.Context) error {
				_, err := v.toggle.Do(ctx, exporterEnabled{id: exp.ID, enabled: !exp.Enabled})
				return err
			}, fmt.Sprintf("exporter %q %s", exp.Name, enabledWord(!exp.Enabled)))
		}
	case "d":
		if exp, ok := v.table.Cursor(items); ok {
			v.confirm = &confirmModal{
				title: "Delete exporter",
				body:  fmt.Sprintf("Delete exporter %q? Its endpoint will stop serving.", exp.Name),
				confirm: func() tea.Cmd {
					return v.mutate("delete", func(ctx context.Context) error {
						_, err := v.remove.Do(ctx, exp.ID)
						return err
					}, fmt.Sprintf("exporter %q deleted", exp.Name))
				},
				pending: v.remove.Pending,
			}
		}
	}
	return nil
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func (v *exportersView) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.pickerCursor > 0 {
			v.pickerCursor--
		}
	case "down", "j":
		if v.pickerCursor < len(exporterTypes)-1 {
			v.pickerCursor++
		}
	case "enter":
		typ := exporterTypes[v.pickerCursor]
		v.picking = false
		return v.loadSchema(typ, nil)
	case "esc":
		v.picking = false
	}
	return nil
}

func (v *exportersView) loadSchema(typ string, exporter *models.Exporter) tea.Cmd {
	v.loadingTyp = typ
	ctx := v.deps.Ctx
	return func() tea.Msg {
		schema, err := v.client.GetSchema(ctx, "exporter", typ)
		return exporterSchemaMsg{typ: typ, schema: schema, exporter: exporter, err: err}
	}
}

func (v *exportersView) openForm(msg exporterSchemaMsg) tea.Cmd {
	v.loadingTyp = ""
	if msg.err != nil {
		return noticeCmd(noticeError, api.UserMessage(msg.err, "could not load config schema"))
	}

	schema := append(models.Schema{
		{Key: "name", Type: models.FieldTypeString, Label: "Name", Required: true, Editable: true},
		{Key: "enabled", Type: models.FieldTypeBoolean, Label: "Enabled", Editable: true, Default: true},
	}, msg.schema...)

	initial := map[string]any{}
	title := "New exporter: " + msg.typ
	if msg.exporter != nil {
		title = "Edit exporter: " + msg.exporter.Name
		initial["name"] = msg.exporter.Name
		initial["enabled"] = msg.exporter.Enabled
		for key, val := range msg.exporter.Config {
			initial[key] = val
		}
	}

	engine, err := forms.New(schema, initial, nil)
	if err != nil {
		return noticeCmd(noticeError, "invalid config schema: "+err.Error())
	}

	typ := msg.typ
	var submit func(map[string]any) tea.Cmd
	if msg.exporter == nil {
		submit = func(values map[string]any) tea.Cmd {
			input := exporterInputFromValues(typ, values)
			return v.mutate("create", func(ctx context.Context) error {
				_, err := v.create.Do(ctx, input)
				return err
			}, "exporter created")
		}
	} else {
		id := msg.exporter.ID
		submit = func(values map[string]any) tea.Cmd {
			input := exporterInputFromValues(typ, values)
			return v.mutate("update", func(ctx context.Context) error {
				_, err := v.update.Do(ctx, exporterUpdate{id: id, input: input})
				return err
			}, "exporter updated")
		}
	}

	modal := newFormModal(title, engine, submit)
	modal.pending = func() bool { return v.create.Pending() || v.update.Pending() }
	v.modal = modal
	return nil
}

func exporterInputFromValues(typ string, values map[string]any) api.ExporterInput {
	input := api.ExporterInput{Type: &typ, Config: map[string]any{}}
	for key, val := range values {
		switch key {
		case "name":
			if name, ok := val.(string); ok {
				input.Name = &name
			}
		case "enabled":
			if enabled, ok := val.(bool); ok {
				input.Enabled = &enabled
			}
		default:
			input.Config[key] = val
		}
	}
	return input
}

func (v *exportersView) mutate(op string, fn func(context.Context) error, successNotice string) tea.Cmd {
	ctx := v.deps.Ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutationDoneMsg{op: op, err: err}
		}
		return mutationDoneMsg{op: op, notice: successNotice}
	}
}

func (v *exportersView) columns(st styles.Styles) []Column[models.Exporter] {
	return []Column[models.Exporter]{
		{Label: "Name", Width: 26, Render: func(e models.Exporter) string { return e.Name }},
		{Label: "Type", Width: 14, Render: func(e models.Exporter) string { return e.Type }},
		{Label: "Status", Width: 10, Render: func(e models.Exporter) string {
			if e.Enabled {
				return st.Success.Render("enabled")
			}
			return st.Muted.Render("disabled")
		}},
	}
}

func (v *exportersView) renderPicker(st styles.Styles, width int) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("New exporter"))
	b.WriteString("\n\n")
	b.WriteString(st.Text.Render("Pick an exporter type:"))
	b.WriteString("\n")
	for i, typ := range exporterTypes {
		line := "  " + typ
		if i == v.pickerCursor {
			line = st.Selected.Render("> " + typ)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("enter choose · esc cancel"))
	return boxModal(st, b.String(), width)
}

func (v *exportersView) View(st styles.Styles, width, height int) string {
	if v.modal != nil {
		return v.modal.View(st, width)
	}
	if v.confirm != nil {
		return v.confirm.View(st, width)
	}
	if v.picking {
		return v.renderPicker(st, width)
	}

	snap := v.exporters.Snapshot()
	var b strings.Builder
	title := "Exporters"
	if snap.HasData {
		title = fmt.Sprintf("Exporters (%d)", len(snap.Data))
	}
	if v.loadingTyp != "" {
		title += "  " + st.Muted.Render("loading "+v.loadingTyp+" schema…")
	}
	b.WriteString(st.Accent.Bold(true).Render(title))
	b.WriteString("\n\n")

	switch Classify(snap) {
	case StateLoading:
		b.WriteString(renderSkeletonRows(st, width))
	case StateError:
		b.WriteString(renderErrorState(st, snap.Err))
	case StateEmpty:
		b.WriteString(renderEmptyState(st, "exporters", "press n to create one"))
	default:
		v.table.Columns = v.columns(st)
		b.WriteString(v.table.Render(st, snap.Data, width))
	}
	return b.String()
}
