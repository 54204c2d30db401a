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

// connectionTypes are the downstream systems feeds can be wired to.
var connectionTypes = []string{"postgres", "s3", "webhook"}

type connectionsAPI interface {
	ListConnections(ctx context.Context) ([]models.Connection, error)
	GetSchema(ctx context.Context, kind, typ string) (models.Schema, error)
	CreateConnection(ctx context.Context, input api.ConnectionInput) (models.Connection, error)
	UpdateConnection(ctx context.Context, id int64, input api.ConnectionInput) (models.Connection, error)
	DeleteConnection(ctx context.Context, id int64) error
}

var _ connectionsAPI = (*api.Client)(nil)

type connectionUpdate struct {
	id    int64
	input api.ConnectionInput
}

type connectionSchemaMsg struct {
	typ    string
	schema models.Schema
	conn   *models.Connection
	err    error
}

type connectionsView struct {
	deps   *Deps
	client connectionsAPI

	conns *query.Resource[[]models.Connection]

	create *query.Mutation[api.ConnectionInput, models.Connection]
	update *query.Mutation[connectionUpdate, models.Connection]
	remove *query.Mutation[int64, struct{}]

	table *Table[models.Connection]

	pickerCursor int
	picking      bool
	modal        *formModal
	confirm      *confirmModal
	loadingTyp   string
}

func newConnectionsView(deps *Deps) *connectionsView {
	v := &connectionsView{deps: deps, client: deps.Client}
	v.table = NewTable[models.Connection](nil, nil)

	v.conns = query.NewResource(deps.Cache, "connections", deps.Client.ListConnections,
		query.ResourceOptions{StaleAfter: deps.Cfg.TUI.StaleAfter})

	invalidate := func() { deps.Cache.Invalidate("connections") }
	v.create = query.NewMutation("connection.create", func(ctx context.Context, in api.ConnectionInput) (models.Connection, error) {
		return v.client.CreateConnection(ctx, in)
	}).OnSuccess(func(models.Connection) { invalidate() })
	v.update = query.NewMutation("connection.update", func(ctx context.Context, in connectionUpdate) (models.Connection, error) {
		return v.client.UpdateConnection(ctx, in.id, in.input)
	}).OnSuccess(func(models.Connection) { invalidate() })
	v.remove = query.NewMutation("connection.delete", func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, v.client.DeleteConnection(ctx, id)
	}).OnSuccess(func(struct{}) { invalidate() })

	return v
}

func (v *connectionsView) Init() tea.Cmd {
	return refreshCmd(v.deps.Ctx, "connections", v.conns.EnsureFresh)
}

func (v *connectionsView) HasModal() bool {
	return v.modal != nil || v.confirm != nil || v.picking
}

func (v *connectionsView) Hints() string {
	return "n new · e edit · d delete"
}

func (v *connectionsView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case tickMsg:
		return refreshCmd(v.deps.Ctx, "connections", v.conns.EnsureFresh)
	case refreshedMsg:
		if typed.key == "connections" {
			v.table.Sync(v.conns.Snapshot().Data)
		}
		return nil
	case connectionSchemaMsg:
		return v.openForm(typed)
	case mutationDoneMsg:
		if typed.err != nil {
			return noticeCmd(noticeError, api.UserMessage(typed.err, typed.op+" failed"))
		}
		v.modal = nil
		v.confirm = nil
		return tea.Batch(
			noticeCmd(noticeSuccess, typed.notice),
			refreshCmd(v.deps.Ctx, "connections", v.conns.EnsureFresh),
		)
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *connectionsView) handleKey(msg tea.KeyMsg) tea.Cmd {
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

	items := v.conns.Snapshot().Data
	key := msg.String()
	if v.table.HandleKey(key, items) {
		return nil
	}

	switch key {
	case "R":
		return refreshCmd(v.deps.Ctx, "connections", v.conns.Refetch)
	case "n":
		v.picking = true
		v.pickerCursor = 0
	case "enter", "e":
		if conn, ok := v.table.Cursor(items); ok {
			c := conn
			return v.loadSchema(conn.Type, &c)
		}
	case "d":
		if conn, ok := v.table.Cursor(items); ok {
			v.confirm = &confirmModal{
				title: "Delete connection",
				body:  fmt.Sprintf("Delete connection %q? Exporters using it will fail.", conn.Name),
				confirm: func() tea.Cmd {
					return v.mutate("delete", func(ctx context.Context) error {
						_, err := v.remove.Do(ctx, conn.ID)
						return err
					}, fmt.Sprintf("connection %q deleted", conn.Name))
				},
				pending: v.remove.Pending,
			}
		}
	}
	return nil
}

func (v *connectionsView) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.pickerCursor > 0 {
			v.pickerCursor--
		}
	case "down", "j":
		if v.pickerCursor < len(connectionTypes)-1 {
			v.pickerCursor++
		}
	case "enter":
		typ := connectionTypes[v.pickerCursor]
		v.picking = false
		return v.loadSchema(typ, nil)
	case "esc":
		v.picking = false
	}
	return nil
}

func (v *connectionsView) loadSchema(typ string, conn *models.Connection) tea.Cmd {
	v.loadingTyp = typ
	ctx := v.deps.Ctx
	return func() tea.Msg {
		schema, err := v.client.GetSchema(ctx, "connection", typ)
		return connectionSchemaMsg{typ: typ, schema: schema, conn: conn, err: err}
	}
}

func (v *connectionsView) openForm(msg connectionSchemaMsg) tea.Cmd {
	v.loadingTyp = ""
	if msg.err != nil {
		return noticeCmd(noticeError, api.UserMessage(msg.err, "could not load config schema"))
	}

	schema := append(models.Schema{
		{Key: "name", Type: models.FieldTypeString, Label: "Name", Required: true, Editable: true},
	}, msg.schema...)

	initial := map[string]any{}
	title := "New connection: " + msg.typ
	if msg.conn != nil {
		title = "Edit connection: " + msg.conn.Name
		initial["name"] = msg.conn.Name
		for key, val := range msg.conn.Config {
			initial[key] = val
		}
	}

	engine, err := forms.New(schema, initial, nil)
	if err != nil {
		return noticeCmd(noticeError, "invalid config schema: "+err.Error())
	}

	typ := msg.typ
	var submit func(map[string]any) tea.Cmd
	if msg.conn == nil {
		submit = func(values map[string]any) tea.Cmd {
			input := connectionInputFromValues(typ, values)
			return v.mutate("create", func(ctx context.Context) error {
				_, err := v.create.Do(ctx, input)
				return err
			}, "connection created")
		}
	} else {
		id := msg.conn.ID
		submit = func(values map[string]any) tea.Cmd {
			input := connectionInputFromValues(typ, values)
			return v.mutate("update", func(ctx context.Context) error {
				_, err := v.update.Do(ctx, connectionUpdate{id: id, input: input})
				return err
			}, "connection updated")
		}
	}

	modal := newFormModal(title, engine, submit)
	modal.pending = func() bool { return v.create.Pending() || v.update.Pending() }
	v.modal = modal
	return nil
}

func connectionInputFromValues(typ string, values map[string]any) api.ConnectionInput {
	input := api.ConnectionInput{Type: &typ, Config: map[string]any{}}
	for key, val := range values {
		if key == "name" {
			if name, ok := val.(string); ok {
				input.Name = &name
			}
			continue
		}
		input.Config[key] = val
	}
	return input
}

func (v *connectionsView) mutate(op string, fn func(context.Context) error, successNotice string) tea.Cmd {
	ctx := v.deps.Ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutationDoneMsg{op: op, err: err}
		}
		return mutationDoneMsg{op: op, notice: successNotice}
	}
}

func (v *connectionsView) columns() []Column[models.Connection] {
	return []Column[models.Connection]{
		{Label: "Name", Width: 26, Render: func(c models.Connection) string { return c.Name }},
		{Label: "Type", Width: 10, Render: func(c models.Connection) string { return c.Type }},
		{Label: "Config", Width: 14, Render: func(c models.Connection) string {
			return fmt.Sprintf("%d values", len(c.Config))
		}},
	}
}

func (v *connectionsView) renderPicker(st styles.Styles, width int) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("New connection"))
	b.WriteString("\n\n")
	b.WriteString(st.Text.Render("Pick a connection type:"))
	b.WriteString("\n")
	for i, typ := range connectionTypes {
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

func (v *connectionsView) View(st styles.Styles, width, height int) string {
	if v.modal != nil {
		return v.modal.View(st, width)
	}
	if v.confirm != nil {
		return v.confirm.View(st, width)
	}
	if v.picking {
		return v.renderPicker(st, width)
	}

	snap := v.conns.Snapshot()
	var b strings.Builder
	title := "Connections"
	if snap.HasData {
		title = fmt.Sprintf("Connections (%d)", len(snap.Data))
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
		b.WriteString(renderEmptyState(st, "connections", "press n to create one"))
	default:
		v.table.Columns = v.columns()
		b.WriteString(v.table.Render(st, snap.Data, width))
	}
	return b.String()
}
