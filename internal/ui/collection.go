package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/feedmill/feedadmin/internal/models"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/selection"
	"github.com/feedmill/feedadmin/internal/ui/styles"
)

// ViewState is the render state of a collection screen. Exactly one state
// is active at a time; precedence is loading, then error, then empty.
type ViewState int

const (
	StateLoading ViewState = iota
	StateError
	StateEmpty
	StatePopulated
)

// Classify maps a resource snapshot to a collection view state. A snapshot
// that is refetching after an earlier failure counts as loading, not error.
func Classify[T any](snap query.Snapshot[[]T]) ViewState {
	switch {
	case snap.Loading || (!snap.HasData && snap.Err == nil):
		return StateLoading
	case snap.Err != nil && !snap.HasData:
		return StateError
	case len(snap.Data) == 0:
		return StateEmpty
	default:
		return StatePopulated
	}
}

const (
	skeletonRows  = 5
	skeletonCards = 6
)

// Column describes one table column for an entity type.
type Column[T models.Entity] struct {
	Label  string
	Width  int
	Render func(T) string
}

// Table is a cursor-driven table over a slice of entities with optional
// row selection. The caller owns the selection model so bulk actions can
// read it after the table handled the keys.
type Table[T models.Entity] struct {
	Columns    []Column[T]
	Selectable bool

	cursor int
	sel    *selection.Model
}

// NewTable builds a table. sel may be nil when Selectable is false.
func NewTable[T models.Entity](columns []Column[T], sel *selection.Model) *Table[T] {
	return &Table[T]{Columns: columns, Selectable: sel != nil, sel: sel}
}

// Sync clamps the cursor and prunes the selection after the backing slice
// changed.
func (t *Table[T]) Sync(items []T) {
	if t.cursor >= len(items) {
		t.cursor = len(items) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.sel != nil {
		t.sel.SetCollection(models.IDsOf(items))
	}
}

// Cursor returns the item under the cursor, or false when the slice is
// empty.
func (t *Table[T]) Cursor(items []T) (T, bool) {
	var zero T
	if len(items) == 0 || t.cursor >= len(items) {
		return zero, false
	}
	return items[t.cursor], true
}

// HandleKey processes navigation and selection keys. It reports whether the
// key was consumed.
func (t *Table[T]) HandleKey(key string, items []T) bool {
	switch key {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
		return true
	case "down", "j":
		if t.cursor < len(items)-1 {
			t.cursor++
		}
		return true
	case "g", "home":
		t.cursor = 0
		return true
	case "G", "end":
		t.cursor = len(items) - 1
		if t.cursor < 0 {
			t.cursor = 0
		}
		return true
	case " ":
		if t.sel != nil {
			if item, ok := t.Cursor(items); ok {
				t.sel.ToggleItem(item.EntityID())
			}
			return true
		}
	case "a":
		if t.sel != nil {
			t.sel.ToggleAll()
			return true
		}
	}
	return false
}

func (t *Table[T]) headerGlyph() string {
	switch {
	case t.sel.AllSelected():
		return "[x]"
	case t.sel.SomeSelected():
		return "[~]"
	default:
		return "[ ]"
	}
}

// Render draws the table for the given items.
func (t *Table[T]) Render(st styles.Styles, items []T, width int) string {
	var b strings.Builder

	header := make([]string, 0, len(t.Columns)+1)
	if t.Selectable {
		header = append(header, t.headerGlyph())
	}
	for _, col := range t.Columns {
		header = append(header, pad(col.Label, col.Width))
	}
	b.WriteString(st.Header.Render(strings.Join(header, "  ")))
	b.WriteString("\n")

	for i, item := range items {
		cells := make([]string, 0, len(t.Columns)+1)
		if t.Selectable {
			glyph := "[ ]"
			if t.sel.IsSelected(item.EntityID()) {
				glyph = "[x]"
			}
			cells = append(cells, glyph)
		}
		for _, col := range t.Columns {
			cells = append(cells, pad(col.Render(item), col.Width))
		}
		row := strings.Join(cells, "  ")
		switch {
		case i == t.cursor:
			row = st.Selected.Render(row)
		default:
			row = st.Text.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	if w := lipgloss.Width(s); w > width {
		runes := []rune(s)
		if len(runes) > width {
			return string(runes[:width-1]) + "…"
		}
		return s
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

// CardList is a paginated card layout for entities whose detail does not
// fit a table row.
type CardList[T models.Entity] struct {
	RenderCard func(item T, focused bool) string
	PageSize   int

	cursor int
	page   int
}

func NewCardList[T models.Entity](pageSize int, render func(T, bool) string) *CardList[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &CardList[T]{RenderCard: render, PageSize: pageSize}
}

func (c *CardList[T]) pages(items []T) int {
	n := (len(items) + c.PageSize - 1) / c.PageSize
	if n < 1 {
		n = 1
	}
	return n
}

// Sync clamps cursor and page after the backing slice changed.
func (c *CardList[T]) Sync(items []T) {
	if c.cursor >= len(items) {
		c.cursor = len(items) - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
	if max := c.pages(items) - 1; c.page > max {
		c.page = max
	}
	c.followCursor()
}

func (c *CardList[T]) followCursor() {
	c.page = c.cursor / c.PageSize
}

// Cursor returns the focused item.
func (c *CardList[T]) Cursor(items []T) (T, bool) {
	var zero T
	if len(items) == 0 || c.cursor >= len(items) {
		return zero, false
	}
	return items[c.cursor], true
}

// HandleKey processes navigation keys and reports whether it consumed one.
func (c *CardList[T]) HandleKey(key string, items []T) bool {
	switch key {
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(items)-1 {
			c.cursor++
		}
	case "left", "h", "pgup":
		c.cursor -= c.PageSize
		if c.cursor < 0 {
			c.cursor = 0
		}
	case "right", "l", "pgdown":
		c.cursor += c.PageSize
		if c.cursor > len(items)-1 {
			c.cursor = len(items) - 1
		}
		if c.cursor < 0 {
			c.cursor = 0
		}
	default:
		return false
	}
	c.followCursor()
	return true
}

// Render draws the current page of cards plus a pagination line when more
// than one page exists.
func (c *CardList[T]) Render(st styles.Styles, items []T, width int) string {
	start := c.page * c.PageSize
	end := start + c.PageSize
	if end > len(items) {
		end = len(items)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(c.RenderCard(items[i], i == c.cursor))
		b.WriteString("\n")
	}
	if pages := c.pages(items); pages > 1 {
		b.WriteString(st.Muted.Render(fmt.Sprintf("‹ page %d/%d ›", c.page+1, pages)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderSkeletonRows draws placeholder table rows while the first load is
// in flight.
func renderSkeletonRows(st styles.Styles, width int) string {
	line := st.Muted.Render(strings.Repeat("░", max(min(width-4, 60), 8)))
	var b strings.Builder
	for i := 0; i < skeletonRows; i++ {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// renderSkeletonCards draws placeholder cards while the first load is in
// flight.
func renderSkeletonCards(st styles.Styles, width int) string {
	w := max(min(width-6, 48), 8)
	body := strings.Repeat("░", w)
	card := st.Border.Render(st.Muted.Render(body + "\n" + strings.Repeat("░", w/2)))
	var b strings.Builder
	for i := 0; i < skeletonCards; i++ {
		b.WriteString(card)
		b.WriteString("\n")
	}
	return b.String()
}

// renderErrorState draws the failure panel with the retry hint.
func renderErrorState(st styles.Styles, err error) string {
	var b strings.Builder
	b.WriteString("  " + st.Error.Render("✗ failed to load") + "\n")
	if err != nil {
		b.WriteString("  " + st.Muted.Render(err.Error()) + "\n")
	}
	b.WriteString("  " + st.Muted.Render("press R to retry") + "\n")
	return b.String()
}

// renderEmptyState draws the empty placeholder with a creation hint.
func renderEmptyState(st styles.Styles, noun, hint string) string {
	var b strings.Builder
	b.WriteString("  " + st.Muted.Render("no "+noun+" yet") + "\n")
	if hint != "" {
		b.WriteString("  " + st.Muted.Render(hint) + "\n")
	}
	return b.String()
}
