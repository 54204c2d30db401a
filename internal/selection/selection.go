// Package selection tracks which entity ids in a displayed collection are
// checked for bulk action.
package selection

// Model is a selection set scoped to the currently rendered collection.
// Pure state: set semantics, no side effects. Derived flags (AllSelected,
// SomeSelected) are always computed from the current collection and
// selection, never stored.
type Model struct {
	order    []int64
	visible  map[int64]struct{}
	selected map[int64]struct{}
}

// New creates an empty selection model.
func New() *Model {
	return &Model{
		visible:  make(map[int64]struct{}),
		selected: make(map[int64]struct{}),
	}
}

// SetCollection replaces the visible id set. Duplicate ids are tolerated
// via set semantics, and selected ids no longer present are pruned.
func (m *Model) SetCollection(ids []int64) {
	m.order = m.order[:0]
	clear(m.visible)
	for _, id := range ids {
		if _, dup := m.visible[id]; dup {
			continue
		}
		m.visible[id] = struct{}{}
		m.order = append(m.order, id)
	}
	for id := range m.selected {
		if _, ok := m.visible[id]; !ok {
			delete(m.selected, id)
		}
	}
}

// ToggleItem flips membership of id. Ids outside the current collection are
// ignored.
func (m *Model) ToggleItem(id int64) {
	if _, ok := m.visible[id]; !ok {
		return
	}
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return
	}
	m.selected[id] = struct{}{}
}

// ToggleAll clears the selection when every visible item is selected,
// otherwise selects exactly the visible ids.
func (m *Model) ToggleAll() {
	if m.AllSelected() {
		clear(m.selected)
		return
	}
	clear(m.selected)
	for id := range m.visible {
		m.selected[id] = struct{}{}
	}
}

// Clear empties the selection.
func (m *Model) Clear() {
	clear(m.selected)
}

// IsSelected reports membership of id.
func (m *Model) IsSelected(id int64) bool {
	_, ok := m.selected[id]
	return ok
}

// AllSelected reports whether every visible item is selected. False for an
// empty collection.
func (m *Model) AllSelected() bool {
	return len(m.order) > 0 && len(m.selected) == len(m.order)
}

// SomeSelected reports a partial selection; with AllSelected it drives a
// tri-state header checkbox (checked / indeterminate / unchecked).
func (m *Model) SomeSelected() bool {
	return len(m.selected) > 0 && len(m.selected) < len(m.order)
}

// Count returns the number of selected ids.
func (m *Model) Count() int {
	return len(m.selected)
}

// Selected returns the selected ids in collection order.
func (m *Model) Selected() []int64 {
	if len(m.selected) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(m.selected))
	for _, id := range m.order {
		if _, ok := m.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
