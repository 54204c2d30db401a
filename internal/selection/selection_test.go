package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggleItem(t *testing.T) {
	m := New()
	m.SetCollection([]int64{1, 2, 3})

	m.ToggleItem(2)
	require.True(t, m.IsSelected(2))
	require.Equal(t, []int64{2}, m.Selected())

	m.ToggleItem(2)
	require.False(t, m.IsSelected(2))
	require.Empty(t, m.Selected())

	// Ids outside the collection are ignored.
	m.ToggleItem(99)
	require.Empty(t, m.Selected())
}

func TestToggleAllDoubleToggleIsIdentity(t *testing.T) {
	m := New()
	m.SetCollection([]int64{1, 2, 3, 4})

	// From empty: select all, then clear.
	m.ToggleAll()
	require.True(t, m.AllSelected())
	m.ToggleAll()
	require.Empty(t, m.Selected())

	// From all-selected: clear, then select all again.
	m.ToggleAll()
	m.ToggleAll()
	require.Empty(t, m.Selected())
	m.ToggleAll()
	require.True(t, m.AllSelected())
	m.ToggleAll()
	m.ToggleAll()
	require.True(t, m.AllSelected())

	// A partial state does not round-trip: the first ToggleAll promotes
	// to all, the second clears.
	m.ToggleAll()
	m.ToggleItem(2)
	m.ToggleAll()
	require.True(t, m.AllSelected())
	m.ToggleAll()
	require.Empty(t, m.Selected())
}

func TestToggleAllFromPartialSelectsExactlyVisible(t *testing.T) {
	m := New()
	m.SetCollection([]int64{1, 2, 3})
	m.ToggleItem(1)

	m.ToggleAll()
	require.Equal(t, []int64{1, 2, 3}, m.Selected())

	// Not a superset from a prior collection.
	m.SetCollection([]int64{4, 5})
	m.ToggleAll()
	require.Equal(t, []int64{4, 5}, m.Selected())
}

func TestPruningOnCollectionChange(t *testing.T) {
	m := New()
	m.SetCollection([]int64{1, 2, 3, 4})
	m.ToggleItem(2)
	m.ToggleItem(4)

	// Item 4 deleted server-side.
	m.SetCollection([]int64{1, 2, 3})
	require.Equal(t, []int64{2}, m.Selected())
	require.False(t, m.IsSelected(4))
}

func TestTriStateFlags(t *testing.T) {
	m := New()
	require.False(t, m.AllSelected())
	require.False(t, m.SomeSelected())

	m.SetCollection([]int64{1, 2})
	m.ToggleItem(1)
	require.False(t, m.AllSelected())
	require.True(t, m.SomeSelected())

	m.ToggleItem(2)
	require.True(t, m.AllSelected())
	require.False(t, m.SomeSelected())
}

func TestDuplicateIdsDeduplicated(t *testing.T) {
	m := New()
	m.SetCollection([]int64{1, 1, 2, 2, 2})
	m.ToggleAll()
	require.Equal(t, []int64{1, 2}, m.Selected())
	require.Equal(t, 2, m.Count())
}

func TestSelectedPreservesCollectionOrder(t *testing.T) {
	m := New()
	m.SetCollection([]int64{30, 10, 20})
	m.ToggleItem(20)
	m.ToggleItem(30)
	require.Equal(t, []int64{30, 20}, m.Selected())
}
