package ui

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/ui/styles"
)

func TestFeedsBulkBarVisibleWhenAllSelected(t *testing.T) {
	v := newFeedsView(newTestDeps(t))
	require.NoError(t, v.feeds.Refetch(context.Background()))

	snap := v.feeds.Snapshot()
	require.True(t, snap.HasData)
	require.NotEmpty(t, snap.Data)
	v.table.Sync(snap.Data)

	st := styles.New(styles.Get("dark"))

	// Nothing selected: no bulk bar, default hints.
	require.NotContains(t, v.View(st, 120, 40), "selected")
	require.Contains(t, v.Hints(), "n new")

	// Selecting every row must keep the bar and the bulk hint visible;
	// a full selection is not "none selected".
	v.sel.ToggleAll()
	require.True(t, v.sel.AllSelected())
	out := v.View(st, 120, 40)
	require.Contains(t, out, fmt.Sprintf("%d selected", len(snap.Data)))
	require.Contains(t, v.Hints(), fmt.Sprintf("%d selected", len(snap.Data)))

	// A partial selection shows the bar too.
	v.sel.Clear()
	v.sel.ToggleItem(snap.Data[0].ID)
	require.Contains(t, v.View(st, 120, 40), "1 selected")

	// Clearing hides it again.
	v.sel.Clear()
	require.NotContains(t, v.View(st, 120, 40), "selected")
}
