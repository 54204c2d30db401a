package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/models"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/selection"
	"github.com/feedmill/feedadmin/internal/ui/styles"
)

func TestClassifyPrecedence(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name string
		snap query.Snapshot[[]models.Feed]
		want ViewState
	}{
		{
			name: "initial state counts as loading",
			snap: query.Snapshot[[]models.Feed]{},
			want: StateLoading,
		},
		{
			name: "loading wins over error",
			snap: query.Snapshot[[]models.Feed]{Loading: true, Err: boom},
			want: StateLoading,
		},
		{
			name: "error without data",
			snap: query.Snapshot[[]models.Feed]{Err: boom},
			want: StateError,
		},
		{
			name: "empty result",
			snap: query.Snapshot[[]models.Feed]{HasData: true, Data: []models.Feed{}},
			want: StateEmpty,
		},
		{
			name: "populated",
			snap: query.Snapshot[[]models.Feed]{HasData: true, Data: []models.Feed{{ID: 1}}},
			want: StatePopulated,
		},
		{
			name: "stale data with background error stays populated",
			snap: query.Snapshot[[]models.Feed]{HasData: true, Data: []models.Feed{{ID: 1}}, LastErr: boom},
			want: StatePopulated,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.snap))
		})
	}
}

func testFeeds(ids ...int64) []models.Feed {
	feeds := make([]models.Feed, len(ids))
	for i, id := range ids {
		feeds[i] = models.Feed{ID: id, Name: "feed"}
	}
	return feeds
}

func TestTableSelectionKeys(t *testing.T) {
	sel := selection.New()
	table := NewTable[models.Feed](nil, sel)
	feeds := testFeeds(1, 2, 3)
	table.Sync(feeds)

	require.True(t, table.HandleKey(" ", feeds))
	require.True(t, sel.IsSelected(1))

	require.True(t, table.HandleKey("down", feeds))
	require.True(t, table.HandleKey(" ", feeds))
	require.Equal(t, []int64{1, 2}, sel.Selected())

	// Toggle all from a partial selection selects everything visible.
	require.True(t, table.HandleKey("a", feeds))
	require.Equal(t, []int64{1, 2, 3}, sel.Selected())
	require.True(t, sel.AllSelected())

	require.True(t, table.HandleKey("a", feeds))
	require.Zero(t, sel.Count())
}

func TestTableSyncClampsCursorAndPrunes(t *testing.T) {
	sel := selection.New()
	table := NewTable[models.Feed](nil, sel)
	feeds := testFeeds(1, 2, 3)
	table.Sync(feeds)

	table.HandleKey("G", feeds)
	table.HandleKey(" ", feeds)
	require.True(t, sel.IsSelected(3))

	// Item 3 disappears: cursor clamps, selection prunes.
	shorter := testFeeds(1, 2)
	table.Sync(shorter)
	cur, ok := table.Cursor(shorter)
	require.True(t, ok)
	require.Equal(t, int64(2), cur.ID)
	require.False(t, sel.IsSelected(3))
	require.Zero(t, sel.Count())
}

func TestTableCursorOnEmpty(t *testing.T) {
	table := NewTable[models.Feed](nil, nil)
	table.Sync(nil)
	_, ok := table.Cursor(nil)
	require.False(t, ok)
}

func TestCardListPagination(t *testing.T) {
	cards := NewCardList[models.Feed](2, func(f models.Feed, focused bool) string {
		return f.Name
	})
	feeds := testFeeds(1, 2, 3, 4, 5)
	cards.Sync(feeds)

	// Cursor movement across a page boundary flips the page.
	cards.HandleKey("down", feeds)
	cards.HandleKey("down", feeds)
	cur, ok := cards.Cursor(feeds)
	require.True(t, ok)
	require.Equal(t, int64(3), cur.ID)

	cards.HandleKey("right", feeds)
	cur, _ = cards.Cursor(feeds)
	require.Equal(t, int64(5), cur.ID)

	cards.HandleKey("left", feeds)
	cur, _ = cards.Cursor(feeds)
	require.Equal(t, int64(3), cur.ID)
}

func TestRenderStatesDistinct(t *testing.T) {
	st := styles.New(styles.Get("dark"))

	loading := renderSkeletonRows(st, 80)
	errState := renderErrorState(st, errors.New("connect refused"))
	empty := renderEmptyState(st, "feeds", "press n to create one")

	require.Contains(t, errState, "failed to load")
	require.Contains(t, errState, "connect refused")
	require.Contains(t, empty, "no feeds yet")
	require.NotEqual(t, loading, empty)
}
