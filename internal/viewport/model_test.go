package viewport

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/scroll"
	"github.com/mmcdole/vista/internal/search"
)

func TestNew_RejectsMalformedOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		cb     Callbacks
	}{
		{"negative width", func(o *Options) { o.Width = -1 }, Callbacks{}},
		{"negative overscan", func(o *Options) { o.OverscanCount = -2 }, Callbacks{}},
		{"unknown scroll mode", func(o *Options) { o.ScrollMode = "bouncy" }, Callbacks{}},
		{"unknown selection mode", func(o *Options) { o.SelectionMode = "some" }, Callbacks{}},
		{"unknown scrollbar position", func(o *Options) { o.ScrollbarPosition = "top" }, Callbacks{}},
		{"decay out of range", func(o *Options) { o.MomentumDecay = 1.5 }, Callbacks{}},
		{"retry multiplier below one", func(o *Options) { o.RetryMultiplier = 0.5 }, Callbacks{}},
		{"lazy without loader", func(o *Options) { o.LazyLoading = true }, Callbacks{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			tt.mutate(&o)
			_, err := New(o, tt.cb)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestNew_FillsZeroDefaults(t *testing.T) {
	m, err := New(Options{Width: 10, Height: 5, Scrollable: true}, Callbacks{})
	require.NoError(t, err)

	got := m.Options()
	assert.Equal(t, domain.ScrollInstant, got.ScrollMode)
	assert.Equal(t, domain.SelectionNone, got.SelectionMode)
	assert.Equal(t, 1, got.ItemHeight)
	assert.Equal(t, DefaultOptions().CacheSize, m.GetCacheStats().MaxSize)
	assert.Equal(t, DefaultOptions().ChunkSize, got.ChunkSize)
	assert.Zero(t, got.MaxRetries, "zero retries is a valid setting")
	assert.Zero(t, got.OverscanCount)
}

func TestLazy_ZeroRetriesFailsFast(t *testing.T) {
	o := Options{Width: 20, Height: 5, Scrollable: true, VirtualScrolling: true, LazyLoading: true, TotalCount: 20}
	src := &source{total: 20, failures: 100}
	m := newModel(t, o, Callbacks{OnLazyLoad: src}, nil)

	run(t, m, m.Cmd())
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, domain.LoadError, m.ChunkState(0))
	assert.Contains(t, m.View(), UnavailableText)
}

func TestModel_VisibleItems(t *testing.T) {
	o := testOptions()
	o.Height = 2
	o.OverscanCount = 0
	m := newModel(t, o, Callbacks{}, numbered(3))

	var ids []string
	for _, it := range m.GetVisibleItems() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"item-0", "item-1"}, ids)
	assert.Equal(t, 3, m.GetTotalLines())
}

func TestModel_ItemMutations(t *testing.T) {
	m := newModel(t, testOptions(), Callbacks{}, numbered(3))

	assert.ErrorIs(t, m.AddItem(domain.Item{ID: "item-1"}), domain.ErrDuplicateID)
	assert.ErrorIs(t, m.InsertItem(9, domain.Item{ID: "new"}), domain.ErrInvalidIndex)
	assert.ErrorIs(t, m.RemoveItem("nope"), domain.ErrItemNotFound)
	assert.ErrorIs(t, m.ScrollTo(7), domain.ErrInvalidIndex)

	require.NoError(t, m.InsertItem(0, domain.Item{ID: "first", Height: 3}))
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, 6, m.GetTotalLines())

	it, ok := m.GetItem("item-1")
	require.True(t, ok)
	it.Content = "changed"
	require.NoError(t, m.UpdateItem(it))
	got, _ := m.GetItem("item-1")
	assert.Equal(t, "changed", got.Content)

	require.NoError(t, m.RemoveItem("first"))
	assert.Equal(t, 3, m.GetTotalLines())
}

func TestModel_UpdateItemInvalidatesRendering(t *testing.T) {
	m := newModel(t, testOptions(), Callbacks{}, numbered(3))
	assert.Contains(t, m.View(), "item 1")

	require.NoError(t, m.UpdateItem(domain.Item{ID: "item-1", Content: "fresh text"}))
	view := m.View()
	assert.Contains(t, view, "fresh text")
	assert.NotContains(t, view, "item 1 ")
}

func TestModel_ScrollToTopTwiceFiresOnce(t *testing.T) {
	var positions []int
	m := newModel(t, testOptions(), Callbacks{OnScroll: func(p int) { positions = append(positions, p) }}, numbered(50))

	m.ScrollToLine(20)
	require.Equal(t, []int{20}, positions)

	m.ScrollToTop()
	m.ScrollToTop()
	assert.Equal(t, []int{20, 0}, positions)
	assert.Equal(t, 0, m.GetCurrentLine())
}

func TestModel_ScrollClampsAndReportsRealizedChanges(t *testing.T) {
	var positions []int
	m := newModel(t, testOptions(), Callbacks{OnScroll: func(p int) { positions = append(positions, p) }}, numbered(25))

	m.ScrollToBottom()
	assert.Equal(t, 15, m.GetCurrentLine())
	m.PageDown()
	m.ScrollDown()
	assert.Equal(t, 15, m.GetCurrentLine())
	m.ScrollToLine(-4)
	assert.Equal(t, 0, m.GetCurrentLine())
	m.ScrollUp()

	assert.Equal(t, []int{15, 0}, positions)
}

func TestModel_ScrollToItem(t *testing.T) {
	m := newModel(t, testOptions(), Callbacks{}, numbered(50))
	require.NoError(t, m.ScrollToItem("item-30"))
	assert.Equal(t, 30, m.GetCurrentLine())
	assert.ErrorIs(t, m.ScrollToItem("ghost"), domain.ErrItemNotFound)
}

func TestModel_NotScrollable(t *testing.T) {
	o := testOptions()
	o.Scrollable = false
	m := newModel(t, o, Callbacks{}, numbered(50))

	m.ScrollToLine(20)
	m.HandleMouseWheel(3)
	assert.Equal(t, 0, m.GetCurrentLine())
	assert.False(t, m.HandleKeyPress("PageDown"))
}

func TestModel_SmoothScroll(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	o := testOptions()
	o.ScrollMode = domain.ScrollSmooth
	o.Clock = c.now

	var positions []int
	m := newModel(t, o, Callbacks{OnScroll: func(p int) { positions = append(positions, p) }}, numbered(100))

	m.ScrollToLine(40)
	assert.Equal(t, scroll.Scrolling, m.ScrollState())
	assert.NotNil(t, m.Cmd(), "an animation tick is scheduled")
	assert.Empty(t, positions, "nothing realized before the first frame")

	c.advance(75 * time.Millisecond)
	assert.True(t, m.Tick())
	c.advance(100 * time.Millisecond)
	assert.False(t, m.Tick())

	assert.Equal(t, []int{35, 40}, positions)
	assert.Equal(t, scroll.Idle, m.ScrollState())
}

func TestModel_MouseWheel(t *testing.T) {
	t.Run("instant", func(t *testing.T) {
		m := newModel(t, testOptions(), Callbacks{}, numbered(100))
		m.HandleMouseWheel(2)
		assert.Equal(t, 6, m.GetCurrentLine())
	})

	t.Run("momentum", func(t *testing.T) {
		o := testOptions()
		o.ScrollMode = domain.ScrollSmooth
		m := newModel(t, o, Callbacks{}, numbered(100))

		m.HandleMouseWheel(1)
		require.Equal(t, scroll.Scrolling, m.ScrollState())
		for i := 0; m.Tick(); i++ {
			require.Less(t, i, 100)
		}
		assert.Equal(t, 3, m.GetCurrentLine())
	})
}

func TestModel_SingleSelection(t *testing.T) {
	var events [][]string
	o := testOptions()
	o.SelectionMode = domain.SelectionSingle
	items := []domain.Item{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	m := newModel(t, o, Callbacks{OnSelectionChange: func(ids []string) { events = append(events, ids) }}, items)

	require.NoError(t, m.SelectItem("x"))
	require.NoError(t, m.SelectItem("y"))
	require.NoError(t, m.SelectItem("y"))

	assert.Equal(t, []string{"y"}, m.GetSelectedItems())
	assert.Equal(t, [][]string{{"x"}, {"y"}}, events, "one event per change, none for no-ops")
	assert.ErrorIs(t, m.SelectItem("missing"), domain.ErrItemNotFound)
}

func TestModel_SelectAllFiresOnce(t *testing.T) {
	var events [][]string
	o := testOptions()
	o.SelectionMode = domain.SelectionMultiple
	items := numbered(5)
	items[2].Disabled = true
	m := newModel(t, o, Callbacks{OnSelectionChange: func(ids []string) { events = append(events, ids) }}, items)

	assert.True(t, m.SelectAll())
	require.Len(t, events, 1)
	assert.Equal(t, []string{"item-0", "item-1", "item-3", "item-4"}, events[0])

	require.NoError(t, m.RemoveItem("item-3"))
	require.Len(t, events, 2, "removing a selected item reports the new set")
	assert.Equal(t, []string{"item-0", "item-1", "item-4"}, events[1])

	assert.True(t, m.ClearSelection())
	assert.False(t, m.ClearSelection())
	assert.Len(t, events, 3)
}

func TestModel_SetSelectionMode(t *testing.T) {
	o := testOptions()
	o.SelectionMode = domain.SelectionMultiple
	m := newModel(t, o, Callbacks{}, numbered(5))
	m.SelectAll()

	require.NoError(t, m.SetSelectionMode(domain.SelectionSingle))
	assert.Equal(t, []string{"item-0"}, m.GetSelectedItems())
	assert.False(t, m.HandleKeyPress("a"), "select-all is multiple-mode only")
	assert.ErrorIs(t, m.SetSelectionMode("many"), domain.ErrInvalidConfig)
}

func TestModel_SearchNavigation(t *testing.T) {
	items := numbered(10)
	items[2].Content = "Error: disk full"
	items[7].Content = "unexpected error"

	var activated []string
	m := newModel(t, testOptions(), Callbacks{
		OnItemActivate: func(id string, _ domain.Item) { activated = append(activated, id) },
	}, items)
	m.SetSize(40, 3)

	assert.Equal(t, []int{2, 7}, m.Search("error"))
	assert.Equal(t, -1, m.SearchCursor())

	var seq []int
	for i := 0; i < 3; i++ {
		idx, ok := m.NextSearchResult()
		require.True(t, ok)
		seq = append(seq, idx)
	}
	assert.Equal(t, []int{2, 7, 2}, seq)
	assert.Equal(t, 2, m.GetCurrentLine())

	focused, ok := m.Focused()
	require.True(t, ok)
	assert.Equal(t, "item-2", focused.ID)

	idx, _ := m.PreviousSearchResult()
	assert.Equal(t, 7, idx)
	assert.True(t, m.HandleKeyPress("Enter"))
	assert.Equal(t, []string{"item-7"}, activated)

	m.ScrollUp()
	_, ok = m.Focused()
	assert.False(t, ok, "scrolling clears focus")
	m.HandleKeyPress("enter")
	assert.Equal(t, []string{"item-7", "item-6"}, activated, "falls back to the item at the current line")

	assert.Empty(t, m.Search(""))
	assert.Empty(t, m.SearchMatches())
}

func TestModel_SearchFollowsMutations(t *testing.T) {
	items := numbered(5)
	items[3].Content = "needle"
	m := newModel(t, testOptions(), Callbacks{}, items)

	assert.Equal(t, []int{3}, m.Search("needle"))
	require.NoError(t, m.InsertItem(0, domain.Item{ID: "top", Content: "needle too"}))
	assert.Equal(t, []int{0, 4}, m.SearchMatches())
}

func TestModel_SetMatcher(t *testing.T) {
	m := newModel(t, testOptions(), Callbacks{}, numbered(10))

	assert.Empty(t, m.Search("im3"))
	m.SetMatcher(search.FuzzyMatcher{})
	assert.Equal(t, []int{3}, m.SearchMatches())

	require.NoError(t, m.InsertItem(0, domain.Item{ID: "top", Content: "i m 3"}))
	assert.Equal(t, []int{0, 4}, m.SearchMatches())

	m.SetMatcher(nil)
	assert.Empty(t, m.SearchMatches())
}

func TestModel_CustomSearch(t *testing.T) {
	var got string
	m := newModel(t, testOptions(), Callbacks{
		OnSearch: func(q string, items []domain.Item) []int {
			got = q
			return []int{4, 1, 4, 99, -1}
		},
	}, numbered(5))

	assert.Equal(t, []int{1, 4}, m.Search("anything"))
	assert.Equal(t, "anything", got)
}

func TestModel_CallbacksAreNotReentrant(t *testing.T) {
	var m *Model
	var lenInside int
	var selEvents [][]string

	o := testOptions()
	o.SelectionMode = domain.SelectionMultiple
	m = newModel(t, o, Callbacks{
		OnItemActivate: func(id string, _ domain.Item) {
			require.NoError(t, m.AddItem(domain.Item{ID: "added-" + id}))
			lenInside = m.Len()
		},
		OnSelectionChange: func(ids []string) {
			selEvents = append(selEvents, ids)
			if len(ids) == 1 {
				_ = m.SelectItem("item-2")
			}
		},
	}, numbered(3))

	assert.True(t, m.HandleKeyPress("Enter"))
	assert.Equal(t, 3, lenInside, "mutation is deferred while the callback runs")
	assert.Equal(t, 4, m.Len())
	_, ok := m.GetItem("added-item-0")
	assert.True(t, ok)

	require.NoError(t, m.SelectItem("item-0"))
	assert.Equal(t, [][]string{{"item-0"}, {"item-0", "item-2"}}, selEvents)
}

func TestModel_CacheStats(t *testing.T) {
	o := testOptions()
	o.Height = 5
	m := newModel(t, o, Callbacks{}, numbered(20))

	// Five visible rows plus three overscan rows.
	m.View()
	first := m.GetCacheStats()
	assert.Equal(t, uint64(8), first.Misses)
	assert.Equal(t, 8, first.Size)

	m.View()
	second := m.GetCacheStats()
	assert.Equal(t, uint64(8), second.Hits)
	assert.Equal(t, uint64(8), second.Misses)

	m.SetSize(30, 5)
	assert.Zero(t, m.GetCacheStats().Size, "width change drops renderings")
}

func TestModel_CacheNeverEvictsVisibleRows(t *testing.T) {
	o := testOptions()
	o.Height = 6
	o.CacheSize = 2
	o.OverscanCount = 0
	m := newModel(t, o, Callbacks{}, numbered(30))

	m.View()
	stats := m.GetCacheStats()
	assert.Equal(t, 6, stats.Size, "soft overflow while every entry is pinned")
	assert.Zero(t, stats.Evictions)

	m.ScrollToLine(20)
	m.View()
	stats = m.GetCacheStats()
	assert.Equal(t, 6, stats.Size)
	assert.Equal(t, uint64(6), stats.Evictions)
}

func TestModel_View(t *testing.T) {
	o := testOptions()
	o.Width = 20
	o.Height = 3
	m := newModel(t, o, Callbacks{}, numbered(10))

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, 20, lipgloss.Width(l))
	}
	assert.True(t, strings.HasPrefix(lines[0], "item 0"))
	assert.True(t, strings.HasSuffix(lines[0], scrollThumbChar))
	assert.True(t, strings.HasSuffix(lines[2], scrollTrackChar))

	o.ScrollbarPosition = domain.ScrollbarLeft
	left := newModel(t, o, Callbacks{}, numbered(10))
	assert.True(t, strings.HasPrefix(left.View(), scrollThumbChar))

	o.ScrollbarPosition = domain.ScrollbarHidden
	hidden := newModel(t, o, Callbacks{}, numbered(10))
	assert.NotContains(t, hidden.View(), scrollThumbChar)
}

func TestModel_ViewMultiLineItems(t *testing.T) {
	o := testOptions()
	o.Height = 4
	o.ShowScrollbar = false
	items := []domain.Item{
		{ID: "a", Content: "a1\na2\na3", Height: 3},
		{ID: "b", Content: "b1"},
		{ID: "c", Content: "c1\nc2", Height: 2},
	}
	m := newModel(t, o, Callbacks{}, items)

	m.ScrollToLine(2)
	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "a3", strings.TrimSpace(lines[0]))
	assert.Equal(t, "b1", strings.TrimSpace(lines[1]))
	assert.Equal(t, "c1", strings.TrimSpace(lines[2]))
	assert.Equal(t, "c2", strings.TrimSpace(lines[3]))
}

func TestModel_NonVirtualRendersEverything(t *testing.T) {
	o := testOptions()
	o.Height = 3
	o.VirtualScrolling = false
	m := newModel(t, o, Callbacks{}, numbered(12))

	m.View()
	assert.Equal(t, 12, m.GetCacheStats().Size)
	assert.Len(t, m.GetVisibleItems(), 3)
}
