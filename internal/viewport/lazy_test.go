package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vista/internal/domain"
)

func lazyOptions(total int) Options {
	o := testOptions()
	o.LazyLoading = true
	o.TotalCount = total
	o.ChunkSize = 50
	o.Scheduler = immediate
	return o
}

func TestLazy_LoadsVisibleChunks(t *testing.T) {
	src := &source{total: 200}
	m := newModel(t, lazyOptions(200), Callbacks{OnLazyLoad: src}, nil)

	assert.Equal(t, 200, m.Len())
	assert.Contains(t, m.View(), LoadingText)
	assert.Empty(t, m.GetVisibleItems())

	run(t, m, m.Init())
	assert.Equal(t, 1, src.calls)
	assert.Len(t, m.GetVisibleItems(), 10)
	assert.Equal(t, domain.LoadLoaded, m.ChunkState(0))
	assert.NotContains(t, m.View(), LoadingText)

	m.ScrollToLine(100)
	run(t, m, m.Cmd())
	assert.Equal(t, []int{0, 50, 100}, src.starts)
	assert.Equal(t, map[int]domain.LoadState{
		0: domain.LoadLoaded,
		1: domain.LoadLoaded,
		2: domain.LoadLoaded,
	}, m.LoadStates())
}

func TestLazy_CoalescesRepeatedRequests(t *testing.T) {
	src := &source{total: 200}
	m := newModel(t, lazyOptions(200), Callbacks{OnLazyLoad: src}, nil)

	// Scroll around inside chunk 0 before its fetch resolves.
	m.ScrollToLine(5)
	m.ScrollToLine(20)
	m.ScrollToTop()
	assert.Equal(t, []int{0}, m.PendingChunks())

	run(t, m, m.Cmd())
	assert.Equal(t, 1, src.calls)
	assert.Empty(t, m.PendingChunks())
}

func TestLazy_UnavailableAfterRetries(t *testing.T) {
	src := &source{total: 30, failures: 100}
	m := newModel(t, lazyOptions(30), Callbacks{OnLazyLoad: src}, nil)

	run(t, m, m.Cmd())
	assert.Equal(t, 4, src.calls, "first attempt plus three retries")
	assert.Equal(t, domain.LoadError, m.ChunkState(0))
	assert.Empty(t, m.PendingChunks())
	assert.Contains(t, m.View(), UnavailableText)
	assert.Equal(t, 30, m.GetTotalLines(), "failed slots keep their place")

	src.failures = 0
	m.RetryChunk(0)
	run(t, m, m.Cmd())
	assert.Equal(t, domain.LoadLoaded, m.ChunkState(0))
	assert.Len(t, m.GetVisibleItems(), 10)
	assert.NotContains(t, m.View(), UnavailableText)
}

func TestLazy_StreamsUntilShortChunk(t *testing.T) {
	src := &source{total: 120}
	m := newModel(t, lazyOptions(0), Callbacks{OnLazyLoad: src}, nil)

	run(t, m, m.Cmd())
	assert.Equal(t, 50, m.Len())

	for i := 0; i < 4; i++ {
		m.ScrollToBottom()
		run(t, m, m.Cmd())
	}
	assert.Equal(t, 120, m.Len())
	assert.Equal(t, []int{0, 50, 100}, src.starts)
	assert.Equal(t, 110, m.GetCurrentLine())
}

func TestLazy_ReloadDropsInFlightResults(t *testing.T) {
	src := &source{total: 200}
	m := newModel(t, lazyOptions(200), Callbacks{OnLazyLoad: src}, nil)

	stale := m.Cmd()
	m.Reload(80)
	fresh := m.Cmd()

	run(t, m, stale)
	assert.Empty(t, m.GetVisibleItems(), "results from before the reload are dropped")

	run(t, m, fresh)
	assert.Equal(t, 80, m.Len())
	assert.Len(t, m.GetVisibleItems(), 10)
}

func TestLazy_ForeignMessagesIgnored(t *testing.T) {
	a := newModel(t, lazyOptions(100), Callbacks{OnLazyLoad: &source{total: 100}}, nil)
	b := newModel(t, lazyOptions(100), Callbacks{OnLazyLoad: &source{total: 100}}, nil)

	msg := firstMsg(a.Cmd())
	_, _ = b.Update(msg)
	assert.Empty(t, b.GetVisibleItems())

	_, _ = a.Update(msg)
	assert.Len(t, a.GetVisibleItems(), 10)
}

func slotIDs(m *Model) []string {
	ids := make([]string, m.Len())
	for i := range ids {
		if it, ok := m.ItemAt(i); ok {
			ids[i] = it.ID
		}
	}
	return ids
}

func TestLazy_StructuralMutations(t *testing.T) {
	opts := lazyOptions(100)
	opts.ScrollMode = domain.ScrollInstant

	t.Run("remove before an unloaded chunk", func(t *testing.T) {
		src := &source{total: 100}
		m := newModel(t, opts, Callbacks{OnLazyLoad: src}, nil)
		run(t, m, m.Init())

		require.NoError(t, m.RemoveItem("row-10"))
		m.ScrollToBottom()
		run(t, m, m.Cmd())

		assert.Equal(t, []int{0, 50}, src.starts)
		assert.Equal(t, 99, m.Len())
		ids := slotIDs(m)
		assert.NotContains(t, ids, "", "every slot loads")
		assert.Equal(t, "row-50", ids[49])
		assert.Equal(t, "row-99", ids[98])
		assert.NotContains(t, m.View(), LoadingText)
	})

	t.Run("insert before an unloaded chunk", func(t *testing.T) {
		src := &source{total: 100}
		m := newModel(t, opts, Callbacks{OnLazyLoad: src}, nil)
		run(t, m, m.Init())

		require.NoError(t, m.InsertItem(0, domain.Item{ID: "local", Content: "local"}))
		m.ScrollToBottom()
		run(t, m, m.Cmd())

		assert.Equal(t, 101, m.Len())
		ids := slotIDs(m)
		assert.NotContains(t, ids, "")
		assert.Equal(t, "local", ids[0])
		assert.Equal(t, "row-49", ids[50])
		assert.Equal(t, "row-50", ids[51])
		assert.Equal(t, "row-99", ids[100])
	})

	t.Run("insert while a chunk is in flight", func(t *testing.T) {
		src := &source{total: 100}
		m := newModel(t, opts, Callbacks{OnLazyLoad: src}, nil)
		m.ScrollToLine(60)
		inflight := m.Cmd()
		require.Equal(t, []int{0, 1}, m.PendingChunks())

		require.NoError(t, m.InsertItem(0, domain.Item{ID: "local", Content: "local"}))
		run(t, m, inflight)
		run(t, m, m.Cmd())

		assert.Equal(t, 101, m.Len())
		idx, ok := m.store.IndexOf("row-50")
		require.True(t, ok)
		assert.Equal(t, 51, idx)
		idx, ok = m.store.IndexOf("row-0")
		require.True(t, ok)
		assert.Equal(t, 1, idx)
	})

	t.Run("height change before an unloaded chunk", func(t *testing.T) {
		src := &source{total: 100}
		m := newModel(t, opts, Callbacks{OnLazyLoad: src}, nil)
		run(t, m, m.Init())

		require.NoError(t, m.UpdateItem(domain.Item{ID: "row-5", Content: "a\nb\nc", Height: 3}))
		assert.Equal(t, 102, m.GetTotalLines())
		m.ScrollToBottom()
		run(t, m, m.Cmd())

		assert.Equal(t, 100, m.Len())
		assert.NotContains(t, slotIDs(m), "")
		assert.Equal(t, 92, m.GetCurrentLine())
	})
}
