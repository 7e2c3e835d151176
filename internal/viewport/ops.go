package viewport

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/mmcdole/vista/internal/cache"
	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/scroll"
	"github.com/mmcdole/vista/internal/search"
)

// Mutators called from inside a callback are queued; the queued call
// returns a zero value and runs once the outermost callback returns.

// === Items ===

// SetItems replaces the dataset and scrolls to the top. A duplicate ID
// leaves the previous dataset in place.
func (m *Model) SetItems(items []domain.Item) error {
	if m.guard.deferIfBusy(func() { _ = m.SetItems(items) }) {
		return nil
	}
	if err := m.store.SetItems(items); err != nil {
		return err
	}
	m.loader.Reset()
	m.cache.Purge()
	m.focusID = ""
	m.scroll.Jump(0)
	m.afterContentChange()
	m.sync()
	return nil
}

// Reload discards all content and, in lazy mode, reserves total unloaded
// slots to be fetched again.
func (m *Model) Reload(total int) {
	if m.guard.deferIfBusy(func() { m.Reload(total) }) {
		return
	}
	m.store.Reset(total)
	m.loader.Reset()
	m.cache.Purge()
	m.focusID = ""
	m.scroll.Jump(0)
	m.afterContentChange()
	m.sync()
}

// AddItem appends item.
func (m *Model) AddItem(item domain.Item) error {
	if m.guard.deferIfBusy(func() { _ = m.AddItem(item) }) {
		return nil
	}
	return m.InsertItem(m.store.Len(), item)
}

// InsertItem places item at index; index == Len appends.
func (m *Model) InsertItem(index int, item domain.Item) error {
	if m.guard.deferIfBusy(func() { _ = m.InsertItem(index, item) }) {
		return nil
	}
	if err := m.store.Insert(index, item); err != nil {
		return err
	}
	m.afterContentChange()
	m.sync()
	return nil
}

// RemoveItem deletes the item with id, dropping it from selection.
func (m *Model) RemoveItem(id string) error {
	if m.guard.deferIfBusy(func() { _ = m.RemoveItem(id) }) {
		return nil
	}
	if _, err := m.store.Remove(id); err != nil {
		return err
	}
	m.cache.Invalidate(id)
	m.afterContentChange()
	m.sync()
	return nil
}

// UpdateItem replaces the stored item with the same ID and drops its
// cached rendering.
func (m *Model) UpdateItem(item domain.Item) error {
	if m.guard.deferIfBusy(func() { _ = m.UpdateItem(item) }) {
		return nil
	}
	if err := m.store.Replace(item); err != nil {
		return err
	}
	m.cache.Invalidate(item.ID)
	m.afterContentChange()
	m.sync()
	return nil
}

// GetItem returns the item with id.
func (m *Model) GetItem(id string) (domain.Item, bool) {
	return m.store.Get(id)
}

// ItemAt returns the item in slot i; false for unloaded or out of range.
func (m *Model) ItemAt(i int) (domain.Item, bool) {
	return m.store.At(i)
}

// Len returns the number of slots, loaded or not.
func (m *Model) Len() int {
	return m.store.Len()
}

// === Scrolling ===

func (m *Model) scrollOp(fn func()) {
	if !m.opts.Scrollable {
		return
	}
	m.focusID = ""
	fn()
	m.sync()
}

// ScrollTo scrolls slot index to the top of the viewport.
func (m *Model) ScrollTo(index int) error {
	if m.guard.deferIfBusy(func() { _ = m.ScrollTo(index) }) {
		return nil
	}
	if index < 0 || index >= m.store.Len() {
		return fmt.Errorf("scroll to %d (len %d): %w", index, m.store.Len(), domain.ErrInvalidIndex)
	}
	m.scrollOp(func() { m.scroll.ScrollTo(float64(m.virt.OffsetOf(index))) })
	return nil
}

// ScrollToItem scrolls the item with id to the top of the viewport.
func (m *Model) ScrollToItem(id string) error {
	i, ok := m.store.IndexOf(id)
	if !ok {
		return fmt.Errorf("scroll to %q: %w", id, domain.ErrItemNotFound)
	}
	return m.ScrollTo(i)
}

// ScrollToLine scrolls so line is the first visible line, clamped.
func (m *Model) ScrollToLine(line int) {
	if m.guard.deferIfBusy(func() { m.ScrollToLine(line) }) {
		return
	}
	m.scrollOp(func() { m.scroll.ScrollTo(float64(line)) })
}

// ScrollBy moves lines down (negative is up).
func (m *Model) ScrollBy(lines int) {
	if m.guard.deferIfBusy(func() { m.ScrollBy(lines) }) {
		return
	}
	m.scrollOp(func() { m.scroll.ScrollBy(float64(lines)) })
}

// ScrollUp moves one line up.
func (m *Model) ScrollUp() { m.ScrollBy(-1) }

// ScrollDown moves one line down.
func (m *Model) ScrollDown() { m.ScrollBy(1) }

// PageUp moves one viewport height up.
func (m *Model) PageUp() { m.ScrollBy(-max(m.viewHeight(), 1)) }

// PageDown moves one viewport height down.
func (m *Model) PageDown() { m.ScrollBy(max(m.viewHeight(), 1)) }

// HalfPageUp moves half a viewport height up.
func (m *Model) HalfPageUp() { m.ScrollBy(-max(m.viewHeight()/2, 1)) }

// HalfPageDown moves half a viewport height down.
func (m *Model) HalfPageDown() { m.ScrollBy(max(m.viewHeight()/2, 1)) }

// ScrollToTop scrolls to line 0.
func (m *Model) ScrollToTop() { m.ScrollToLine(0) }

// ScrollToBottom scrolls to the last full page.
func (m *Model) ScrollToBottom() {
	m.ScrollToLine(int(m.virt.MaxOffset(m.viewHeight())))
}

// HandleMouseWheel applies delta wheel notches (positive is down). Smooth
// and auto modes glide with momentum.
func (m *Model) HandleMouseWheel(delta int) {
	if m.guard.deferIfBusy(func() { m.HandleMouseWheel(delta) }) {
		return
	}
	if delta == 0 {
		return
	}
	m.scrollOp(func() { m.scroll.Fling(float64(delta)) })
}

// SetSize resizes the viewport. A width change drops cached renderings.
func (m *Model) SetSize(width, height int) {
	if m.guard.deferIfBusy(func() { m.SetSize(width, height) }) {
		return
	}
	width, height = max(width, 0), max(height, 0)
	if width != m.opts.Width {
		m.cache.Purge()
	}
	m.opts.Width, m.opts.Height = width, height
	m.sync()
}

// Width returns the viewport width including the scrollbar.
func (m *Model) Width() int { return m.opts.Width }

// Height returns the viewport height.
func (m *Model) Height() int { return m.opts.Height }

// === Selection ===

// SelectItem selects id. In single mode it replaces the prior selection.
func (m *Model) SelectItem(id string) error {
	if m.guard.deferIfBusy(func() { _ = m.SelectItem(id) }) {
		return nil
	}
	changed, err := m.sel.Select(id)
	if err != nil {
		return err
	}
	if changed {
		m.fireSelection()
	}
	return nil
}

// DeselectItem removes id from the selection.
func (m *Model) DeselectItem(id string) bool {
	if m.guard.deferIfBusy(func() { m.DeselectItem(id) }) {
		return false
	}
	changed := m.sel.Deselect(id)
	if changed {
		m.fireSelection()
	}
	return changed
}

// ToggleSelection flips id's selection.
func (m *Model) ToggleSelection(id string) error {
	if m.guard.deferIfBusy(func() { _ = m.ToggleSelection(id) }) {
		return nil
	}
	changed, err := m.sel.Toggle(id)
	if err != nil {
		return err
	}
	if changed {
		m.fireSelection()
	}
	return nil
}

// SelectAll selects every selectable loaded item (multiple mode only).
func (m *Model) SelectAll() bool {
	if m.guard.deferIfBusy(func() { m.SelectAll() }) {
		return false
	}
	changed := m.sel.SelectAll()
	if changed {
		m.fireSelection()
	}
	return changed
}

// ClearSelection empties the selection.
func (m *Model) ClearSelection() bool {
	if m.guard.deferIfBusy(func() { m.ClearSelection() }) {
		return false
	}
	changed := m.sel.Clear()
	if changed {
		m.fireSelection()
	}
	return changed
}

// SetSelectionMode switches policy, trimming the selection to fit.
func (m *Model) SetSelectionMode(mode domain.SelectionMode) error {
	if _, err := domain.ParseSelectionMode(string(mode)); err != nil {
		return err
	}
	if m.guard.deferIfBusy(func() { _ = m.SetSelectionMode(mode) }) {
		return nil
	}
	m.opts.SelectionMode = mode
	m.KeyMap.SelectAll.SetEnabled(mode == domain.SelectionMultiple)
	if m.sel.SetMode(mode) {
		m.fireSelection()
	}
	return nil
}

// GetSelectedItems returns selected IDs in display order.
func (m *Model) GetSelectedItems() []string {
	return m.sel.Selected()
}

// IsSelected reports whether id is selected.
func (m *Model) IsSelected(id string) bool {
	return m.sel.IsSelected(id)
}

// === Search ===

// Search replaces the match state with the results for query and returns
// the ascending match indices. An empty query clears highlighting.
func (m *Model) Search(query string) []int {
	if m.guard.deferIfBusy(func() { m.Search(query) }) {
		return nil
	}
	m.runSearch(query)
	m.focusID = ""
	return m.search.Matches()
}

// ClearSearch drops the query and its highlighting.
func (m *Model) ClearSearch() {
	m.Search("")
}

// NextSearchResult moves to the next match, wrapping, and scrolls to it.
func (m *Model) NextSearchResult() (int, bool) {
	if m.guard.deferIfBusy(func() { m.NextSearchResult() }) {
		return 0, false
	}
	i, ok := m.search.Next()
	if ok {
		m.focusIndex(i)
	}
	return i, ok
}

// PreviousSearchResult moves to the previous match, wrapping, and scrolls to it.
func (m *Model) PreviousSearchResult() (int, bool) {
	if m.guard.deferIfBusy(func() { m.PreviousSearchResult() }) {
		return 0, false
	}
	i, ok := m.search.Previous()
	if ok {
		m.focusIndex(i)
	}
	return i, ok
}

// SetMatcher swaps the built-in matcher and re-runs an active query with
// it. A nil matcher restores substring matching.
func (m *Model) SetMatcher(matcher search.Matcher) {
	if m.guard.deferIfBusy(func() { m.SetMatcher(matcher) }) {
		return
	}
	m.opts.Matcher = matcher
	m.search.SetMatcher(matcher)
	if m.search.Active() {
		m.rerunSearch()
	}
}

// SearchQuery returns the active query.
func (m *Model) SearchQuery() string { return m.search.Query() }

// SearchMatches returns the ascending match indices.
func (m *Model) SearchMatches() []int { return m.search.Matches() }

// SearchCursor returns the match cursor, -1 before the first step.
func (m *Model) SearchCursor() int { return m.search.Cursor() }

func (m *Model) runSearch(query string) {
	if m.cb.OnSearch == nil || query == "" {
		m.search.Search(query, storeCorpus{m})
		return
	}
	items := m.snapshot()
	m.guard.run(func() {
		m.search.SetResults(query, m.cb.OnSearch(query, items), len(items))
	})
}

func (m *Model) rerunSearch() {
	if m.cb.OnSearch == nil {
		m.search.Refresh(storeCorpus{m})
		return
	}
	cur, had := m.search.Current()
	m.runSearch(m.search.Query())
	if had {
		m.search.Seek(cur)
	}
}

// focusIndex scrolls slot i to the top and marks it focused.
func (m *Model) focusIndex(i int) {
	if m.opts.Scrollable {
		m.scroll.ScrollTo(float64(m.virt.OffsetOf(i)))
	}
	if it, ok := m.store.At(i); ok {
		m.focusID = it.ID
	}
	m.sync()
}

// storeCorpus exposes loaded item content to search matchers.
type storeCorpus struct {
	m *Model
}

func (c storeCorpus) Len() int { return c.m.store.Len() }

func (c storeCorpus) Text(i int) (string, bool) {
	it, ok := c.m.store.At(i)
	return it.Content, ok
}

// snapshot returns one item per slot; unloaded slots are zero Items.
func (m *Model) snapshot() []domain.Item {
	out := make([]domain.Item, m.store.Len())
	for i := range out {
		out[i], _ = m.store.At(i)
	}
	return out
}

// === Keys ===

// HandleKeyPress runs the action bound to k and reports whether the key
// was consumed. Both Bubble Tea names ("pgdown") and DOM-style names
// ("PageDown") are accepted.
func (m *Model) HandleKeyPress(k string) bool {
	name := normalizeKey(k)
	if m.guard.busy() {
		consumed := m.boundKey(name)
		m.guard.deferIfBusy(func() { m.HandleKeyPress(k) })
		return consumed
	}

	km := m.KeyMap
	switch {
	case key.Matches(name, km.Up):
		return m.keyScroll(m.ScrollUp)
	case key.Matches(name, km.Down):
		return m.keyScroll(m.ScrollDown)
	case key.Matches(name, km.PageUp):
		return m.keyScroll(m.PageUp)
	case key.Matches(name, km.PageDown):
		return m.keyScroll(m.PageDown)
	case key.Matches(name, km.HalfUp):
		return m.keyScroll(m.HalfPageUp)
	case key.Matches(name, km.HalfDown):
		return m.keyScroll(m.HalfPageDown)
	case key.Matches(name, km.Top):
		return m.keyScroll(m.ScrollToTop)
	case key.Matches(name, km.Bottom):
		return m.keyScroll(m.ScrollToBottom)

	case key.Matches(name, km.Activate):
		item, ok := m.target()
		if !ok {
			return false
		}
		m.fireActivate(item)
		return true

	case key.Matches(name, km.Toggle):
		if m.sel.Mode() == domain.SelectionNone {
			return false
		}
		item, ok := m.target()
		if !ok {
			return false
		}
		_ = m.ToggleSelection(item.ID)
		return true

	case key.Matches(name, km.SelectAll):
		m.SelectAll()
		return true

	case key.Matches(name, km.Clear):
		if m.sel.Mode() == domain.SelectionNone {
			return false
		}
		m.ClearSelection()
		return true
	}
	return false
}

func (m *Model) keyScroll(fn func()) bool {
	if !m.opts.Scrollable {
		return false
	}
	fn()
	return true
}

func (m *Model) boundKey(name keyName) bool {
	for _, row := range m.KeyMap.FullHelp() {
		if key.Matches(name, row...) {
			return true
		}
	}
	return false
}

// target is the item keyboard actions apply to: the focused item when
// search navigation set one, otherwise the item at the current line.
func (m *Model) target() (domain.Item, bool) {
	if m.focusID != "" {
		if it, ok := m.store.Get(m.focusID); ok {
			return it, true
		}
	}
	i := m.virt.IndexAt(float64(m.scroll.Position()))
	if i < 0 {
		return domain.Item{}, false
	}
	return m.store.At(i)
}

// Focused returns the item under search focus.
func (m *Model) Focused() (domain.Item, bool) {
	if m.focusID == "" {
		return domain.Item{}, false
	}
	return m.store.Get(m.focusID)
}

// === Introspection ===

// GetCacheStats returns render cache counters.
func (m *Model) GetCacheStats() cache.Stats {
	return m.cache.Stats()
}

// GetVisibleRange returns the half-open slot range intersecting the
// viewport, without overscan.
func (m *Model) GetVisibleRange() (int, int) {
	return m.virt.VisibleRange(float64(m.scroll.Position()), m.viewHeight())
}

// GetVisibleItems returns the loaded items intersecting the viewport.
func (m *Model) GetVisibleItems() []domain.Item {
	start, end := m.GetVisibleRange()
	out := make([]domain.Item, 0, end-start)
	for i := start; i < end; i++ {
		if it, ok := m.store.At(i); ok {
			out = append(out, it)
		}
	}
	return out
}

// GetCurrentLine returns the first visible line.
func (m *Model) GetCurrentLine() int {
	return m.scroll.Position()
}

// GetTotalLines returns the summed height of all slots.
func (m *Model) GetTotalLines() int {
	return m.virt.TotalHeight()
}

// ScrollState reports whether an animation or glide is running.
func (m *Model) ScrollState() scroll.State {
	return m.scroll.State()
}

// LoadStates returns the state of every tracked chunk.
func (m *Model) LoadStates() map[int]domain.LoadState {
	return m.loader.LoadStates()
}

// ChunkState returns the state of a chunk key.
func (m *Model) ChunkState(chunk int) domain.LoadState {
	return m.loader.ChunkState(chunk)
}

// PendingChunks returns chunk keys that are loading or awaiting retry.
func (m *Model) PendingChunks() []int {
	return m.loader.PendingChunks()
}

// RetryChunk re-fetches a chunk that failed permanently. The fetch is
// delivered through Cmd.
func (m *Model) RetryChunk(chunk int) {
	m.queue(m.loader.Retry(chunk))
}
