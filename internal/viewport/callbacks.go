package viewport

import "github.com/mmcdole/vista/internal/domain"

// Callbacks are the host's hooks. All are optional except OnLazyLoad when
// lazy loading is enabled. They run synchronously, in call order, before the
// triggering operation returns.
type Callbacks struct {
	OnLazyLoad        domain.Loader
	OnScroll          func(position int)
	OnSelectionChange func(ids []string)
	OnItemActivate    func(id string, item domain.Item)

	// OnSearch replaces the built-in matcher. The slice holds one entry per
	// slot in display order; unloaded slots are zero Items. Returned indices
	// are sorted, deduplicated and range-checked.
	OnSearch func(query string, items []domain.Item) []int
}

// guard serialises callback delivery. Mutations requested while a callback
// is running are queued and replayed once the outermost callback returns.
type guard struct {
	depth   int
	pending []func()
}

// busy reports whether a callback is currently running.
func (g *guard) busy() bool {
	return g.depth > 0
}

// deferIfBusy queues op when called from inside a callback.
func (g *guard) deferIfBusy(op func()) bool {
	if g.depth == 0 {
		return false
	}
	g.pending = append(g.pending, op)
	return true
}

// run invokes fn as a callback and drains queued work afterwards.
func (g *guard) run(fn func()) {
	g.depth++
	defer func() {
		g.depth--
		if g.depth == 0 {
			g.drain()
		}
	}()
	fn()
}

func (g *guard) drain() {
	for len(g.pending) > 0 {
		op := g.pending[0]
		g.pending = g.pending[1:]
		op()
	}
}

func (m *Model) fireScroll(pos int) {
	if m.cb.OnScroll == nil {
		return
	}
	m.guard.run(func() { m.cb.OnScroll(pos) })
}

func (m *Model) fireSelection() {
	if m.cb.OnSelectionChange == nil {
		return
	}
	ids := m.sel.Selected()
	m.guard.run(func() { m.cb.OnSelectionChange(ids) })
}

func (m *Model) fireActivate(item domain.Item) {
	if m.cb.OnItemActivate == nil {
		return
	}
	m.guard.run(func() { m.cb.OnItemActivate(item.ID, item) })
}
