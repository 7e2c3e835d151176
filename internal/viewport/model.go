// Package viewport is a virtualized, scrollable window over a large ordered
// item collection. It renders only the visible slots, caches renderings,
// streams unloaded slots through a lazy loader, and tracks selection and
// search. Model is a Bubble Tea model; every public method is also usable
// directly from a host's own Update.
package viewport

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vista/internal/cache"
	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/itemstore"
	"github.com/mmcdole/vista/internal/loader"
	"github.com/mmcdole/vista/internal/scroll"
	"github.com/mmcdole/vista/internal/search"
	"github.com/mmcdole/vista/internal/selection"
	"github.com/mmcdole/vista/internal/virtual"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Model composes the store, cache, virtualizer, loader, selection, search
// and scroll controller behind one API. It is not safe for concurrent use;
// drive it from the Bubble Tea update loop.
type Model struct {
	id     int
	opts   Options
	cb     Callbacks
	logger *slog.Logger

	store    *itemstore.Store
	cache    *cache.RenderCache
	virt     *virtual.Virtualizer
	loader   *loader.Loader
	sel      *selection.Manager
	search   *search.Index
	scroll   *scroll.Controller
	renderer domain.Renderer
	styles   rowStyles

	KeyMap KeyMap

	guard   guard
	focusID string // item under search focus
	lastPos int    // last position reported to OnScroll
	ticking bool
	cmds    []tea.Cmd
}

// New validates opts and builds a viewport. Malformed options return an
// error wrapping domain.ErrInvalidConfig.
func New(opts Options, cb Callbacks) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.LazyLoading && cb.OnLazyLoad == nil {
		return nil, fmt.Errorf("%w: lazy loading requires an OnLazyLoad loader", domain.ErrInvalidConfig)
	}
	opts = opts.withDefaults()

	m := &Model{
		id:       nextID(),
		opts:     opts,
		cb:       cb,
		logger:   opts.Logger,
		store:    itemstore.New(opts.ItemHeight),
		cache:    cache.New(opts.CacheSize),
		search:   search.NewIndex(opts.Matcher),
		scroll:   scroll.New(opts.scrollConfig(), opts.Clock),
		renderer: opts.Renderer,
		styles:   newRowStyles(opts),
		KeyMap:   DefaultKeyMap(),
	}
	if m.renderer == nil {
		m.renderer = DefaultRenderer
	}
	m.virt = virtual.New(m.store, opts.OverscanCount)
	m.sel = selection.New(opts.SelectionMode, m.store)

	var source domain.Loader
	if opts.LazyLoading {
		source = cb.OnLazyLoad
	}
	m.loader = loader.New(source, m.store, opts.loaderConfig(),
		loader.WithID(m.id),
		loader.WithLogger(m.logger),
		loader.WithScheduler(opts.Scheduler),
		loader.WithObserver(opts.Observer),
	)
	m.KeyMap.SelectAll.SetEnabled(opts.SelectionMode == domain.SelectionMultiple)

	if opts.LazyLoading && opts.TotalCount > 0 {
		m.store.Reset(opts.TotalCount)
	}
	m.sync()
	m.logger.Debug("viewport created",
		"id", m.id,
		"width", opts.Width,
		"height", opts.Height,
		"lazy", opts.LazyLoading,
		"selection", opts.SelectionMode,
		"scroll", opts.ScrollMode,
	)
	return m, nil
}

// ID identifies this viewport's messages.
func (m *Model) ID() int { return m.id }

// Options returns the effective options.
func (m *Model) Options() Options { return m.opts }

// Init kicks off the first lazy loads.
func (m *Model) Init() tea.Cmd {
	return m.Cmd()
}

// Update handles keys, mouse wheel, chunk results and scroll ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.HandleKeyPress(msg.String())

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.HandleMouseWheel(-1)
		case tea.MouseButtonWheelDown:
			m.HandleMouseWheel(1)
		}

	case loader.ChunkLoadedMsg:
		if m.loader.Owns(msg) {
			m.handleChunk(msg)
		}

	case loader.ChunkRetryMsg:
		if m.loader.Owns(msg) {
			m.queue(m.loader.HandleRetry(msg))
		}

	case ScrollTickMsg:
		if msg.ID == m.id {
			m.ticking = false
			m.Tick()
		}
	}
	return m, m.Cmd()
}

// Cmd drains commands produced by API calls made outside Update, such as
// lazy loads and animation ticks. Hosts that call Model methods from their
// own Update should batch this into their return value.
func (m *Model) Cmd() tea.Cmd {
	if len(m.cmds) == 0 {
		return nil
	}
	cmds := m.cmds
	m.cmds = nil
	return tea.Batch(cmds...)
}

func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.cmds = append(m.cmds, cmd)
	}
}

// Tick advances animation by one frame. Update calls it on ScrollTickMsg;
// tests may call it directly.
func (m *Model) Tick() bool {
	still := m.scroll.Tick()
	m.sync()
	return still
}

func (m *Model) handleChunk(msg loader.ChunkLoadedMsg) {
	res, retry := m.loader.HandleLoaded(msg)
	m.queue(retry)
	if res.Stale {
		return
	}
	if res.Err != nil {
		m.logger.Warn("slots unavailable", "start", res.Start, "count", res.Count, "error", res.Err)
	}
	if res.Filled > 0 {
		m.afterContentChange()
	}
	m.sync()
}

// viewHeight is the number of content rows.
func (m *Model) viewHeight() int {
	return max(m.opts.Height, 0)
}

func (m *Model) contentWidth() int {
	w := max(m.opts.Width, 0)
	if m.scrollbarVisible() {
		w--
	}
	return w
}

// window is the index range that is rendered and pinned.
func (m *Model) window() (int, int) {
	if !m.opts.VirtualScrolling {
		if m.viewHeight() == 0 {
			return 0, 0
		}
		return 0, m.store.Len()
	}
	return m.virt.Range(float64(m.scroll.Position()), m.viewHeight())
}

// sync re-derives everything that depends on offset or content: scroll
// bounds, cache pins, lazy loads, the animation tick and OnScroll.
func (m *Model) sync() {
	m.scroll.SetMax(m.virt.MaxOffset(m.viewHeight()))

	start, end := m.window()
	ids := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if it, ok := m.store.At(i); ok {
			ids = append(ids, it.ID)
		}
	}
	m.cache.Pin(ids)

	if m.loader.Enabled() {
		m.queue(m.loader.EnsureRange(start, end))
		m.maybeStream(end)
	}

	if m.scroll.Animating() && !m.ticking {
		m.ticking = true
		id := m.id
		m.queue(tea.Tick(scroll.FrameInterval, func(time.Time) tea.Msg {
			return ScrollTickMsg{ID: id}
		}))
	}

	if pos := m.scroll.Position(); pos != m.lastPos {
		m.lastPos = pos
		m.fireScroll(pos)
	}
}

// maybeStream requests the next chunk past the end of an unsized store when
// the window reaches it.
func (m *Model) maybeStream(end int) {
	if m.opts.TotalCount > 0 || m.loader.AtEnd() {
		return
	}
	n, size := m.store.SourceLen(), m.loader.ChunkSize()
	if n%size != 0 || end+m.virt.Overscan() < m.store.Len() {
		return
	}
	m.queue(m.loader.RequestChunk(n, size))
}

// afterContentChange keeps search results and selection consistent with
// the store after any mutation.
func (m *Model) afterContentChange() {
	if m.search.Active() {
		m.rerunSearch()
	}
	if m.focusID != "" {
		if _, ok := m.store.IndexOf(m.focusID); !ok {
			m.focusID = ""
		}
	}
	if m.sel.Prune() {
		m.fireSelection()
	}
}
