// Package tui is the vista host application: a full-screen viewport with a
// status line and a search prompt.
package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/search"
	"github.com/mmcdole/vista/internal/tui/components"
	"github.com/mmcdole/vista/internal/viewport"
)

// Config wires the app to its dataset.
type Config struct {
	Options    viewport.Options
	Source     domain.Loader // used when Options.LazyLoading is set
	Items      []domain.Item // used otherwise
	ShowStatus bool
	Logger     *slog.Logger
	// Matcher names the built-in matcher in Options, for cycling with ctrl+f.
	Matcher string
}

// Model is the main Bubble Tea model for the application. It is used by
// pointer because the viewport's callbacks close over it.
type Model struct {
	vp     *viewport.Model
	prompt components.SearchPrompt
	keys   KeyMap

	// Dimensions
	Width  int
	Height int
	Ready  bool

	showStatus bool
	logger     *slog.Logger

	// UI state
	StatusMsg   string
	StatusIsErr bool
	statusSeq   int
	lastLoad    *domain.LoadProgress
	progressCh  chan domain.LoadProgress
	activated   []string
	matcher     int // index into search.MatcherNames
}

// New builds the app and its viewport.
func New(cfg Config) (*Model, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		prompt:     components.NewSearchPrompt(),
		keys:       DefaultKeyMap(),
		showStatus: cfg.ShowStatus,
		matcher:    max(slices.Index(search.MatcherNames, strings.ToLower(cfg.Matcher)), 0),
		logger:     logger,
		progressCh: make(chan domain.LoadProgress, 64),
	}

	opts := cfg.Options
	opts.Logger = logger
	opts.Observer = NewChannelObserver(m.progressCh)

	cb := viewport.Callbacks{
		OnSelectionChange: m.onSelectionChange,
		OnItemActivate:    m.onItemActivate,
	}
	if opts.LazyLoading {
		cb.OnLazyLoad = cfg.Source
	}

	vp, err := viewport.New(opts, cb)
	if err != nil {
		return nil, fmt.Errorf("create viewport: %w", err)
	}
	m.vp = vp
	if !opts.LazyLoading {
		if err := vp.SetItems(cfg.Items); err != nil {
			return nil, fmt.Errorf("load items: %w", err)
		}
	}
	m.updateLayout()
	return m, nil
}

// Viewport exposes the wrapped viewport.
func (m *Model) Viewport() *viewport.Model { return m.vp }

// Activated returns the IDs activated with Enter, oldest first.
func (m *Model) Activated() []string { return m.activated }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.vp.Init(), listenForProgress(m.progressCh))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case LoadProgressMsg:
		p := msg.Progress
		m.lastLoad = &p
		if p.State == domain.LoadError && p.Error != nil {
			cmds = append(cmds, m.setStatus(fmt.Sprintf("chunk %d: %v", p.ChunkKey, p.Error), true))
		}
		cmds = append(cmds, listenForProgress(m.progressCh))

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}

	default:
		_, cmd := m.vp.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.vp.Cmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) onSelectionChange(ids []string) {
	m.logger.Debug("selection changed", "count", len(ids))
}

func (m *Model) onItemActivate(id string, item domain.Item) {
	m.activated = append(m.activated, id)
	m.StatusMsg = "activated " + id
	m.StatusIsErr = false
	m.logger.Info("item activated", "id", id)
}

// setStatus shows a transient message.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return clearStatusAfter(m.statusSeq, statusTTL)
}
