package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/search"
	"github.com/mmcdole/vista/internal/store"
	"github.com/mmcdole/vista/internal/viewport"
)

func lines(n int) []domain.Item {
	out := make([]domain.Item, n)
	for i := range out {
		out[i] = domain.Item{ID: fmt.Sprintf("line-%d", i), Content: fmt.Sprintf("line %d", i)}
	}
	out[4].Content = "error: disk full"
	out[15].Content = "another error"
	return out
}

func newApp(t *testing.T) *Model {
	t.Helper()
	o := viewport.DefaultOptions()
	o.SelectionMode = domain.SelectionMultiple
	m, err := New(Config{Options: o, Items: lines(30), ShowStatus: true})
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 50, Height: 12})
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestApp_Layout(t *testing.T) {
	m := newApp(t)

	assert.Equal(t, 50, m.Viewport().Width())
	assert.Equal(t, 10, m.Viewport().Height())

	view := m.View()
	assert.Len(t, strings.Split(view, "\n"), 12)
	assert.Contains(t, view, "line 0")
	assert.Contains(t, view, "rows")
}

func TestApp_NotReadyBeforeSize(t *testing.T) {
	m, err := New(Config{Options: viewport.DefaultOptions()})
	require.NoError(t, err)
	assert.Equal(t, "Loading...", m.View())
}

func TestApp_SearchPrompt(t *testing.T) {
	m := newApp(t)

	press(m, "/")
	require.True(t, m.prompt.IsVisible())
	press(m, "e", "r", "r", "o", "r")
	assert.Equal(t, []int{4, 15}, m.Viewport().SearchMatches(), "searches as you type")

	press(m, "enter")
	assert.False(t, m.prompt.IsVisible())
	assert.Equal(t, 4, m.Viewport().GetCurrentLine())

	press(m, "n")
	assert.Equal(t, 15, m.Viewport().GetCurrentLine())
	press(m, "N")
	assert.Equal(t, 4, m.Viewport().GetCurrentLine())
	assert.Contains(t, m.renderStatus(), "1/2")

	press(m, "/", "esc")
	assert.Empty(t, m.Viewport().SearchQuery())
}

func TestApp_SearchWithoutMatches(t *testing.T) {
	m := newApp(t)

	press(m, "/", "z", "z", "z", "enter")
	assert.True(t, m.StatusIsErr)
	assert.Contains(t, m.StatusMsg, "no matches")

	m.Update(ClearStatusMsg{Seq: m.statusSeq})
	assert.Empty(t, m.StatusMsg)
}

func TestApp_CycleMatcher(t *testing.T) {
	m := newApp(t)

	press(m, "/", "d", "s", "f", "l", "enter")
	assert.Empty(t, m.Viewport().SearchMatches())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Equal(t, "matcher: fuzzy", m.StatusMsg)
	assert.Equal(t, []int{4}, m.Viewport().SearchMatches(), "active query re-runs with the new matcher")

	for range search.MatcherNames[1:] {
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	}
	assert.Equal(t, "matcher: substring", m.StatusMsg)
	assert.Empty(t, m.Viewport().SearchMatches())
}

func TestApp_PassesKeysToViewport(t *testing.T) {
	m := newApp(t)

	press(m, "j", "j", " ")
	assert.Equal(t, 2, m.Viewport().GetCurrentLine())
	assert.Equal(t, []string{"line-2"}, m.Viewport().GetSelectedItems())
	assert.Contains(t, m.renderStatus(), "sel")

	press(m, "enter")
	assert.Equal(t, []string{"line-2"}, m.Activated())
	assert.Equal(t, "activated line-2", m.StatusMsg)
}

func TestApp_Quit(t *testing.T) {
	m := newApp(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				msg = c()
				break
			}
		}
	}
	assert.IsType(t, tea.QuitMsg{}, msg)
}

func TestApp_LazyDatasetAndProgress(t *testing.T) {
	ds, err := store.Open("")
	require.NoError(t, err)
	require.NoError(t, ds.Append(lines(120)...))

	o := viewport.DefaultOptions()
	o.LazyLoading = true
	o.TotalCount = 120
	m, err := New(Config{Options: o, Source: ds, ShowStatus: true})
	require.NoError(t, err)
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 50, Height: 12})
	require.NotNil(t, cmd, "the first chunk fetch is returned from Update")
	assert.Nil(t, m.Viewport().Cmd(), "Update drains the viewport's commands")

	msg := listenForProgress(m.progressCh)()
	require.IsType(t, LoadProgressMsg{}, msg)
	assert.Equal(t, domain.LoadLoading, msg.(LoadProgressMsg).Progress.State)
	assert.Contains(t, m.renderStatus(), "pending")

	for _, loaded := range execAll(cmd) {
		m.Update(loaded)
	}

	assert.Len(t, m.Viewport().GetVisibleItems(), 10)
	assert.NotContains(t, m.View(), viewport.LoadingText)
}

// execAll runs cmd and returns the messages it produces, flattening batches.
func execAll(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, execAll(c)...)
	}
	return out
}

func TestApp_LoadFailureShowsStatus(t *testing.T) {
	m := newApp(t)
	m.Update(LoadProgressMsg{Progress: domain.LoadProgress{
		ChunkKey: 2,
		State:    domain.LoadError,
		Error:    errors.New("timeout"),
	}})

	assert.True(t, m.StatusIsErr)
	assert.Contains(t, m.StatusMsg, "chunk 2")
	assert.Contains(t, m.renderStatus(), "failed")
}

func TestChannelObserver_DropsWhenFull(t *testing.T) {
	ch := make(chan domain.LoadProgress, 1)
	o := NewChannelObserver(ch)
	o.OnProgress(domain.LoadProgress{ChunkKey: 1})
	o.OnProgress(domain.LoadProgress{ChunkKey: 2})

	assert.Equal(t, 1, (<-ch).ChunkKey)
	assert.Empty(t, ch)
}
