package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vista/internal/search"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.prompt.IsVisible() {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Search):
		return m.prompt.Show(m.vp.SearchQuery())

	case key.Matches(msg, m.keys.NextMatch):
		return m.stepMatch(m.vp.NextSearchResult)

	case key.Matches(msg, m.keys.PrevMatch):
		return m.stepMatch(m.vp.PreviousSearchResult)

	case key.Matches(msg, m.keys.ClearSearch) && m.vp.SearchQuery() != "":
		m.vp.ClearSearch()
		return nil

	case key.Matches(msg, m.keys.Matcher):
		return m.cycleMatcher()
	}

	m.vp.HandleKeyPress(msg.String())
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.prompt.Hide()
		if len(m.vp.SearchMatches()) == 0 {
			if q := m.prompt.Query(); q != "" {
				return m.setStatus(fmt.Sprintf("no matches for %q", q), true)
			}
			return nil
		}
		return m.stepMatch(m.vp.NextSearchResult)

	case tea.KeyEsc:
		m.prompt.Hide()
		m.vp.ClearSearch()
		return nil
	}

	cmd := m.prompt.Update(msg)
	if m.prompt.QueryChanged() {
		m.vp.Search(m.prompt.Query())
	}
	return cmd
}

func (m *Model) stepMatch(step func() (int, bool)) tea.Cmd {
	if _, ok := step(); !ok {
		return m.setStatus("no search results", true)
	}
	return nil
}

// cycleMatcher switches to the next built-in matcher.
func (m *Model) cycleMatcher() tea.Cmd {
	m.matcher = (m.matcher + 1) % len(search.MatcherNames)
	name := search.MatcherNames[m.matcher]
	m.vp.SetMatcher(search.MatcherByName(name))
	return m.setStatus("matcher: "+name, false)
}
