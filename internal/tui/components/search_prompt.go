package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vista/internal/tui/styles"
)

// SearchPrompt is the one-line "/" search input.
type SearchPrompt struct {
	input     textinput.Model
	visible   bool
	prevQuery string
}

// NewSearchPrompt creates a hidden prompt.
func NewSearchPrompt() SearchPrompt {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchPrompt{input: ti}
}

// Show makes the prompt visible, seeded with query, and focuses the input.
func (p *SearchPrompt) Show(query string) tea.Cmd {
	p.visible = true
	p.input.SetValue(query)
	p.input.CursorEnd()
	p.prevQuery = query
	return p.input.Focus()
}

// Hide dismisses the prompt. The query is kept.
func (p *SearchPrompt) Hide() {
	p.visible = false
	p.input.Blur()
}

func (p SearchPrompt) IsVisible() bool {
	return p.visible
}

// SetWidth sizes the input to the terminal width.
func (p *SearchPrompt) SetWidth(width int) {
	p.input.Width = max(width-lipgloss.Width(p.input.Prompt)-1, 1)
}

func (p SearchPrompt) Query() string {
	return p.input.Value()
}

// QueryChanged reports whether the query changed since the last call.
func (p *SearchPrompt) QueryChanged() bool {
	q := p.input.Value()
	if q == p.prevQuery {
		return false
	}
	p.prevQuery = q
	return true
}

// Update forwards a key to the input.
func (p *SearchPrompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p SearchPrompt) View() string {
	if !p.visible {
		return ""
	}
	return p.input.View()
}
