package tui

import (
	"fmt"
	"strings"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/tui/styles"
)

func (m *Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.vp.View())
	if m.showStatus {
		b.WriteString("\n")
		b.WriteString(m.renderStatus())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// statusParts describes the viewport state shown in the status line.
func (m *Model) statusParts() []styles.StatusPart {
	vp := m.vp
	start, end := vp.GetVisibleRange()
	parts := []styles.StatusPart{
		{Key: "rows", Value: fmt.Sprintf("%d-%d/%d", min(start+1, end), end, vp.Len())},
		{Key: "line", Value: fmt.Sprintf("%d/%d", vp.GetCurrentLine(), vp.GetTotalLines())},
	}
	if n := len(vp.GetSelectedItems()); n > 0 {
		parts = append(parts, styles.StatusPart{Key: "sel", Value: fmt.Sprint(n)})
	}
	if q := vp.SearchQuery(); q != "" {
		matches := vp.SearchMatches()
		pos := "-"
		if c := vp.SearchCursor(); c >= 0 {
			pos = fmt.Sprint(c + 1)
		}
		parts = append(parts, styles.StatusPart{Key: "match", Value: fmt.Sprintf("%s/%d", pos, len(matches))})
	}
	if pending := vp.PendingChunks(); len(pending) > 0 {
		parts = append(parts, styles.StatusPart{Key: "load", Value: fmt.Sprintf("%d pending", len(pending))})
	} else if m.lastLoad != nil && m.lastLoad.State == domain.LoadError {
		parts = append(parts, styles.StatusPart{Key: "load", Value: "failed"})
	}

	stats := vp.GetCacheStats()
	if total := stats.Hits + stats.Misses; total > 0 {
		parts = append(parts, styles.StatusPart{
			Key:   "cache",
			Value: fmt.Sprintf("%d/%d %d%%", stats.Size, stats.MaxSize, stats.Hits*100/total),
		})
	}
	return parts
}

func (m *Model) renderStatus() string {
	return styles.RenderStatusBar(m.statusParts(), m.Width)
}

// renderFooter shows the search prompt, a status message, or key help.
func (m *Model) renderFooter() string {
	if m.prompt.IsVisible() {
		return m.prompt.View()
	}
	if m.StatusMsg != "" {
		style := styles.AccentStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		return style.Render(styles.Truncate(m.StatusMsg, m.Width))
	}

	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	for _, b := range m.vp.KeyMap.ShortHelp() {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		help = append(help, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(help, styles.DimStyle.Render(" • "))
}
