package viewport

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/tui/styles"
)

// Placeholder text for slots without content.
const (
	LoadingText     = "Loading…"
	UnavailableText = "unavailable"
)

// Scrollbar glyphs
const (
	scrollTrackChar = "│"
	scrollThumbChar = "┃"
)

// rowStyles are built once from the option colors.
type rowStyles struct {
	normal      lipgloss.Style
	placeholder lipgloss.Style
	unavailable lipgloss.Style
	track       lipgloss.Style
	thumb       lipgloss.Style

	search    lipgloss.Color
	selection lipgloss.Color
	highlight lipgloss.Color
}

func newRowStyles(o Options) rowStyles {
	return rowStyles{
		normal:      styles.RowStyle,
		placeholder: styles.DimStyle.Italic(true),
		unavailable: styles.ErrorStyle,
		track:       styles.ScrollTrackStyle,
		thumb:       styles.ScrollThumbStyle,
		search:      lipgloss.Color(o.SearchHighlightColor),
		selection:   lipgloss.Color(o.SelectionColor),
		highlight:   lipgloss.Color(o.HighlightColor),
	}
}

// DefaultRenderer splits Content on newlines.
func DefaultRenderer(item domain.Item, width, height int) []string {
	return strings.Split(item.Content, "\n")
}

// fitLines forces lines to exactly height rows of exactly width cells.
func fitLines(lines []string, width, height int) []string {
	out := make([]string, height)
	for i := range out {
		var l string
		if i < len(lines) {
			l = lines[i]
		}
		out[i] = fitWidth(l, width)
	}
	return out
}

func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// View renders the visible window.
func (m *Model) View() string {
	h, cw := m.opts.Height, m.contentWidth()
	if h <= 0 || m.opts.Width <= 0 {
		return ""
	}

	top := m.scroll.Position()
	start, end := m.window()
	rows := make([]string, 0, h)
	line := m.virt.OffsetOf(start)
	// Overscan slots are rendered too so they are cached before they scroll in.
	for i := start; i < end; i++ {
		for _, l := range m.itemLines(i, cw) {
			if line >= top && len(rows) < h {
				rows = append(rows, l)
			}
			line++
		}
	}
	blank := strings.Repeat(" ", cw)
	for len(rows) < h {
		rows = append(rows, blank)
	}

	if m.scrollbarVisible() {
		bar := m.scrollbar(h)
		for i := range rows {
			if m.opts.ScrollbarPosition == domain.ScrollbarLeft {
				rows[i] = bar[i] + rows[i]
			} else {
				rows[i] += bar[i]
			}
		}
	}
	return strings.Join(rows, "\n")
}

// itemLines returns the styled rows for slot i.
func (m *Model) itemLines(i, width int) []string {
	height := m.store.HeightAt(i)
	item, ok := m.store.At(i)
	if !ok {
		text, style := LoadingText, m.styles.placeholder
		if pos, pending := m.store.Pending(i); pending && m.loader.Unavailable(pos) {
			text, style = UnavailableText, m.styles.unavailable
		}
		lines := fitLines([]string{text}, width, height)
		for k := range lines {
			lines[k] = style.Render(lines[k])
		}
		return lines
	}

	r, hit := m.cache.Get(item.ID)
	if !hit || r.Width != width {
		r = domain.Rendering{
			Lines: fitLines(m.renderer(item, width, height), width, height),
			Width: width,
		}
		m.cache.Put(item.ID, r)
	}

	style := m.rowStyle(i, item)
	out := make([]string, len(r.Lines))
	for k, l := range r.Lines {
		out[k] = style.Render(l)
	}
	return out
}

func (m *Model) rowStyle(i int, item domain.Item) lipgloss.Style {
	s := m.styles.normal
	if m.search.IsMatch(i) {
		s = s.Foreground(m.styles.search)
		if cur, ok := m.search.Current(); ok && cur == i {
			s = s.Bold(true).Underline(true)
		}
	}
	if m.sel.IsSelected(item.ID) {
		s = s.Background(m.styles.selection)
	}
	if m.focusID != "" && m.focusID == item.ID {
		s = s.Foreground(m.styles.highlight).Bold(true)
	}
	if item.Disabled {
		s = s.Faint(true)
	}
	return s
}

func (m *Model) scrollbarVisible() bool {
	return m.opts.ShowScrollbar && m.opts.ScrollbarPosition != domain.ScrollbarHidden && m.opts.Width > 1
}

// scrollbar returns one glyph per row with a thumb proportional to the
// visible share of the content.
func (m *Model) scrollbar(h int) []string {
	out := make([]string, h)
	total := m.virt.TotalHeight()
	if total <= h {
		for i := range out {
			out[i] = m.styles.track.Render(scrollTrackChar)
		}
		return out
	}

	thumb := max(1, h*h/total)
	maxOffset := float64(total - h)
	pos := int(math.Round(m.scroll.Offset() / maxOffset * float64(h-thumb)))
	for i := range out {
		if i >= pos && i < pos+thumb {
			out[i] = m.styles.thumb.Render(scrollThumbChar)
		} else {
			out[i] = m.styles.track.Render(scrollTrackChar)
		}
	}
	return out
}
