package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Amber      = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Viewport rows
var (
	RowStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	ScrollTrackStyle = lipgloss.NewStyle().
				Foreground(SlateLight)

	ScrollThumbStyle = lipgloss.NewStyle().
				Foreground(Amber)
)

// Status bar
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateDark)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Amber).
			Bold(true).
			Padding(0, 1)

	StatusValueStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateDark).
				Padding(0, 1)
)

// Search prompt
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(Amber)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress bar styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Background(SlateDark)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray).
				Background(SlateDark)
)

// Truncate shortens s to width display cells, ending in an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Pad right-pads s with spaces to width display cells.
func Pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RenderProgressBar renders a bar filled to percent of width.
func RenderProgressBar(percent float64, width int) string {
	if width < 3 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = min(max(filled, 0), width)

	return ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// StatusPart is one labelled segment of the status bar.
type StatusPart struct {
	Key   string
	Value string
}

// RenderStatusBar lays segments out left to right and fills the rest of
// width with the bar background. Segments that do not fit are dropped.
func RenderStatusBar(parts []StatusPart, width int) string {
	var b strings.Builder
	used := 0
	for _, p := range parts {
		seg := StatusKeyStyle.Render(p.Key) + StatusValueStyle.Render(p.Value)
		w := lipgloss.Width(seg)
		if used+w > width {
			break
		}
		b.WriteString(seg)
		used += w
	}
	if pad := width - used; pad > 0 {
		b.WriteString(StatusBarStyle.Render(strings.Repeat(" ", pad)))
	}
	return b.String()
}
