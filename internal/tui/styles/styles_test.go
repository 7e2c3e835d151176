package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello w…"},
		{"zero", "hello", 0, ""},
		{"wide runes", "日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, lipgloss.Width(got), max(tt.width, 0))
		})
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", Pad("ab", 5))
	assert.Equal(t, "abcdef", Pad("abcdef", 3))
}

func TestRenderStatusBarFillsWidth(t *testing.T) {
	bar := RenderStatusBar([]StatusPart{{Key: "pos", Value: "1/10"}, {Key: "sel", Value: "0"}}, 60)
	assert.Equal(t, 60, lipgloss.Width(bar))
	assert.Contains(t, bar, "1/10")

	narrow := RenderStatusBar([]StatusPart{{Key: "pos", Value: "1/10"}, {Key: "sel", Value: "0"}}, 12)
	assert.Equal(t, 12, lipgloss.Width(narrow))
	assert.NotContains(t, narrow, "sel")
}

func TestRenderProgressBar(t *testing.T) {
	assert.Empty(t, RenderProgressBar(50, 2))
	assert.Equal(t, 10, lipgloss.Width(RenderProgressBar(50, 10)))
	assert.Equal(t, 10, lipgloss.Width(RenderProgressBar(150, 10)))
}
