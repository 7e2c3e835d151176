package tui

// ChromeHeight is the status line plus the prompt/help line.
const ChromeHeight = 2

// contentHeight is the number of rows left for the viewport.
func (m *Model) contentHeight() int {
	if !m.showStatus {
		return max(m.Height-1, 0)
	}
	return max(m.Height-ChromeHeight, 0)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	m.vp.SetSize(m.Width, m.contentHeight())
	m.prompt.SetWidth(m.Width)
}
