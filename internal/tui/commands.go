package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vista/internal/domain"
)

const statusTTL = 3 * time.Second

// listenForProgress returns a command that reads the next update from the
// progress channel.
func listenForProgress(ch <-chan domain.LoadProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return LoadProgressMsg{Progress: p}
	}
}

// clearStatusAfter expires status message seq after d.
func clearStatusAfter(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
