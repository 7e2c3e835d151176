package tui

import "github.com/mmcdole/vista/internal/domain"

// Message types for the TUI

// LoadProgressMsg carries one chunk lifecycle update from the viewport's
// loader.
type LoadProgressMsg struct {
	Progress domain.LoadProgress
}

// ClearStatusMsg expires the status message with the same sequence number.
type ClearStatusMsg struct {
	Seq int
}
