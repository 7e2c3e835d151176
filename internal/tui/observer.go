package tui

import "github.com/mmcdole/vista/internal/domain"

// ChannelObserver adapts domain.LoadObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.LoadProgress
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.LoadProgress) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnProgress sends progress to the channel (non-blocking if full).
func (o *ChannelObserver) OnProgress(progress domain.LoadProgress) {
	select {
	case o.ch <- progress:
	default: // Non-blocking if channel full
	}
}
