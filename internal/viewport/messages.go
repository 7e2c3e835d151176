package viewport

// ScrollTickMsg advances smooth scrolling and momentum by one frame.
type ScrollTickMsg struct {
	ID int
}
