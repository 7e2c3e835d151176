package domain

import "fmt"

// LoadState is the lifecycle of a lazily loaded chunk.
type LoadState int

const (
	LoadNotLoaded LoadState = iota
	LoadLoading
	LoadLoaded
	LoadError
)

func (s LoadState) String() string {
	switch s {
	case LoadLoading:
		return "loading"
	case LoadLoaded:
		return "loaded"
	case LoadError:
		return "error"
	default:
		return "not-loaded"
	}
}

// SelectionMode controls how many items may be selected at once.
type SelectionMode string

const (
	SelectionNone     SelectionMode = "none"
	SelectionSingle   SelectionMode = "single"
	SelectionMultiple SelectionMode = "multiple"
)

// ScrollMode controls whether offset changes animate.
type ScrollMode string

const (
	ScrollInstant ScrollMode = "instant"
	ScrollSmooth  ScrollMode = "smooth"
	ScrollAuto    ScrollMode = "auto"
)

// ScrollbarPosition places the scrollbar gutter.
type ScrollbarPosition string

const (
	ScrollbarLeft   ScrollbarPosition = "left"
	ScrollbarRight  ScrollbarPosition = "right"
	ScrollbarHidden ScrollbarPosition = "hidden"
)

// ParseSelectionMode validates a selection mode string.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch m := SelectionMode(s); m {
	case SelectionNone, SelectionSingle, SelectionMultiple:
		return m, nil
	case "":
		return SelectionNone, nil
	}
	return "", fmt.Errorf("%w: unknown selection mode %q", ErrInvalidConfig, s)
}

// ParseScrollMode validates a scroll mode string.
func ParseScrollMode(s string) (ScrollMode, error) {
	switch m := ScrollMode(s); m {
	case ScrollInstant, ScrollSmooth, ScrollAuto:
		return m, nil
	case "":
		return ScrollInstant, nil
	}
	return "", fmt.Errorf("%w: unknown scroll mode %q", ErrInvalidConfig, s)
}

// ParseScrollbarPosition validates a scrollbar position string.
func ParseScrollbarPosition(s string) (ScrollbarPosition, error) {
	switch p := ScrollbarPosition(s); p {
	case ScrollbarLeft, ScrollbarRight, ScrollbarHidden:
		return p, nil
	case "":
		return ScrollbarRight, nil
	}
	return "", fmt.Errorf("%w: unknown scrollbar position %q", ErrInvalidConfig, s)
}
