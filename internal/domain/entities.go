package domain

// DefaultItemHeight is the height of an item that does not declare one.
const DefaultItemHeight = 1

// Item is a single row-group in a viewport.
// Content is immutable once the item is stored; updates replace the item.
type Item struct {
	ID       string            // Unique, stable identifier
	Content  string            // Renderable text (may contain newlines)
	Height   int               // Lines occupied; 0 means the viewport default
	Disabled bool              // Disabled items cannot be selected
	Metadata map[string]string // Free-form host data, never interpreted
}

// IsSelectable reports whether the item may join a selection.
func (i Item) IsSelectable() bool {
	return !i.Disabled
}

// LineHeight returns the item's height, substituting fallback when unset.
func (i Item) LineHeight(fallback int) int {
	if i.Height > 0 {
		return i.Height
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultItemHeight
}

// Rendering is the cached, width-specific representation of an item.
type Rendering struct {
	Lines []string
	Width int
}
