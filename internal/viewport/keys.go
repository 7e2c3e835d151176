package viewport

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the viewport's key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	HalfUp    key.Binding
	HalfDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Activate  key.Binding
	Toggle    key.Binding
	SelectAll key.Binding
	Clear     key.Binding
}

// DefaultKeyMap returns the default viewport key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "half page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "activate"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Activate}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.HalfUp, k.HalfDown},
		{k.Top, k.Bottom},
		{k.Activate, k.Toggle, k.SelectAll, k.Clear},
	}
}

// keyAliases maps DOM-style key names onto Bubble Tea key strings.
var keyAliases = map[string]string{
	"ArrowUp":   "up",
	"ArrowDown": "down",
	"PageUp":    "pgup",
	"PageDown":  "pgdown",
	"Home":      "home",
	"End":       "end",
	"Enter":     "enter",
	"Return":    "enter",
	"Space":     " ",
	"space":     " ",
	"Spacebar":  " ",
	"Escape":    "esc",
	"Esc":       "esc",
}

// keyName is a key string that satisfies fmt.Stringer for key.Matches.
type keyName string

func (k keyName) String() string { return string(k) }

func normalizeKey(k string) keyName {
	if alias, ok := keyAliases[k]; ok {
		return keyName(alias)
	}
	return keyName(k)
}
