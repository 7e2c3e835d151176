// Package selection tracks which item IDs are selected under a
// none/single/multiple policy.
package selection

import (
	"fmt"
	"sort"

	"github.com/mmcdole/vista/internal/domain"
)

// Items is the store view selection needs. *itemstore.Store satisfies it.
type Items interface {
	Get(id string) (domain.Item, bool)
	IndexOf(id string) (int, bool)
	Each(fn func(index int, item domain.Item) bool)
}

// Manager holds the selected set. Every mutator reports whether the set
// changed so the caller can fire exactly one change notification.
type Manager struct {
	mode     domain.SelectionMode
	items    Items
	selected map[string]struct{}
}

// New creates a manager over items.
func New(mode domain.SelectionMode, items Items) *Manager {
	if mode == "" {
		mode = domain.SelectionNone
	}
	return &Manager{mode: mode, items: items, selected: make(map[string]struct{})}
}

// Mode returns the selection policy.
func (m *Manager) Mode() domain.SelectionMode {
	return m.mode
}

// SetMode switches policy. Switching to none clears; switching to single
// keeps only the first selected item in display order.
func (m *Manager) SetMode(mode domain.SelectionMode) bool {
	if mode == m.mode {
		return false
	}
	m.mode = mode
	switch mode {
	case domain.SelectionNone:
		return m.Clear()
	case domain.SelectionSingle:
		if len(m.selected) <= 1 {
			return false
		}
		keep := m.Selected()[0]
		clear(m.selected)
		m.selected[keep] = struct{}{}
		return true
	}
	return false
}

// Select adds id. In single mode it replaces any prior selection in one step.
func (m *Manager) Select(id string) (bool, error) {
	if m.mode == domain.SelectionNone {
		return false, nil
	}
	item, ok := m.items.Get(id)
	if !ok {
		return false, fmt.Errorf("select %q: %w", id, domain.ErrItemNotFound)
	}
	if !item.IsSelectable() {
		return false, nil
	}

	if _, already := m.selected[id]; already {
		if m.mode == domain.SelectionSingle && len(m.selected) > 1 {
			clear(m.selected)
			m.selected[id] = struct{}{}
			return true, nil
		}
		return false, nil
	}
	if m.mode == domain.SelectionSingle {
		clear(m.selected)
	}
	m.selected[id] = struct{}{}
	return true, nil
}

// Deselect removes id.
func (m *Manager) Deselect(id string) bool {
	if _, ok := m.selected[id]; !ok {
		return false
	}
	delete(m.selected, id)
	return true
}

// Toggle flips id's membership.
func (m *Manager) Toggle(id string) (bool, error) {
	if m.mode == domain.SelectionNone {
		return false, nil
	}
	if m.IsSelected(id) {
		return m.Deselect(id), nil
	}
	return m.Select(id)
}

// SelectAll selects exactly the selectable loaded items. Multiple mode only.
func (m *Manager) SelectAll() bool {
	if m.mode != domain.SelectionMultiple {
		return false
	}
	next := make(map[string]struct{})
	m.items.Each(func(_ int, it domain.Item) bool {
		if it.IsSelectable() {
			next[it.ID] = struct{}{}
		}
		return true
	})
	if sameSet(next, m.selected) {
		return false
	}
	m.selected = next
	return true
}

// Clear empties the selection.
func (m *Manager) Clear() bool {
	if len(m.selected) == 0 {
		return false
	}
	clear(m.selected)
	return true
}

// Prune drops IDs that no longer reference a live item.
func (m *Manager) Prune() bool {
	changed := false
	for id := range m.selected {
		if _, ok := m.items.IndexOf(id); !ok {
			delete(m.selected, id)
			changed = true
		}
	}
	return changed
}

// IsSelected reports whether id is selected.
func (m *Manager) IsSelected(id string) bool {
	_, ok := m.selected[id]
	return ok
}

// Count returns the number of selected IDs.
func (m *Manager) Count() int {
	return len(m.selected)
}

// Selected returns the selected IDs in ascending display order.
func (m *Manager) Selected() []string {
	type entry struct {
		id    string
		index int
	}
	entries := make([]entry, 0, len(m.selected))
	for id := range m.selected {
		i, ok := m.items.IndexOf(id)
		if !ok {
			continue
		}
		entries = append(entries, entry{id, i})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].index < entries[b].index })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
