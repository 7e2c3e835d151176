// Package itemstore holds the ordered item collection behind a viewport.
//
// Slots are kept in display order with an id→index map that is rebuilt for
// the affected tail on every structural mutation, so lookups stay O(1).
// In lazy mode a slot may be unloaded (nil) until its chunk is merged. Each
// slot remembers its position in the backing source, so chunks land in the
// right slots after local inserts and removals shift them.
package itemstore

import (
	"fmt"
	"slices"
	"sort"

	"github.com/mmcdole/vista/internal/domain"
)

// Store is an ordered collection of items keyed by stable ID.
// Not safe for concurrent use; it is owned by a single viewport.
type Store struct {
	slots         []*domain.Item
	index         map[string]int
	defaultHeight int

	// src[i] is the source position backing slot i, -1 for local items.
	src       []int
	sourceLen int

	// version changes on anything that affects heights or order.
	version uint64
	// generation changes only when the whole dataset is replaced.
	generation uint64
}

// New creates an empty store. defaultHeight applies to items without a height
// and to unloaded slots.
func New(defaultHeight int) *Store {
	if defaultHeight <= 0 {
		defaultHeight = domain.DefaultItemHeight
	}
	return &Store{
		index:         make(map[string]int),
		defaultHeight: defaultHeight,
	}
}

// Len returns the number of slots, loaded or not.
func (s *Store) Len() int {
	return len(s.slots)
}

// LoadedCount returns the number of slots holding an item.
func (s *Store) LoadedCount() int {
	return len(s.index)
}

// Version implements domain.HeightSource.
func (s *Store) Version() uint64 {
	return s.version
}

// Generation identifies the current dataset. Results fetched for an older
// generation must be discarded.
func (s *Store) Generation() uint64 {
	return s.generation
}

// DefaultHeight returns the fallback item height.
func (s *Store) DefaultHeight() int {
	return s.defaultHeight
}

// HeightAt implements domain.HeightSource. Unloaded slots use the default.
func (s *Store) HeightAt(i int) int {
	if i < 0 || i >= len(s.slots) {
		return 0
	}
	if it := s.slots[i]; it != nil {
		return it.LineHeight(s.defaultHeight)
	}
	return s.defaultHeight
}

// SetItems replaces the dataset. On a duplicate ID the store is left untouched.
func (s *Store) SetItems(items []domain.Item) error {
	index := make(map[string]int, len(items))
	slots := make([]*domain.Item, len(items))
	for i := range items {
		if _, dup := index[items[i].ID]; dup {
			return fmt.Errorf("set items: %q: %w", items[i].ID, domain.ErrDuplicateID)
		}
		it := items[i]
		slots[i] = &it
		index[it.ID] = i
	}
	s.slots = slots
	s.index = index
	s.resetSources(len(items))
	s.generation++
	s.version++
	return nil
}

// Reset replaces the dataset with n unloaded slots.
func (s *Store) Reset(n int) {
	if n < 0 {
		n = 0
	}
	s.slots = make([]*domain.Item, n)
	s.index = make(map[string]int)
	s.resetSources(n)
	s.generation++
	s.version++
}

// Insert places item at index, shifting later slots down. index == Len appends.
func (s *Store) Insert(index int, item domain.Item) error {
	if index < 0 || index > len(s.slots) {
		return fmt.Errorf("insert at %d (len %d): %w", index, len(s.slots), domain.ErrInvalidIndex)
	}
	if _, dup := s.index[item.ID]; dup {
		return fmt.Errorf("insert %q: %w", item.ID, domain.ErrDuplicateID)
	}

	s.slots = append(s.slots, nil)
	copy(s.slots[index+1:], s.slots[index:])
	s.slots[index] = &item
	s.src = slices.Insert(s.src, index, -1)
	s.reindexFrom(index)
	s.version++
	return nil
}

// Append adds item at the end.
func (s *Store) Append(item domain.Item) error {
	return s.Insert(len(s.slots), item)
}

// Remove deletes the item with id and returns the index it occupied.
func (s *Store) Remove(id string) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return -1, fmt.Errorf("remove %q: %w", id, domain.ErrItemNotFound)
	}

	delete(s.index, id)
	copy(s.slots[i:], s.slots[i+1:])
	s.slots[len(s.slots)-1] = nil
	s.slots = s.slots[:len(s.slots)-1]
	s.src = slices.Delete(s.src, i, i+1)
	s.reindexFrom(i)
	s.version++
	return i, nil
}

// Replace swaps the stored item carrying the same ID.
func (s *Store) Replace(item domain.Item) error {
	i, ok := s.index[item.ID]
	if !ok {
		return fmt.Errorf("replace %q: %w", item.ID, domain.ErrItemNotFound)
	}
	if s.slots[i].LineHeight(s.defaultHeight) != item.LineHeight(s.defaultHeight) {
		s.version++
	}
	s.slots[i] = &item
	return nil
}

// SourceLen is one past the highest source position the store has slots
// for. Removing a slot does not shrink it.
func (s *Store) SourceLen() int {
	return s.sourceLen
}

// Pending returns the source position backing slot i when the slot is still
// unloaded.
func (s *Store) Pending(i int) (int, bool) {
	if i < 0 || i >= len(s.slots) || s.slots[i] != nil || s.src[i] < 0 {
		return 0, false
	}
	return s.src[i], true
}

// Fill merges items fetched from source positions [start, start+len) into
// the slots backed by those positions, growing the store when the range runs
// past SourceLen. Positions whose slot was removed locally are dropped. A
// slot that already holds a different item is overwritten. Items whose ID
// lives in another slot are skipped and reported through the returned error.
func (s *Store) Fill(start int, items []domain.Item) (int, error) {
	if start < 0 || start > s.sourceLen {
		return 0, fmt.Errorf("fill at %d (source len %d): %w", start, s.sourceLen, domain.ErrInvalidIndex)
	}
	if end := start + len(items); end > s.sourceLen {
		for p := s.sourceLen; p < end; p++ {
			s.slots = append(s.slots, nil)
			s.src = append(s.src, p)
		}
		s.sourceLen = end
		s.version++
	}

	filled := 0
	var firstErr error
	i := s.slotOf(start)
	for k := range items {
		p := start + k
		for i < len(s.slots) && s.src[i] < p {
			i++
		}
		if i == len(s.slots) || s.src[i] != p {
			continue
		}
		it := items[k]
		if at, dup := s.index[it.ID]; dup && at != i {
			if firstErr == nil {
				firstErr = fmt.Errorf("fill %q at %d: %w", it.ID, i, domain.ErrDuplicateID)
			}
			continue
		}
		if old := s.slots[i]; old != nil && old.ID != it.ID {
			delete(s.index, old.ID)
		}
		if s.HeightAt(i) != it.LineHeight(s.defaultHeight) {
			s.version++
		}
		s.slots[i] = &it
		s.index[it.ID] = i
		filled++
	}
	return filled, firstErr
}

// slotOf returns the first slot backed by a source position >= p.
func (s *Store) slotOf(p int) int {
	return sort.Search(len(s.src), func(i int) bool {
		// Local slots take the position of the nearest preceding source slot.
		for ; i >= 0; i-- {
			if s.src[i] >= 0 {
				return s.src[i] >= p
			}
		}
		return false
	})
}

// Get returns the item with id.
func (s *Store) Get(id string) (domain.Item, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Item{}, false
	}
	return *s.slots[i], true
}

// At returns the item in slot i; false when i is out of range or unloaded.
func (s *Store) At(i int) (domain.Item, bool) {
	if i < 0 || i >= len(s.slots) || s.slots[i] == nil {
		return domain.Item{}, false
	}
	return *s.slots[i], true
}

// IndexOf returns the slot index of id.
func (s *Store) IndexOf(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Loaded reports whether slot i holds an item.
func (s *Store) Loaded(i int) bool {
	return i >= 0 && i < len(s.slots) && s.slots[i] != nil
}

// Each calls fn for every loaded item in display order until fn returns false.
func (s *Store) Each(fn func(index int, item domain.Item) bool) {
	for i, it := range s.slots {
		if it == nil {
			continue
		}
		if !fn(i, *it) {
			return
		}
	}
}

// Items returns the loaded items in display order.
func (s *Store) Items() []domain.Item {
	out := make([]domain.Item, 0, len(s.index))
	s.Each(func(_ int, it domain.Item) bool {
		out = append(out, it)
		return true
	})
	return out
}

func (s *Store) resetSources(n int) {
	s.src = make([]int, n)
	for i := range s.src {
		s.src[i] = i
	}
	s.sourceLen = n
}

func (s *Store) reindexFrom(start int) {
	for i := start; i < len(s.slots); i++ {
		if it := s.slots[i]; it != nil {
			s.index[it.ID] = i
		}
	}
}
