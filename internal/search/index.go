// Package search keeps the ordered match list and result cursor for a
// viewport query.
package search

import (
	"slices"
)

// Index holds the active query, its ascending match positions and a cursor
// into them. The cursor is -1 until the first Next or Previous.
type Index struct {
	matcher Matcher
	query   string
	matches []int
	set     map[int]struct{}
	cursor  int
}

// NewIndex creates an index. A nil matcher means SubstringMatcher.
func NewIndex(m Matcher) *Index {
	if m == nil {
		m = SubstringMatcher{}
	}
	return &Index{matcher: m, cursor: -1, set: make(map[int]struct{})}
}

// SetMatcher swaps the matcher. The current results are kept until the
// next Search.
func (x *Index) SetMatcher(m Matcher) {
	if m == nil {
		m = SubstringMatcher{}
	}
	x.matcher = m
}

// Search replaces all match state with the results for query.
// An empty query clears the index.
func (x *Index) Search(query string, corpus Corpus) []int {
	if query == "" {
		x.Clear()
		return nil
	}
	return x.SetResults(query, x.matcher.Match(query, corpus), corpus.Len())
}

// SetResults installs externally computed matches for query. Indices are
// sorted, deduplicated and dropped when outside [0, n).
func (x *Index) SetResults(query string, indices []int, n int) []int {
	if query == "" {
		x.Clear()
		return nil
	}
	x.query = query
	x.matches = Normalize(indices, n)
	x.cursor = -1
	clear(x.set)
	for _, i := range x.matches {
		x.set[i] = struct{}{}
	}
	return x.Matches()
}

// Refresh re-runs the active query against corpus, keeping the cursor on
// the same position when it still matches.
func (x *Index) Refresh(corpus Corpus) {
	if x.query == "" {
		return
	}
	current, had := x.Current()
	x.Search(x.query, corpus)
	if had {
		x.Seek(current)
	}
}

// Seek moves the cursor onto pos if pos is a match.
func (x *Index) Seek(pos int) bool {
	k, ok := slices.BinarySearch(x.matches, pos)
	if ok {
		x.cursor = k
	}
	return ok
}

// Clear drops the query and all matches.
func (x *Index) Clear() {
	x.query = ""
	x.matches = nil
	x.cursor = -1
	clear(x.set)
}

// Next advances the cursor, wrapping from the last match to the first.
func (x *Index) Next() (int, bool) {
	if len(x.matches) == 0 {
		return 0, false
	}
	x.cursor = (x.cursor + 1) % len(x.matches)
	return x.matches[x.cursor], true
}

// Previous moves the cursor back, wrapping from the first match to the
// last. From the initial -1 it lands on the last match.
func (x *Index) Previous() (int, bool) {
	if len(x.matches) == 0 {
		return 0, false
	}
	if x.cursor <= 0 {
		x.cursor = len(x.matches) - 1
	} else {
		x.cursor--
	}
	return x.matches[x.cursor], true
}

// Current returns the position under the cursor.
func (x *Index) Current() (int, bool) {
	if x.cursor < 0 || x.cursor >= len(x.matches) {
		return 0, false
	}
	return x.matches[x.cursor], true
}

// Cursor returns the cursor, -1 when unset.
func (x *Index) Cursor() int { return x.cursor }

// Query returns the active query.
func (x *Index) Query() string { return x.query }

// Active reports whether a query is set.
func (x *Index) Active() bool { return x.query != "" }

// Len returns the number of matches.
func (x *Index) Len() int { return len(x.matches) }

// Matches returns a copy of the ascending match positions.
func (x *Index) Matches() []int {
	return slices.Clone(x.matches)
}

// IsMatch reports whether position i matched the active query.
func (x *Index) IsMatch(i int) bool {
	_, ok := x.set[i]
	return ok
}

// Normalize sorts indices ascending, removes duplicates and drops values
// outside [0, n).
func Normalize(indices []int, n int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
