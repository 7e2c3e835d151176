// Package virtual maps scroll offsets onto item index ranges.
//
// Heights come from a domain.HeightSource. A cumulative height table is
// rebuilt lazily whenever the source's version changes; when every item has
// the same height the table is skipped and all lookups are O(1).
package virtual

import (
	"math"
	"sort"

	"github.com/mmcdole/vista/internal/domain"
)

// Virtualizer computes the visible+overscan window over a height source.
type Virtualizer struct {
	src      domain.HeightSource
	overscan int

	built   bool
	version uint64
	count   int
	uniform int   // common height when all items match, else 0
	prefix  []int // prefix[i] = total height of items [0, i)
}

// New creates a virtualizer over src with overscan items on each side.
func New(src domain.HeightSource, overscan int) *Virtualizer {
	return &Virtualizer{src: src, overscan: max(overscan, 0)}
}

// SetOverscan changes the overscan count.
func (v *Virtualizer) SetOverscan(n int) {
	v.overscan = max(n, 0)
}

// Overscan returns the overscan count.
func (v *Virtualizer) Overscan() int {
	return v.overscan
}

// Invalidate forces a rebuild on next use.
func (v *Virtualizer) Invalidate() {
	v.built = false
}

func (v *Virtualizer) ensure() {
	n := v.src.Len()
	if v.built && v.version == v.src.Version() && v.count == n {
		return
	}

	v.count = n
	v.version = v.src.Version()
	v.built = true
	v.prefix = v.prefix[:0]
	v.uniform = 0
	if n == 0 {
		return
	}

	first := v.src.HeightAt(0)
	uniform := true
	for i := 1; i < n; i++ {
		if v.src.HeightAt(i) != first {
			uniform = false
			break
		}
	}
	if uniform && first > 0 {
		v.uniform = first
		return
	}

	if cap(v.prefix) < n+1 {
		v.prefix = make([]int, 0, n+1)
	}
	v.prefix = append(v.prefix, 0)
	total := 0
	for i := 0; i < n; i++ {
		total += max(v.src.HeightAt(i), 0)
		v.prefix = append(v.prefix, total)
	}
}

// Count returns the number of items.
func (v *Virtualizer) Count() int {
	v.ensure()
	return v.count
}

// TotalHeight returns the summed height of every item in lines.
func (v *Virtualizer) TotalHeight() int {
	v.ensure()
	if v.count == 0 {
		return 0
	}
	if v.uniform > 0 {
		return v.uniform * v.count
	}
	return v.prefix[v.count]
}

// MaxOffset returns the largest valid scroll offset for a viewport height.
func (v *Virtualizer) MaxOffset(viewportHeight int) float64 {
	return float64(max(0, v.TotalHeight()-max(viewportHeight, 0)))
}

// OffsetOf returns the first line of item i, clamped to [0, count].
func (v *Virtualizer) OffsetOf(i int) int {
	v.ensure()
	i = min(max(i, 0), v.count)
	if v.uniform > 0 {
		return i * v.uniform
	}
	if v.count == 0 {
		return 0
	}
	return v.prefix[i]
}

// HeightOf returns the height of item i.
func (v *Virtualizer) HeightOf(i int) int {
	v.ensure()
	if i < 0 || i >= v.count {
		return 0
	}
	if v.uniform > 0 {
		return v.uniform
	}
	return v.prefix[i+1] - v.prefix[i]
}

// IndexAt returns the item whose span contains line, or -1 when empty.
func (v *Virtualizer) IndexAt(line float64) int {
	v.ensure()
	if v.count == 0 {
		return -1
	}
	if line < 0 {
		return 0
	}
	if v.uniform > 0 {
		return min(int(line)/v.uniform, v.count-1)
	}
	i := sort.Search(v.count, func(i int) bool {
		return float64(v.prefix[i+1]) > line
	})
	return min(i, v.count-1)
}

// Range returns the half-open index range [start, end) that covers
// [offset, offset+viewportHeight) plus overscan items on each side.
// The offset is clamped to the valid scroll range first.
func (v *Virtualizer) Range(offset float64, viewportHeight int) (start, end int) {
	first, last := v.visible(offset, viewportHeight)
	if last < first {
		return 0, 0
	}
	start = max(0, first-v.overscan)
	end = min(v.count, last+1+v.overscan)
	return start, end
}

// VisibleRange is Range without overscan.
func (v *Virtualizer) VisibleRange(offset float64, viewportHeight int) (start, end int) {
	first, last := v.visible(offset, viewportHeight)
	if last < first {
		return 0, 0
	}
	return first, last + 1
}

// visible returns the inclusive index span intersecting the viewport, or
// (0, -1) when nothing is visible.
func (v *Virtualizer) visible(offset float64, viewportHeight int) (int, int) {
	v.ensure()
	if v.count == 0 || viewportHeight <= 0 {
		return 0, -1
	}

	if math.IsNaN(offset) || offset < 0 {
		offset = 0
	}
	offset = math.Min(offset, v.MaxOffset(viewportHeight))
	top := offset
	bottom := offset + float64(viewportHeight)

	var first, last int
	if v.uniform > 0 {
		h := float64(v.uniform)
		first = int(math.Floor(top / h))
		last = int(math.Ceil(bottom/h)) - 1
	} else {
		first = sort.Search(v.count, func(i int) bool {
			return float64(v.prefix[i+1]) > top
		})
		last = sort.Search(v.count, func(i int) bool {
			return float64(v.prefix[i]) >= bottom
		}) - 1
	}

	first = min(max(first, 0), v.count-1)
	last = min(max(last, first), v.count-1)
	return first, last
}
