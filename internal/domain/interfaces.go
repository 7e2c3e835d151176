package domain

import "context"

// Loader fetches a contiguous range of items for lazy loading.
// Implementations may block; they are only ever called from tea.Cmd functions.
// The returned slice may be shorter than count at the end of the dataset.
type Loader interface {
	Load(ctx context.Context, start, count int) ([]Item, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, start, count int) ([]Item, error)

// Load calls f(ctx, start, count).
func (f LoaderFunc) Load(ctx context.Context, start, count int) ([]Item, error) {
	return f(ctx, start, count)
}

// Renderer turns an item into display lines at the given width.
// It must return exactly height lines; the viewport pads or truncates otherwise.
type Renderer func(item Item, width, height int) []string

// HeightSource is the read-only view the virtualizer needs.
type HeightSource interface {
	Len() int
	HeightAt(index int) int
	Version() uint64
}
