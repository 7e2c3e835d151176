package loader

import "github.com/mmcdole/vista/internal/domain"

// ChunkLoadedMsg carries the result of one fetch back into Update.
type ChunkLoadedMsg struct {
	Loader     int // owning loader's ID
	Key        int
	Generation uint64
	Start      int
	Count      int
	Attempt    int
	Items      []domain.Item
	Err        error
}

// ChunkRetryMsg fires when a failed chunk's backoff delay has elapsed.
type ChunkRetryMsg struct {
	Loader     int
	Key        int
	Generation uint64
	Start      int
	Count      int
	Attempt    int
}
