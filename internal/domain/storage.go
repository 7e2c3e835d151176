package domain

// LoadProgress reports the outcome of a single chunk fetch.
type LoadProgress struct {
	ChunkKey int
	Start    int
	Count    int
	State    LoadState
	Attempt  int
	Error    error
}

// LoadObserver receives chunk lifecycle updates.
type LoadObserver interface {
	OnProgress(progress LoadProgress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(LoadProgress) {}
