// Package loader fetches item chunks on demand through Bubble Tea commands.
//
// Each chunk moves through NotLoaded, Loading, Loaded or Error. Requests for a
// chunk that is already loading are coalesced. Failed fetches are retried with
// exponential backoff; results for an outdated store generation are dropped.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vista/internal/domain"
)

const (
	DefaultChunkSize       = 50
	DefaultMaxRetries      = 3
	DefaultRetryInitial    = 200 * time.Millisecond
	DefaultRetryMultiplier = 4.0
	DefaultTimeout         = 30 * time.Second
)

// Config tunes chunking and the retry schedule.
type Config struct {
	ChunkSize       int
	MaxRetries      int
	RetryInitial    time.Duration
	RetryMultiplier float64
	Timeout         time.Duration
}

// DefaultConfig retries three times at 200ms, 800ms and 3200ms.
func DefaultConfig() Config {
	return Config{
		ChunkSize:       DefaultChunkSize,
		MaxRetries:      DefaultMaxRetries,
		RetryInitial:    DefaultRetryInitial,
		RetryMultiplier: DefaultRetryMultiplier,
		Timeout:         DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = d.RetryInitial
	}
	if c.RetryMultiplier < 1 {
		c.RetryMultiplier = d.RetryMultiplier
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// Sink is where fetched items land. *itemstore.Store satisfies it.
// Chunks are addressed by source position; Pending maps a slot back to the
// source position it is waiting for.
type Sink interface {
	Len() int
	Generation() uint64
	Pending(slot int) (int, bool)
	Fill(start int, items []domain.Item) (int, error)
}

// Scheduler delivers msg after d. The default wraps tea.Tick.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// TickScheduler is the production Scheduler.
func TickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

type chunk struct {
	state      domain.LoadState
	generation uint64
	start      int
	count      int
	attempt    int
	final      bool // no retries left
	err        error
	backoff    *backoff.ExponentialBackOff
}

// Result summarises what a committed ChunkLoadedMsg changed.
type Result struct {
	Key    int
	Start  int
	Count  int
	State  domain.LoadState
	Filled int
	Stale  bool
	Err    error
}

// Loader tracks chunk state and turns fetches into tea.Cmds.
type Loader struct {
	id       int
	source   domain.Loader
	sink     Sink
	cfg      Config
	chunks   map[int]*chunk
	observer domain.LoadObserver
	schedule Scheduler
	logger   *slog.Logger
	atEnd    bool // a chunk came back short
}

// Option customises a Loader.
type Option func(*Loader)

// WithObserver reports chunk transitions to o.
func WithObserver(o domain.LoadObserver) Option {
	return func(l *Loader) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithScheduler replaces the retry timer.
func WithScheduler(s Scheduler) Option {
	return func(l *Loader) {
		if s != nil {
			l.schedule = s
		}
	}
}

// WithID tags this loader's messages so several loaders can share one
// Bubble Tea program.
func WithID(id int) Option {
	return func(l *Loader) {
		l.id = id
	}
}

// ID returns the loader's message tag.
func (l *Loader) ID() int {
	return l.id
}

// Owns reports whether msg was produced by this loader.
func (l *Loader) Owns(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case ChunkLoadedMsg:
		return msg.Loader == l.id
	case ChunkRetryMsg:
		return msg.Loader == l.id
	}
	return false
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader. A nil source disables fetching.
func New(source domain.Loader, sink Sink, cfg Config, opts ...Option) *Loader {
	l := &Loader{
		source:   source,
		sink:     sink,
		cfg:      cfg.withDefaults(),
		chunks:   make(map[int]*chunk),
		observer: domain.NoOpObserver{},
		schedule: TickScheduler,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetSource swaps the backing loader. Existing chunk state is kept.
func (l *Loader) SetSource(source domain.Loader) {
	l.source = source
}

// Enabled reports whether a source is configured.
func (l *Loader) Enabled() bool {
	return l.source != nil
}

// ChunkSize returns the configured chunk size.
func (l *Loader) ChunkSize() int {
	return l.cfg.ChunkSize
}

// KeyOf returns the chunk key for a source position.
func (l *Loader) KeyOf(pos int) int {
	return pos / l.cfg.ChunkSize
}

// Reset forgets every chunk. In-flight results are dropped by generation.
func (l *Loader) Reset() {
	clear(l.chunks)
	l.atEnd = false
}

// AtEnd reports whether a fetch has returned fewer items than requested,
// meaning the source has no more data past that chunk.
func (l *Loader) AtEnd() bool {
	return l.atEnd
}

// RequestChunk starts a fetch for [start, start+count). It returns nil when
// the chunk is already loading or loaded, or when no source is configured.
func (l *Loader) RequestChunk(start, count int) tea.Cmd {
	if l.source == nil || start < 0 || count <= 0 {
		return nil
	}
	key := l.KeyOf(start)
	if _, ok := l.chunks[key]; ok {
		// Loading, loaded, awaiting retry, or failed for good (see Retry).
		return nil
	}

	c := &chunk{
		state:      domain.LoadLoading,
		generation: l.sink.Generation(),
		start:      start,
		count:      count,
	}
	l.chunks[key] = c
	l.notify(key, c)
	l.logger.Debug("requesting chunk", "key", key, "start", start, "count", count)
	return l.fetch(key, c)
}

// EnsureRange requests every chunk backing an unloaded slot in [start, end).
func (l *Loader) EnsureRange(start, end int) tea.Cmd {
	if l.source == nil || end <= start {
		return nil
	}
	size := l.cfg.ChunkSize
	var cmds []tea.Cmd
	last := -1
	for i := max(start, 0); i < min(end, l.sink.Len()); i++ {
		pos, ok := l.sink.Pending(i)
		if !ok {
			continue
		}
		key := l.KeyOf(pos)
		if key == last {
			continue
		}
		last = key
		if cmd := l.RequestChunk(key*size, size); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Retry clears a persistent error on key and fetches it again.
func (l *Loader) Retry(key int) tea.Cmd {
	c, ok := l.chunks[key]
	if !ok || c.state != domain.LoadError || !c.final {
		return nil
	}
	delete(l.chunks, key)
	return l.RequestChunk(c.start, c.count)
}

// HandleLoaded commits a fetch result into the sink. On failure it returns
// the command that schedules the next retry, if any remain.
func (l *Loader) HandleLoaded(msg ChunkLoadedMsg) (Result, tea.Cmd) {
	res := Result{Key: msg.Key, Start: msg.Start, Count: msg.Count}
	c, ok := l.chunks[msg.Key]
	if msg.Loader != l.id || !ok || c.generation != msg.Generation || msg.Generation != l.sink.Generation() || c.state != domain.LoadLoading {
		l.logger.Debug("dropping stale chunk", "key", msg.Key, "generation", msg.Generation)
		res.Stale = true
		return res, nil
	}

	if msg.Err == nil {
		filled, err := l.sink.Fill(msg.Start, msg.Items)
		if err != nil {
			l.logger.Warn("chunk contained conflicting ids", "key", msg.Key, "error", err)
		}
		c.state = domain.LoadLoaded
		c.err = nil
		c.final = false
		if len(msg.Items) < msg.Count {
			l.atEnd = true
		}
		l.notify(msg.Key, c)
		l.logger.Debug("chunk loaded", "key", msg.Key, "items", len(msg.Items), "filled", filled)
		res.State = domain.LoadLoaded
		res.Filled = filled
		return res, nil
	}

	c.state = domain.LoadError
	c.attempt = msg.Attempt
	res.State = domain.LoadError
	if msg.Attempt >= l.cfg.MaxRetries {
		c.final = true
		c.err = fmt.Errorf("chunk %d after %d attempts: %w: %w", msg.Key, msg.Attempt+1, domain.ErrLoadFailed, msg.Err)
		res.Err = c.err
		l.notify(msg.Key, c)
		l.logger.Error("chunk load failed", "key", msg.Key, "error", msg.Err)
		return res, nil
	}

	c.err = msg.Err
	delay := l.nextDelay(c)
	l.notify(msg.Key, c)
	l.logger.Warn("chunk load failed, retrying", "key", msg.Key, "attempt", msg.Attempt+1, "delay", delay, "error", msg.Err)
	return res, l.schedule(delay, ChunkRetryMsg{
		Loader:     l.id,
		Key:        msg.Key,
		Generation: msg.Generation,
		Start:      msg.Start,
		Count:      msg.Count,
		Attempt:    msg.Attempt + 1,
	})
}

// HandleRetry re-issues the fetch for a chunk whose backoff elapsed.
func (l *Loader) HandleRetry(msg ChunkRetryMsg) tea.Cmd {
	c, ok := l.chunks[msg.Key]
	if msg.Loader != l.id || !ok || c.generation != msg.Generation || msg.Generation != l.sink.Generation() {
		return nil
	}
	if c.state != domain.LoadError || c.final {
		return nil
	}
	c.state = domain.LoadLoading
	c.attempt = msg.Attempt
	l.notify(msg.Key, c)
	return l.fetch(msg.Key, c)
}

// ChunkState returns the state of a chunk key.
func (l *Loader) ChunkState(key int) domain.LoadState {
	if c, ok := l.chunks[key]; ok {
		return c.state
	}
	return domain.LoadNotLoaded
}

// ChunkError returns the persistent error for key, if any.
func (l *Loader) ChunkError(key int) error {
	if c, ok := l.chunks[key]; ok && c.final {
		return c.err
	}
	return nil
}

// Unavailable reports whether source position pos lies in a chunk that
// exhausted its retries.
func (l *Loader) Unavailable(pos int) bool {
	c, ok := l.chunks[l.KeyOf(pos)]
	return ok && c.state == domain.LoadError && c.final
}

// LoadStates returns a copy of every tracked chunk's state.
func (l *Loader) LoadStates() map[int]domain.LoadState {
	out := make(map[int]domain.LoadState, len(l.chunks))
	for k, c := range l.chunks {
		out[k] = c.state
	}
	return out
}

// PendingChunks returns the keys currently loading or awaiting retry, ascending.
func (l *Loader) PendingChunks() []int {
	var keys []int
	for k, c := range l.chunks {
		if c.state == domain.LoadLoading || (c.state == domain.LoadError && !c.final) {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

func (l *Loader) fetch(key int, c *chunk) tea.Cmd {
	source := l.source
	id := l.id
	timeout := l.cfg.Timeout
	gen, start, count, attempt := c.generation, c.start, c.count, c.attempt
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		items, err := source.Load(ctx, start, count)
		return ChunkLoadedMsg{
			Loader:     id,
			Key:        key,
			Generation: gen,
			Start:      start,
			Count:      count,
			Attempt:    attempt,
			Items:      items,
			Err:        err,
		}
	}
}

func (l *Loader) nextDelay(c *chunk) time.Duration {
	if c.backoff == nil {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = l.cfg.RetryInitial
		b.Multiplier = l.cfg.RetryMultiplier
		b.RandomizationFactor = 0
		ceiling := float64(l.cfg.RetryInitial) * math.Pow(l.cfg.RetryMultiplier, float64(max(l.cfg.MaxRetries-1, 0)))
		b.MaxInterval = time.Duration(min(ceiling, float64(time.Hour)))
		b.Reset()
		c.backoff = b
	}
	return c.backoff.NextBackOff()
}

func (l *Loader) notify(key int, c *chunk) {
	p := domain.LoadProgress{
		ChunkKey: key,
		Start:    c.start,
		Count:    c.count,
		State:    c.state,
		Attempt:  c.attempt,
		Error:    c.err,
	}
	l.observer.OnProgress(p)
}
