package viewport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/loader"
	"github.com/mmcdole/vista/internal/scroll"
	"github.com/mmcdole/vista/internal/search"
)

// Options configures a viewport. Start from DefaultOptions; zero numeric
// fields fall back to their defaults, negative ones are rejected. MaxRetries
// and OverscanCount are taken as given, so zero disables them.
type Options struct {
	Width  int
	Height int

	Scrollable       bool
	VirtualScrolling bool
	LazyLoading      bool

	ShowScrollbar     bool
	ScrollbarPosition domain.ScrollbarPosition
	ScrollMode        domain.ScrollMode
	SelectionMode     domain.SelectionMode

	ItemHeight    int
	OverscanCount int
	CacheSize     int

	ScrollSensitivity      float64 // lines per wheel notch
	MomentumDecay          float64
	SmoothScrollDurationMs int

	SearchHighlightColor string
	SelectionColor       string
	HighlightColor       string

	// Lazy loading
	ChunkSize       int
	TotalCount      int // slots to reserve up front; 0 streams until a short chunk
	MaxRetries      int // 0 marks a chunk unavailable on its first failure
	RetryInitialMs  int
	RetryMultiplier float64
	LoadTimeoutMs   int

	// Not loadable from config.
	Renderer  domain.Renderer
	Matcher   search.Matcher
	Ease      scroll.EaseFunc
	Clock     scroll.Clock
	Scheduler loader.Scheduler
	Observer  domain.LoadObserver
	Logger    *slog.Logger
}

// DefaultOptions returns an 80x24 scrollable, virtualized viewport.
func DefaultOptions() Options {
	return Options{
		Width:                  80,
		Height:                 24,
		Scrollable:             true,
		VirtualScrolling:       true,
		ShowScrollbar:          true,
		ScrollbarPosition:      domain.ScrollbarRight,
		ScrollMode:             domain.ScrollInstant,
		SelectionMode:          domain.SelectionNone,
		ItemHeight:             domain.DefaultItemHeight,
		OverscanCount:          3,
		CacheSize:              200,
		ScrollSensitivity:      3,
		MomentumDecay:          scroll.DefaultMomentumDecay,
		SmoothScrollDurationMs: int(scroll.DefaultDuration / time.Millisecond),
		SearchHighlightColor:   "#E5A00D",
		SelectionColor:         "#374151",
		HighlightColor:         "#3B82F6",
		ChunkSize:              loader.DefaultChunkSize,
		MaxRetries:             loader.DefaultMaxRetries,
		RetryInitialMs:         int(loader.DefaultRetryInitial / time.Millisecond),
		RetryMultiplier:        loader.DefaultRetryMultiplier,
		LoadTimeoutMs:          int(loader.DefaultTimeout / time.Millisecond),
	}
}

// Validate reports the first malformed field, wrapping domain.ErrInvalidConfig.
func (o Options) Validate() error {
	if _, err := domain.ParseScrollbarPosition(string(o.ScrollbarPosition)); err != nil {
		return err
	}
	if _, err := domain.ParseScrollMode(string(o.ScrollMode)); err != nil {
		return err
	}
	if _, err := domain.ParseSelectionMode(string(o.SelectionMode)); err != nil {
		return err
	}

	ints := []struct {
		name string
		v    int
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"itemHeight", o.ItemHeight},
		{"overscanCount", o.OverscanCount},
		{"cacheSize", o.CacheSize},
		{"smoothScrollDurationMs", o.SmoothScrollDurationMs},
		{"chunkSize", o.ChunkSize},
		{"totalCount", o.TotalCount},
		{"maxRetries", o.MaxRetries},
		{"retryInitialMs", o.RetryInitialMs},
		{"loadTimeoutMs", o.LoadTimeoutMs},
	}
	for _, f := range ints {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %d)", domain.ErrInvalidConfig, f.name, f.v)
		}
	}

	if o.ScrollSensitivity < 0 {
		return fmt.Errorf("%w: scrollSensitivity must not be negative", domain.ErrInvalidConfig)
	}
	if o.MomentumDecay < 0 || o.MomentumDecay >= 1 {
		return fmt.Errorf("%w: momentumDecay must be in [0, 1) (got %g)", domain.ErrInvalidConfig, o.MomentumDecay)
	}
	if o.RetryMultiplier != 0 && o.RetryMultiplier < 1 {
		return fmt.Errorf("%w: retryMultiplier must be at least 1 (got %g)", domain.ErrInvalidConfig, o.RetryMultiplier)
	}
	return nil
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ScrollbarPosition == "" {
		o.ScrollbarPosition = d.ScrollbarPosition
	}
	if o.ScrollMode == "" {
		o.ScrollMode = d.ScrollMode
	}
	if o.SelectionMode == "" {
		o.SelectionMode = d.SelectionMode
	}
	if o.ItemHeight == 0 {
		o.ItemHeight = d.ItemHeight
	}
	if o.CacheSize == 0 {
		o.CacheSize = d.CacheSize
	}
	if o.ScrollSensitivity == 0 {
		o.ScrollSensitivity = d.ScrollSensitivity
	}
	if o.MomentumDecay == 0 {
		o.MomentumDecay = d.MomentumDecay
	}
	if o.SmoothScrollDurationMs == 0 {
		o.SmoothScrollDurationMs = d.SmoothScrollDurationMs
	}
	if o.SearchHighlightColor == "" {
		o.SearchHighlightColor = d.SearchHighlightColor
	}
	if o.SelectionColor == "" {
		o.SelectionColor = d.SelectionColor
	}
	if o.HighlightColor == "" {
		o.HighlightColor = d.HighlightColor
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.RetryInitialMs == 0 {
		o.RetryInitialMs = d.RetryInitialMs
	}
	if o.RetryMultiplier == 0 {
		o.RetryMultiplier = d.RetryMultiplier
	}
	if o.LoadTimeoutMs == 0 {
		o.LoadTimeoutMs = d.LoadTimeoutMs
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o Options) loaderConfig() loader.Config {
	return loader.Config{
		ChunkSize:       o.ChunkSize,
		MaxRetries:      o.MaxRetries,
		RetryInitial:    time.Duration(o.RetryInitialMs) * time.Millisecond,
		RetryMultiplier: o.RetryMultiplier,
		Timeout:         time.Duration(o.LoadTimeoutMs) * time.Millisecond,
	}
}

func (o Options) scrollConfig() scroll.Config {
	return scroll.Config{
		Mode:          o.ScrollMode,
		Duration:      time.Duration(o.SmoothScrollDurationMs) * time.Millisecond,
		Ease:          o.Ease,
		MomentumDecay: o.MomentumDecay,
		Sensitivity:   o.ScrollSensitivity,
	}
}
