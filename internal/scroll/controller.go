// Package scroll owns the viewport's scroll offset: clamping, smooth
// animation toward a target, and momentum glides.
package scroll

import (
	"math"
	"time"

	"github.com/mmcdole/vista/internal/domain"
)

// State of the controller.
type State int

const (
	Idle State = iota
	Scrolling
)

func (s State) String() string {
	if s == Scrolling {
		return "scrolling"
	}
	return "idle"
}

const (
	// FrameInterval is the tick rate while animating.
	FrameInterval = 16 * time.Millisecond

	DefaultDuration      = 150 * time.Millisecond
	DefaultMomentumDecay = 0.8
	DefaultSensitivity   = 1.0
	DefaultEpsilon       = 0.05
)

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

// Config tunes the controller.
type Config struct {
	Mode          domain.ScrollMode
	Duration      time.Duration
	Ease          EaseFunc
	MomentumDecay float64 // velocity multiplier per tick, in (0, 1)
	Sensitivity   float64 // lines per wheel unit
	Epsilon       float64 // momentum stops below this speed
}

// DefaultConfig returns instant scrolling with the default tuning.
func DefaultConfig() Config {
	return Config{
		Mode:          domain.ScrollInstant,
		Duration:      DefaultDuration,
		Ease:          EaseOut,
		MomentumDecay: DefaultMomentumDecay,
		Sensitivity:   DefaultSensitivity,
		Epsilon:       DefaultEpsilon,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.Duration <= 0 {
		c.Duration = d.Duration
	}
	if c.Ease == nil {
		c.Ease = d.Ease
	}
	if c.MomentumDecay <= 0 || c.MomentumDecay >= 1 {
		c.MomentumDecay = d.MomentumDecay
	}
	if c.Sensitivity <= 0 {
		c.Sensitivity = d.Sensitivity
	}
	if c.Epsilon <= 0 {
		c.Epsilon = d.Epsilon
	}
	return c
}

// Controller converts scroll intents into a clamped offset.
// Offset is always within [0, max].
type Controller struct {
	cfg Config
	now Clock

	offset   float64
	max      float64
	velocity float64

	target    *float64
	from      float64
	startedAt time.Time

	state State
}

// New creates a controller at offset 0. A nil clock uses time.Now.
func New(cfg Config, now Clock) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{cfg: cfg.withDefaults(), now: now}
}

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// SetMode changes the scroll mode.
func (c *Controller) SetMode(m domain.ScrollMode) {
	if m != "" {
		c.cfg.Mode = m
	}
}

// SetMax updates the upper bound and re-clamps.
func (c *Controller) SetMax(limit float64) {
	c.max = math.Max(0, limit)
	c.offset = c.clamp(c.offset)
	if c.target != nil {
		t := c.clamp(*c.target)
		c.target = &t
	}
}

// Max returns the upper bound.
func (c *Controller) Max() float64 { return c.max }

// Offset returns the exact offset.
func (c *Controller) Offset() float64 { return c.offset }

// Position returns the realized integer line.
func (c *Controller) Position() int { return int(math.Round(c.offset)) }

// Velocity returns the current momentum in lines per tick.
func (c *Controller) Velocity() float64 { return c.velocity }

// State returns Idle or Scrolling.
func (c *Controller) State() State { return c.state }

// Animating reports whether further ticks will move the offset.
func (c *Controller) Animating() bool { return c.state == Scrolling }

// Target returns the animation target, if any.
func (c *Controller) Target() (float64, bool) {
	if c.target == nil {
		return 0, false
	}
	return *c.target, true
}

// ScrollTo moves toward offset using the configured mode. Auto mode
// animates jumps longer than a line and steps single lines instantly.
func (c *Controller) ScrollTo(offset float64) {
	switch c.cfg.Mode {
	case domain.ScrollSmooth:
		c.AnimateTo(offset)
	case domain.ScrollAuto:
		if math.Abs(c.clamp(offset)-c.base()) > 1 {
			c.AnimateTo(offset)
		} else {
			c.Jump(offset)
		}
	default:
		c.Jump(offset)
	}
}

// ScrollBy moves delta lines from the current target, or from the offset
// when idle.
func (c *Controller) ScrollBy(delta float64) {
	c.ScrollTo(c.base() + delta)
}

// Jump sets the offset immediately and stops any motion.
func (c *Controller) Jump(offset float64) {
	c.Stop()
	c.offset = c.clamp(offset)
}

// AnimateTo starts an eased animation from the current offset.
func (c *Controller) AnimateTo(offset float64) {
	to := c.clamp(offset)
	c.velocity = 0
	if to == c.offset {
		c.Stop()
		return
	}
	c.from = c.offset
	c.target = &to
	c.startedAt = c.now()
	c.state = Scrolling
}

// Fling adds momentum from a wheel delta. Instant mode scrolls the delta
// directly. Otherwise the seeded velocity glides a total distance of
// roughly delta*sensitivity lines.
func (c *Controller) Fling(delta float64) {
	lines := delta * c.cfg.Sensitivity
	if c.cfg.Mode == domain.ScrollInstant {
		c.Jump(c.base() + lines)
		return
	}
	if c.target != nil {
		c.offset = *c.target
		c.target = nil
	}
	c.velocity += lines * (1 - c.cfg.MomentumDecay)
	if math.Abs(c.velocity) < c.cfg.Epsilon {
		c.velocity = 0
		return
	}
	c.state = Scrolling
}

// Stop halts animation and momentum where they are.
func (c *Controller) Stop() {
	c.target = nil
	c.velocity = 0
	c.state = Idle
}

// Tick advances one frame and reports whether the controller is still
// scrolling.
func (c *Controller) Tick() bool {
	if c.state != Scrolling {
		return false
	}

	if c.target != nil {
		to := *c.target
		elapsed := c.now().Sub(c.startedAt)
		t := float64(elapsed) / float64(c.cfg.Duration)
		if t >= 1 {
			c.offset = to
			c.Stop()
			return false
		}
		c.offset = c.clamp(c.from + (to-c.from)*c.cfg.Ease(math.Max(t, 0)))
		return true
	}

	next := c.offset + c.velocity
	c.offset = c.clamp(next)
	c.velocity *= c.cfg.MomentumDecay
	if next != c.offset || math.Abs(c.velocity) < c.cfg.Epsilon {
		c.Stop()
		return false
	}
	return true
}

func (c *Controller) base() float64 {
	if c.target != nil {
		return *c.target
	}
	return c.offset
}

func (c *Controller) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), c.max)
}
