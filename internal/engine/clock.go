package engine

import (
	"context"
	"time"

	"github.com/talgya/microcosm/internal/platform/logger"
)

// Clock layers callbacks over a real-time tick interval: every tick,
// every simulated hour, every simulated day. Callbacks run in layer
// order on the clock's goroutine, so hour and day work never overlaps a
// tick in flight.
type Clock struct {
	log *logger.Logger

	interval     time.Duration
	ticksPerHour uint64
	hoursPerDay  uint64

	tick uint64

	tickFns []func(tick uint64)
	hourFns []func(hour uint64)
	dayFns  []func(day uint64)
}

// ClockConfig sets the clock's cadence. Zero values get defaults: 500ms
// ticks, 120 ticks per hour, 24 hours per day.
type ClockConfig struct {
	Interval     time.Duration
	TicksPerHour uint64
	HoursPerDay  uint64
}

// NewClock creates a stopped clock.
func NewClock(log *logger.Logger, cfg ClockConfig) *Clock {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.TicksPerHour == 0 {
		cfg.TicksPerHour = 120
	}
	if cfg.HoursPerDay == 0 {
		cfg.HoursPerDay = 24
	}
	return &Clock{
		log:          log,
		interval:     cfg.Interval,
		ticksPerHour: cfg.TicksPerHour,
		hoursPerDay:  cfg.HoursPerDay,
	}
}

// OnTick registers a per-tick callback. Register before Run.
func (c *Clock) OnTick(fn func(tick uint64)) { c.tickFns = append(c.tickFns, fn) }

// OnHour registers a per-simulated-hour callback. Register before Run.
func (c *Clock) OnHour(fn func(hour uint64)) { c.hourFns = append(c.hourFns, fn) }

// OnDay registers a per-simulated-day callback. Register before Run.
func (c *Clock) OnDay(fn func(day uint64)) { c.dayFns = append(c.dayFns, fn) }

// Tick returns the last tick number the clock dispatched.
func (c *Clock) Tick() uint64 { return c.tick }

// Run drives the schedule until the context is canceled. Blocking; call
// from the goroutine that should own all world mutation.
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Info().
		Dur("interval", c.interval).
		Uint64("ticks_per_hour", c.ticksPerHour).
		Uint64("hours_per_day", c.hoursPerDay).
		Msg("clock started")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Uint64("tick", c.tick).Msg("clock stopped")
			return ctx.Err()
		case <-ticker.C:
			c.tick++
			c.dispatch()
		}
	}
}

// Step advances the clock one tick synchronously, for tooling and tests
// that drive time by hand.
func (c *Clock) Step() {
	c.tick++
	c.dispatch()
}

func (c *Clock) dispatch() {
	for _, fn := range c.tickFns {
		fn(c.tick)
	}
	if c.tick%c.ticksPerHour == 0 {
		hour := c.tick / c.ticksPerHour
		for _, fn := range c.hourFns {
			fn(hour)
		}
		if hour%c.hoursPerDay == 0 {
			day := hour / c.hoursPerDay
			for _, fn := range c.dayFns {
				fn(day)
			}
		}
	}
}
