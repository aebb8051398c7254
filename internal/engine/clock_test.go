package engine

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/microcosm/internal/platform/logger"
)

func TestClockLayeredDispatch(t *testing.T) {
	c := NewClock(logger.New(io.Discard, "error", false), ClockConfig{
		TicksPerHour: 2,
		HoursPerDay:  2,
	})

	var ticks, hours, days []uint64
	c.OnTick(func(tick uint64) { ticks = append(ticks, tick) })
	c.OnHour(func(hour uint64) { hours = append(hours, hour) })
	c.OnDay(func(day uint64) { days = append(days, day) })

	for i := 0; i < 5; i++ {
		c.Step()
	}

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ticks)
	assert.Equal(t, []uint64{1, 2}, hours)
	assert.Equal(t, []uint64{1}, days)
	assert.Equal(t, uint64(5), c.Tick())
}

func TestClockLayerOrderWithinBoundaryTick(t *testing.T) {
	c := NewClock(logger.New(io.Discard, "error", false), ClockConfig{
		TicksPerHour: 1,
		HoursPerDay:  1,
	})

	var order []string
	c.OnTick(func(uint64) { order = append(order, "tick") })
	c.OnHour(func(uint64) { order = append(order, "hour") })
	c.OnDay(func(uint64) { order = append(order, "day") })

	c.Step()
	assert.Equal(t, []string{"tick", "hour", "day"}, order)
}
