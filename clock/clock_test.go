package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/clock"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
)

func TestClock(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 0, Total: 10, Interval: 0.5})
	assert.Equal(t, int32(0), c.InternalStep)
	assert.InDelta(t, 0.0, c.T, 1e-9)
	assert.False(t, c.Done())

	// test: tick advances step and time
	c.Tick()
	assert.Equal(t, int32(1), c.InternalStep)
	assert.InDelta(t, 0.5, c.T, 1e-9)

	for !c.Done() {
		c.Tick()
	}
	assert.Equal(t, int32(10), c.InternalStep)
	assert.InDelta(t, 5.0, c.T, 1e-9)

	// test: init resets to the start step
	c.Init()
	assert.Equal(t, int32(0), c.InternalStep)
	assert.False(t, c.Done())
}

func TestClockFormat(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 9000, Total: 10, Interval: 1.0})
	assert.Equal(t, "02:30:00", c.String())
	hour, minute, second := c.GetHourMinuteSecond()
	assert.Equal(t, 2, hour)
	assert.Equal(t, 30, minute)
	assert.InDelta(t, 0.0, second, 1e-9)
}
