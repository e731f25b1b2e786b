package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for range 39 {
		clock.t = clock.t.Add(25 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.Last().FPS)

	clock.t = clock.t.Add(25 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 40, p.Last().FPS, 0.01)
}

func TestCountDrawsAveragesPerFrame(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	p.CountDraws(2, 100)
	assert.False(t, p.Tick())
	p.CountDraws(4, 300)
	clock.t = clock.t.Add(time.Second)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.Equal(t, float64(3), s.DrawCalls)
	assert.Equal(t, float64(200), s.Sprites)
	assert.InDelta(t, 2, s.FPS, 0.01)

	clock.t = clock.t.Add(time.Second)
	assert.True(t, p.Tick())
	assert.Zero(t, p.Last().DrawCalls)
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
