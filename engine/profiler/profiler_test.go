package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTickReportsAfterInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(zap.New(core), WithInterval(time.Second), WithClock(clock.now))

	for i := 0; i < 9; i++ {
		clock.t = clock.t.Add(100 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.t = clock.t.Add(100 * time.Millisecond)
	assert.True(t, p.Tick())

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "profiler", entries[0].LoggerName)
	assert.InDelta(t, 10.0, entries[0].ContextMap()["fps"], 1e-9)
}

func TestTickResetsWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(nil, WithClock(clock.now))

	clock.t = clock.t.Add(2 * time.Second)
	require.True(t, p.Tick())

	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(nil, WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
