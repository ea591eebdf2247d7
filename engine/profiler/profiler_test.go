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

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestProfiler_Tick(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewProfiler(WithLogger(zap.New(core)), WithClock(clock.now), WithInterval(time.Second))

	for range 59 {
		clock.t = clock.t.Add(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, logs.Len())

	clock.t = time.Unix(2, 0)
	require.True(t, p.Tick())

	assert.InDelta(t, 30, p.Last().FPS, 1e-9)
	assert.Positive(t, p.Last().SysMB)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	for _, key := range []string{"fps", "heap_mb", "alloc_rate_mb", "gc", "sys_mb"} {
		assert.Contains(t, fields, key)
	}

	clock.t = clock.t.Add(100 * time.Millisecond)
	assert.False(t, p.Tick())
}
