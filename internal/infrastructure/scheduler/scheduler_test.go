package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilNextHour(t *testing.T) {
	t.Parallel()

	at := func(min, sec int) time.Time {
		return time.Date(2024, time.March, 15, 10, min, sec, 0, time.UTC)
	}

	assert.Equal(t, 30*time.Minute, untilNextHour(at(30, 0)))
	assert.Equal(t, time.Second, untilNextHour(at(59, 59)))

	// Exactly on the boundary waits a full hour, never zero.
	assert.Equal(t, time.Hour, untilNextHour(at(0, 0)))
}

func TestIntervalTicksUntilStopped(t *testing.T) {
	t.Parallel()

	var fired atomic.Int64
	s := NewInterval(time.Millisecond)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		fired.Add(1)
	}))

	assert.Eventually(t, func() bool { return fired.Load() >= 3 },
		time.Second, time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))

	// Let any in-flight tick drain, then confirm the loop is dead.
	time.Sleep(10 * time.Millisecond)
	after := fired.Load()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, after, fired.Load())
}

func TestIntervalStopIsIdempotentAndConcurrent(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Millisecond)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Stop(context.Background()))
		}()
	}
	wg.Wait()

	// The driver is reusable after a full stop.
	var fired atomic.Int64
	require.NoError(t, s.Start(context.Background(), func(time.Time) { fired.Add(1) }))
	assert.Eventually(t, func() bool { return fired.Load() >= 1 },
		time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestIntervalStopRacesContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewInterval(time.Millisecond)
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cancel()
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Stop(context.Background()))
	}()
	wg.Wait()
}

func TestIntervalStartWithoutJobIsNoop(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Millisecond)
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Stop(context.Background()))
}

func TestHourlyAlignsFirstRun(t *testing.T) {
	t.Parallel()

	s := NewHourly()
	assert.True(t, s.alignHour)
	assert.Equal(t, time.Hour, s.interval)

	// Stopping during the alignment delay exits the goroutine before any run.
	var fired atomic.Int64
	require.NoError(t, s.Start(context.Background(), func(time.Time) { fired.Add(1) }))
	require.NoError(t, s.Stop(context.Background()))

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int64(0), fired.Load())
}

func TestCronSchedulerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not a cron spec", time.UTC)
	err := s.Start(context.Background(), func(time.Time) {})
	assert.Error(t, err)
}

func TestCronSchedulerStartStop(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("*/30 * * * *", time.UTC)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))

	// A second Start against a running scheduler is a no-op.
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestCronSchedulerStopRacesContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("*/30 * * * *", time.UTC)
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	// Cancellation triggers the watcher goroutine's Stop while the shutdown
	// path calls Stop directly.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cancel()
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Stop(context.Background()))
	}()
	wg.Wait()
}
