package counter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// fakeClock is a settable clock safe for use from the tick goroutine.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"at epoch", testEpoch, 0},
		{"sub second", testEpoch.Add(999 * time.Millisecond), 0},
		{"one second", testEpoch.Add(time.Second), 1},
		{"one day", testEpoch.Add(24 * time.Hour), 86400},
		{"fractional", testEpoch.Add(90*time.Minute + 1500*time.Millisecond), 5401},
		{"before epoch", testEpoch.Add(-500 * time.Millisecond), -1},
		{"whole seconds before epoch", testEpoch.Add(-3 * time.Second), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Elapsed(testEpoch, tt.now))
		})
	}
}

func TestElapsedIgnoresZoneOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := testEpoch.Add(42 * time.Second).In(loc)
	require.Equal(t, int64(42), Elapsed(testEpoch, now))
}

func TestElapsedNonDecreasing(t *testing.T) {
	var prev int64
	for ms := 0; ms < 10_000; ms += 137 {
		v := Elapsed(testEpoch, testEpoch.Add(time.Duration(ms)*time.Millisecond))
		require.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{100000000, "100,000,000"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Format(tt.in), "Format(%d)", tt.in)
	}
}

func TestStartPublishesImmediately(t *testing.T) {
	clock := &fakeClock{now: testEpoch.Add(10 * time.Second)}
	c := New(testEpoch, WithClock(clock.Now), WithPeriod(time.Hour))
	defer c.Stop()

	var got atomic.Int64
	got.Store(-1)
	c.Subscribe(func(v int64) { got.Store(v) })

	clock.Set(testEpoch.Add(12 * time.Second))
	c.Start(context.Background())

	require.Equal(t, int64(12), got.Load())
	require.Equal(t, int64(12), c.Value())
	require.True(t, c.Running())
}

func TestTicksRecomputeFromEpoch(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	c := New(testEpoch, WithClock(clock.Now), WithPeriod(5*time.Millisecond))

	values := make(chan int64, 64)
	c.Subscribe(func(v int64) {
		select {
		case values <- v:
		default:
		}
	})
	c.Start(context.Background())
	require.Equal(t, int64(0), <-values)

	// A jump in wall-clock time shows up on the next tick, not as +1.
	clock.Set(testEpoch.Add(time.Hour))
	require.Eventually(t, func() bool { return c.Value() == 3600 }, time.Second, 5*time.Millisecond)

	c.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	c := New(testEpoch)
	c.Stop()
	c.Stop()

	c.Start(context.Background())
	c.Stop()
	c.Stop()
	require.False(t, c.Running())
}

func TestNoPublishAfterStop(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	c := New(testEpoch, WithClock(clock.Now), WithPeriod(time.Millisecond))

	var calls atomic.Int64
	c.Subscribe(func(int64) { calls.Add(1) })
	c.Start(context.Background())
	c.Stop()

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, after, calls.Load())
}

func TestSubscriberCancelStopsLoop(t *testing.T) {
	c := New(testEpoch, WithPeriod(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	c.Subscribe(func(int64) {
		if calls.Add(1) == 3 {
			cancel()
		}
	})
	c.Start(ctx)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int64(3), calls.Load())

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the loop exited")
	}
	require.False(t, c.Running())
}

func TestStartTwiceKeepsOneLoop(t *testing.T) {
	c := New(testEpoch, WithPeriod(time.Hour))
	defer c.Stop()

	var calls atomic.Int64
	c.Subscribe(func(int64) { calls.Add(1) })
	c.Start(context.Background())
	c.Start(context.Background())

	require.Equal(t, int64(1), calls.Load())
}

func TestUnsubscribe(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	c := New(testEpoch, WithClock(clock.Now), WithPeriod(time.Hour))

	var calls atomic.Int64
	cancel := c.Subscribe(func(int64) { calls.Add(1) })
	cancel()
	cancel()

	c.Start(context.Background())
	defer c.Stop()
	require.Zero(t, calls.Load())
}

func TestContextCancelStopsTicks(t *testing.T) {
	clock := &fakeClock{now: testEpoch}
	c := New(testEpoch, WithClock(clock.Now), WithPeriod(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()
	time.Sleep(10 * time.Millisecond)

	clock.Set(testEpoch.Add(time.Minute))
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int64(0), c.Value())
	c.Stop()
}
