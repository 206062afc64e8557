// Package counter reports whole seconds elapsed since a fixed epoch and
// republishes the value on a fixed cadence.
package counter

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultEpoch is the start of the coding journey shown on the home page.
var DefaultEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)

// DefaultPeriod is how often a running Counter republishes.
const DefaultPeriod = time.Second

// Elapsed returns floor((now - epoch) / 1s). The result is negative when now
// is before epoch.
func Elapsed(epoch, now time.Time) int64 {
	d := now.Round(0).Sub(epoch)
	secs := int64(d / time.Second)
	if d < 0 && d%time.Second != 0 {
		secs--
	}
	return secs
}

// Format groups digits in threes from the right: 1234567 -> "1,234,567".
func Format(n int64) string {
	return humanize.Comma(n)
}

// Option configures a Counter.
type Option func(*Counter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Counter) { c.now = now }
}

// WithPeriod sets the tick period.
func WithPeriod(d time.Duration) Option {
	return func(c *Counter) {
		if d > 0 {
			c.period = d
		}
	}
}

// Counter publishes Elapsed(epoch, now) to its subscribers once per period.
type Counter struct {
	epoch  time.Time
	now    func() time.Time
	period time.Duration

	mu      sync.Mutex
	value   int64
	subs    map[int]func(int64)
	nextSub int
	cancel  context.CancelFunc
	done    chan struct{}
	gen     int
}

// New creates a stopped counter. Call Start to begin publishing.
func New(epoch time.Time, opts ...Option) *Counter {
	c := &Counter{
		epoch:  epoch,
		now:    time.Now,
		period: DefaultPeriod,
		subs:   make(map[int]func(int64)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.value = Elapsed(c.epoch, c.now())
	return c
}

// Epoch returns the reference time.
func (c *Counter) Epoch() time.Time { return c.epoch }

// Value returns the most recently published value, or the value computed at
// construction if the counter was never started.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Subscribe registers fn for every publish. The returned func removes it and
// is safe to call more than once.
func (c *Counter) Subscribe(fn func(int64)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Start publishes an initial value immediately and then once per period
// until ctx is done or Stop is called. Subscribers may cancel ctx to stop
// the counter from inside a callback. Starting a running counter does
// nothing.
func (c *Counter) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.gen++
	gen := c.gen
	done := c.done
	c.mu.Unlock()

	c.tick(gen)
	go c.run(ctx, gen, done)
}

// Stop cancels the recurring tick and waits for the loop to exit. It is safe
// to call on a counter that was never started or is already stopped.
//
// Subscribers run on the loop goroutine, so a subscriber must not call Stop:
// the wait would never finish. Cancel the context passed to Start instead.
func (c *Counter) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.gen++
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (c *Counter) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Counter) run(ctx context.Context, gen int, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Both cases can be ready at once; cancellation wins.
			if ctx.Err() != nil {
				return
			}
			c.tick(gen)
		}
	}
}

// tick recomputes from the epoch and publishes. A tick from a stopped
// generation is dropped so nothing is delivered after Stop returns.
func (c *Counter) tick(gen int) {
	v := Elapsed(c.epoch, c.now())

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.value = v
	subs := make([]func(int64), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}
