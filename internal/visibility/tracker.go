// Package visibility tracks which page sections have been seen and which one
// currently sits on the viewport's horizontal midline.
package visibility

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrDuplicateRegion = errors.New("region already registered")
	ErrClosed          = errors.New("tracker torn down")
)

// DefaultThreshold is the visible fraction that latches a region as seen.
const DefaultThreshold = 0.1

// Config holds tracker settings.
type Config struct {
	// Default is the active region before any midline crossing.
	Default string
	// Threshold is the visible fraction that latches a region as seen.
	Threshold float64
}

// State is the render-facing snapshot of a tracker.
type State struct {
	Active string          `json:"active"`
	Seen   map[string]bool `json:"seen"`
	Armed  bool            `json:"armed"`
	Order  []string        `json:"order"`
}

type region struct {
	key    string
	src    RectSource
	seen   bool
	latch  Subscription
	active Subscription
}

// Tracker owns the seen latches and the active-region pointer for a fixed set
// of regions. All mutation goes through observer callbacks.
type Tracker struct {
	observer Observer
	cfg      Config

	mu        sync.Mutex
	order     []string
	regions   map[string]*region
	active    string
	armed     bool
	closed    bool
	armTimer  *time.Timer
	listeners []func(State)
	onSeen    []func(key string)
}

// NewTracker creates a tracker with no regions. A zero Threshold falls back
// to DefaultThreshold.
func NewTracker(observer Observer, cfg Config) *Tracker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Tracker{
		observer: observer,
		cfg:      cfg,
		regions:  make(map[string]*region),
		active:   cfg.Default,
	}
}

// OnChange registers fn to receive the state after every mutation. fn runs
// outside the tracker lock on the goroutine that delivered the entry.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// OnSeen registers fn to be called once per region when its latch fires.
func (t *Tracker) OnSeen(fn func(key string)) {
	t.mu.Lock()
	t.onSeen = append(t.onSeen, fn)
	t.mu.Unlock()
}

// Register adds a region and starts watching it for the entrance latch. If
// the tracker is already armed, the midline observation starts too.
func (t *Tracker) Register(key string, src RectSource) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if _, ok := t.regions[key]; ok {
		return fmt.Errorf("register %q: %w", key, ErrDuplicateRegion)
	}

	r := &region{key: key, src: src}
	t.regions[key] = r
	t.order = append(t.order, key)

	r.latch = t.observer.Observe(key, src, Options{Threshold: t.cfg.Threshold}, func(e Entry) {
		t.handleLatch(r, e)
	})
	if t.armed {
		t.observeMidline(r)
	}
	return nil
}

// Arm starts active-region selection. Before Arm, Active always returns the
// default. Calling Arm again does nothing.
func (t *Tracker) Arm() {
	t.mu.Lock()
	if t.closed || t.armed {
		t.mu.Unlock()
		return
	}
	t.armed = true
	if t.armTimer != nil {
		t.armTimer.Stop()
		t.armTimer = nil
	}
	for _, key := range t.order {
		t.observeMidline(t.regions[key])
	}
	state, listeners := t.stateLocked(), t.listeners
	t.mu.Unlock()

	notify(listeners, state)
}

// ArmAfter arms the tracker once delay has elapsed. UnregisterAll cancels a
// pending arm.
func (t *Tracker) ArmAfter(delay time.Duration) {
	if delay <= 0 {
		t.Arm()
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.armed || t.armTimer != nil {
		return
	}
	t.armTimer = time.AfterFunc(delay, t.Arm)
}

// UnregisterAll cancels every observation and any pending arm. Entries that
// arrive afterwards are ignored. Safe to call more than once.
func (t *Tracker) UnregisterAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	if t.armTimer != nil {
		t.armTimer.Stop()
		t.armTimer = nil
	}
	for _, r := range t.regions {
		if r.latch != nil {
			r.latch.Cancel()
			r.latch = nil
		}
		if r.active != nil {
			r.active.Cancel()
			r.active = nil
		}
	}
}

// Active returns the region on the midline, or the default.
func (t *Tracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// HasBeenSeen reports whether key has ever met the entrance threshold.
func (t *Tracker) HasBeenSeen(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.regions[key]
	return ok && r.seen
}

// Armed reports whether active-region selection has started.
func (t *Tracker) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Closed reports whether UnregisterAll has run.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// State returns a snapshot for rendering.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	seen := make(map[string]bool, len(t.regions))
	for key, r := range t.regions {
		seen[key] = r.seen
	}
	order := make([]string, len(t.order))
	copy(order, t.order)
	return State{Active: t.active, Seen: seen, Armed: t.armed, Order: order}
}

// observeMidline must be called with t.mu held.
func (t *Tracker) observeMidline(r *region) {
	if r.active != nil {
		return
	}
	r.active = t.observer.Observe(r.key, r.src, Options{Root: Midline}, func(e Entry) {
		t.handleMidline(r, e)
	})
}

func (t *Tracker) handleLatch(r *region, e Entry) {
	if !e.Intersecting || e.Ratio < t.cfg.Threshold {
		return
	}

	t.mu.Lock()
	if t.closed || r.seen {
		t.mu.Unlock()
		return
	}
	r.seen = true
	if r.latch != nil {
		r.latch.Cancel()
		r.latch = nil
	}
	state, listeners, onSeen := t.stateLocked(), t.listeners, t.onSeen
	t.mu.Unlock()

	for _, fn := range onSeen {
		fn(r.key)
	}
	notify(listeners, state)
}

func (t *Tracker) handleMidline(r *region, e Entry) {
	if !e.Intersecting {
		return
	}

	t.mu.Lock()
	if t.closed || t.active == r.key {
		t.mu.Unlock()
		return
	}
	t.active = r.key
	state, listeners := t.stateLocked(), t.listeners
	t.mu.Unlock()

	notify(listeners, state)
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
