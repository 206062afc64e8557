package visibility

import (
	"sync"
	"time"
)

// RectSource reports a region's current rectangle.
type RectSource interface {
	Rect() Rect
}

// RectFunc adapts a function to RectSource.
type RectFunc func() Rect

func (f RectFunc) Rect() Rect { return f() }

// Entry describes one observed change in how a region meets its root.
type Entry struct {
	Key          string
	Intersecting bool
	Ratio        float64
	Time         time.Time
}

// Options control a single observation.
type Options struct {
	// Threshold is the visible fraction of the region at which the
	// observation counts as satisfied. Zero means any intersection.
	Threshold float64
	// Root derives the intersection root from the viewport. Nil means the
	// viewport itself.
	Root func(viewport Rect) Rect
}

// Subscription is a cancellable observation handle.
type Subscription interface {
	Cancel()
}

// Observer delivers an Entry to fn once after registration and then each time
// the region crosses the threshold in either direction. fn is never called
// from inside Observe, and entries evaluated after Cancel are dropped; a
// callback already running on another goroutine may still finish. Delivery
// latency is not bounded.
type Observer interface {
	Observe(key string, src RectSource, opts Options, fn func(Entry)) Subscription
}

// Geometry is an Observer driven by explicit viewport updates. It evaluates
// every live observation in registration order and delivers the resulting
// batch in that same order.
type Geometry struct {
	now func() time.Time

	// deliver serializes batches so entries never interleave or reorder.
	deliver sync.Mutex

	mu          sync.Mutex
	viewport    Rect
	hasViewport bool
	refreshing  bool
	obs         []*observation
}

type observation struct {
	g       *Geometry
	key     string
	src     RectSource
	opts    Options
	fn      func(Entry)
	primed  bool
	last    bool
	stopped bool
}

// NewGeometry returns an observer with an empty viewport.
func NewGeometry() *Geometry {
	return &Geometry{now: time.Now}
}

// Observe registers fn. If a viewport is already known, a Refresh is queued on
// its own goroutine so the first entry arrives without waiting for the next
// Update. Otherwise it arrives with the first Update.
func (g *Geometry) Observe(key string, src RectSource, opts Options, fn func(Entry)) Subscription {
	o := &observation{g: g, key: key, src: src, opts: opts, fn: fn}
	g.mu.Lock()
	g.obs = append(g.obs, o)
	schedule := g.hasViewport && !g.refreshing
	if schedule {
		g.refreshing = true
	}
	g.mu.Unlock()

	if schedule {
		go g.Refresh()
	}
	return o
}

// Cancel stops delivery for the observation. Safe to call more than once.
func (o *observation) Cancel() {
	g := o.g
	g.mu.Lock()
	defer g.mu.Unlock()
	if o.stopped {
		return
	}
	o.stopped = true
	for i, other := range g.obs {
		if other == o {
			g.obs = append(g.obs[:i], g.obs[i+1:]...)
			break
		}
	}
}

// Viewport returns the last viewport passed to Update.
func (g *Geometry) Viewport() Rect {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewport
}

// Len returns the number of live observations.
func (g *Geometry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.obs)
}

// Update records a new viewport and delivers any resulting entries.
func (g *Geometry) Update(viewport Rect) {
	g.deliver.Lock()
	defer g.deliver.Unlock()

	g.mu.Lock()
	g.viewport = viewport
	g.hasViewport = true
	g.refreshing = false
	batch := g.evaluate()
	g.mu.Unlock()

	g.dispatch(batch)
}

// Refresh re-evaluates against the current viewport, for use after region
// rectangles change.
func (g *Geometry) Refresh() {
	g.deliver.Lock()
	defer g.deliver.Unlock()

	g.mu.Lock()
	g.refreshing = false
	batch := g.evaluate()
	g.mu.Unlock()

	g.dispatch(batch)
}

type pending struct {
	o     *observation
	entry Entry
}

// evaluate must be called with g.mu held.
func (g *Geometry) evaluate() []pending {
	if !g.hasViewport {
		return nil
	}
	now := g.now()
	var batch []pending
	for _, o := range g.obs {
		root := g.viewport
		if o.opts.Root != nil {
			root = o.opts.Root(g.viewport)
		}
		hit, ratio := intersect(root, o.src.Rect())
		satisfied := hit && ratio >= o.opts.Threshold

		if o.primed && satisfied == o.last {
			continue
		}
		o.primed = true
		o.last = satisfied
		batch = append(batch, pending{o: o, entry: Entry{
			Key:          o.key,
			Intersecting: hit,
			Ratio:        ratio,
			Time:         now,
		}})
	}
	return batch
}

func (g *Geometry) dispatch(batch []pending) {
	for _, p := range batch {
		// An earlier callback in the batch may have cancelled this one.
		g.mu.Lock()
		stopped := p.o.stopped
		g.mu.Unlock()
		if stopped {
			continue
		}
		p.o.fn(p.entry)
	}
}
