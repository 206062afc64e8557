package visibility

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixed(r Rect) RectSource {
	return RectFunc(func() Rect { return r })
}

func TestGeometryInitialEntry(t *testing.T) {
	g := NewGeometry()
	var got []Entry
	g.Observe("home", fixed(Rect{W: 1000, H: 1000}), Options{}, func(e Entry) {
		got = append(got, e)
	})

	// Nothing is delivered synchronously or before a viewport is known.
	require.Empty(t, got)
	g.Refresh()
	require.Empty(t, got)

	g.Update(Rect{W: 1000, H: 800})
	require.Len(t, got, 1)
	require.Equal(t, "home", got[0].Key)
	require.True(t, got[0].Intersecting)
	require.InDelta(t, 0.8, got[0].Ratio, 1e-9)
}

func TestGeometryFiresOncePerCrossing(t *testing.T) {
	g := NewGeometry()
	var got []Entry
	g.Observe("about", fixed(Rect{Y: 1000, W: 1000, H: 1000}), Options{Threshold: 0.1}, func(e Entry) {
		got = append(got, e)
	})

	g.Update(Rect{Y: 0, W: 1000, H: 800})   // initial, not satisfied
	g.Update(Rect{Y: 100, W: 1000, H: 800}) // still 0
	g.Update(Rect{Y: 250, W: 1000, H: 800}) // 5%: intersecting but below threshold
	require.Len(t, got, 1)

	g.Update(Rect{Y: 400, W: 1000, H: 800}) // 20%
	g.Update(Rect{Y: 500, W: 1000, H: 800}) // 30%, no new crossing
	require.Len(t, got, 2)
	require.True(t, got[1].Intersecting)

	g.Update(Rect{Y: 0, W: 1000, H: 800}) // back out
	require.Len(t, got, 3)
	require.False(t, got[2].Intersecting)
}

func TestGeometryCancel(t *testing.T) {
	g := NewGeometry()
	calls := 0
	sub := g.Observe("home", fixed(Rect{W: 1000, H: 1000}), Options{}, func(Entry) { calls++ })
	require.Equal(t, 1, g.Len())

	sub.Cancel()
	sub.Cancel()
	require.Zero(t, g.Len())

	g.Update(Rect{W: 1000, H: 800})
	require.Zero(t, calls)
}

func TestGeometryBatchOrderAndCancelDuringBatch(t *testing.T) {
	g := NewGeometry()
	var order []string
	var second Subscription

	g.Observe("a", fixed(Rect{W: 10, H: 10}), Options{}, func(e Entry) {
		order = append(order, e.Key)
		second.Cancel()
	})
	second = g.Observe("b", fixed(Rect{W: 10, H: 10}), Options{}, func(e Entry) {
		order = append(order, e.Key)
	})
	g.Observe("c", fixed(Rect{W: 10, H: 10}), Options{}, func(e Entry) {
		order = append(order, e.Key)
	})

	g.Update(Rect{W: 100, H: 100})
	require.Equal(t, []string{"a", "c"}, order)
}

func TestGeometryRefreshPicksUpMovedRegion(t *testing.T) {
	g := NewGeometry()
	rect := Rect{Y: 5000, W: 1000, H: 500}
	var got []Entry
	g.Observe("contact", RectFunc(func() Rect { return rect }), Options{}, func(e Entry) {
		got = append(got, e)
	})

	g.Update(Rect{W: 1000, H: 800})
	require.Len(t, got, 1)
	require.False(t, got[0].Intersecting)

	rect.Y = 100
	g.Refresh()
	require.Len(t, got, 2)
	require.True(t, got[1].Intersecting)
}

func TestGeometryObserveAfterViewportDeliversInitialEntry(t *testing.T) {
	g := NewGeometry()
	g.Update(Rect{Y: 1700, W: 1000, H: 800})

	var mu sync.Mutex
	var got []Entry
	g.Observe("skills", fixed(Rect{Y: 2000, W: 1000, H: 1000}), Options{Root: Midline}, func(e Entry) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.True(t, got[0].Intersecting)
}
