package visibility

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	viewport := Rect{X: 0, Y: 1000, W: 1200, H: 800}

	tests := []struct {
		name      string
		root      Rect
		target    Rect
		wantHit   bool
		wantRatio float64
	}{
		{"fully inside", viewport, Rect{Y: 1100, W: 1200, H: 400}, true, 1},
		{"above", viewport, Rect{Y: 0, W: 1200, H: 1000}, false, 0},
		{"below", viewport, Rect{Y: 1800, W: 1200, H: 500}, false, 0},
		{"half visible", viewport, Rect{Y: 600, W: 1200, H: 800}, true, 0.5},
		{"tenth visible", viewport, Rect{Y: 1700, W: 1200, H: 1000}, true, 0.1},
		{"zero height target", viewport, Rect{Y: 1200, W: 1200}, false, 0},
		{"no horizontal overlap", viewport, Rect{X: 1300, Y: 1100, W: 100, H: 100}, false, 0},
		{"root without width", Rect{Y: 1000, H: 800}, Rect{X: 50, Y: 1400, W: 100, H: 800}, true, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ratio := intersect(tt.root, tt.target)
			require.Equal(t, tt.wantHit, hit)
			require.InDelta(t, tt.wantRatio, ratio, 1e-9)
		})
	}
}

func TestIntersectMidline(t *testing.T) {
	line := Midline(Rect{Y: 500, W: 1000, H: 1000})
	require.Equal(t, 1000.0, line.Y)
	require.Zero(t, line.H)

	tests := []struct {
		name   string
		target Rect
		want   bool
	}{
		{"spans line", Rect{Y: 800, W: 1000, H: 400}, true},
		{"top edge on line", Rect{Y: 1000, W: 1000, H: 400}, true},
		{"bottom edge on line", Rect{Y: 600, W: 1000, H: 400}, false},
		{"entirely above", Rect{Y: 0, W: 1000, H: 500}, false},
		{"entirely below", Rect{Y: 1200, W: 1000, H: 500}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ratio := intersect(line, tt.target)
			require.Equal(t, tt.want, hit)
			require.Zero(t, ratio)
		})
	}
}

func TestRectArea(t *testing.T) {
	require.Equal(t, 200.0, Rect{W: 10, H: 20}.Area())
	require.Zero(t, Rect{W: 10}.Area())
	require.Zero(t, Rect{W: -5, H: 5}.Area())
}
