package visibility

// Rect is an axis-aligned rectangle in document coordinates. For a viewport,
// X and Y are the scroll offsets.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Area is zero for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Midline is the zero-height band across the vertical middle of vp.
func Midline(vp Rect) Rect {
	return Rect{X: vp.X, Y: vp.Y + vp.H/2, W: vp.W, H: 0}
}

// intersect reports whether target meets root and what fraction of target's
// area is inside root.
//
// A zero-height root is a line: it meets target when target.Y <= root.Y <
// target.Bottom(). The interval is half-open so that two stacked regions
// never both contain the same line. Ratio is 0 in that case.
func intersect(root, target Rect) (bool, float64) {
	area := target.Area()
	if area == 0 {
		return false, 0
	}

	// A root without width (clients that only report height) spans the
	// target horizontally.
	width := target.W
	if root.W > 0 {
		left := max(root.X, target.X)
		right := min(root.Right(), target.Right())
		if right <= left {
			return false, 0
		}
		width = right - left
	}

	if root.H == 0 {
		return target.Y <= root.Y && root.Y < target.Bottom(), 0
	}

	top := max(root.Y, target.Y)
	bottom := min(root.Bottom(), target.Bottom())
	if bottom <= top {
		return false, 0
	}

	ratio := width * (bottom - top) / area
	if ratio > 1 {
		ratio = 1
	}
	return true, ratio
}
