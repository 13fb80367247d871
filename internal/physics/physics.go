// Package physics provides the rectangle maths used for collision detection.
package physics

// Rect is an axis-aligned box in container pixels. Y grows downward.
type Rect struct {
	X, Y, W, H float64
}

// Inset shrinks the rectangle by pad on every side. Rectangles never get a
// negative size.
func (r Rect) Inset(pad float64) Rect {
	out := Rect{X: r.X + pad, Y: r.Y + pad, W: r.W - 2*pad, H: r.H - 2*pad}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Overlaps reports whether r and o intersect once o is grown by buffer on
// every side. Touching edges do not count.
func (r Rect) Overlaps(o Rect, buffer float64) bool {
	return r.X < o.X+o.W+buffer &&
		r.X+r.W+buffer > o.X &&
		r.Y < o.Y+o.H+buffer &&
		r.Y+r.H+buffer > o.Y
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Approach moves current toward target by factor of the remaining distance.
func Approach(current, target, factor float64) float64 {
	return current + (target-current)*factor
}
