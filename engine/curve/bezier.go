package curve

import "math"

// handleEpsilon keeps CorrectHandles from rescaling handles it already corrected.
const handleEpsilon = 1e-9

// CorrectHandles clamps the two inner control points of a Bezier segment so the
// summed horizontal handle lengths never exceed the segment's time span, which
// keeps x(t) monotonic. Applying it to its own output is a no-op.
//
// Parameters:
//   - v1: the segment start key
//   - v2: the start key's right handle
//   - v3: the end key's left handle
//   - v4: the segment end key
//
// Returns:
//   - Point: the corrected right handle of v1
//   - Point: the corrected left handle of v4
func CorrectHandles(v1, v2, v3, v4 Point) (Point, Point) {
	h1 := Point{v1.X - v2.X, v1.Y - v2.Y}
	h2 := Point{v4.X - v3.X, v4.Y - v3.Y}

	span := v4.X - v1.X
	len1 := math.Abs(h1.X)
	len2 := math.Abs(h2.X)

	if len1+len2 == 0 {
		return v2, v3
	}

	if len1+len2 > span+handleEpsilon {
		fac := span / (len1 + len2)
		v2 = Point{v1.X - fac*h1.X, v1.Y - fac*h1.Y}
		v3 = Point{v4.X - fac*h2.X, v4.Y - fac*h2.Y}
	}
	return v2, v3
}

// findRoot bisects t in [0, 1] until x(t) is within tol of x, or maxIter
// midpoints have been tried.
func findRoot(x, x0, x1, x2, x3, tol float64, maxIter int) float64 {
	lo, hi := 0.0, 1.0
	t := 0.5
	for i := 0; i < maxIter; i++ {
		t = lo + (hi-lo)/2
		dx := bezierParametric(t, x0, x1, x2, x3) - x
		if math.Abs(dx) < tol {
			return t
		}
		if dx > 0 {
			hi = t
		} else {
			lo = t
		}
	}
	return t
}

func bezierParametric(t, p0, p1, p2, p3 float64) float64 {
	t1 := 1 - t
	return p0*t1*t1*t1 +
		3*p1*t1*t1*t +
		3*p2*t1*t*t +
		p3*t*t*t
}
