package render

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
)

const clipEpsilon = 1e-6

// ClipLine clips segment a-b to r with the Liang-Barsky algorithm. It
// returns false when nothing of the segment is inside r.
func ClipLine(a, b geom.Vec2, r geom.Rect2) (geom.Vec2, geom.Vec2, bool) {
	if !a.IsValid() || !b.IsValid() {
		return geom.InvalidVec2(), geom.InvalidVec2(), false
	}
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y

	edges := [4][2]float64{
		{-dx, a.X - r.Left()},
		{dx, r.Right() - a.X},
		{-dy, a.Y - r.Top()},
		{dy, r.Bottom() - a.Y},
	}
	for _, e := range edges {
		if !clipTest(e[0], e[1], &t0, &t1) {
			return geom.InvalidVec2(), geom.InvalidVec2(), false
		}
	}
	return geom.V2(a.X+t0*dx, a.Y+t0*dy), geom.V2(a.X+t1*dx, a.Y+t1*dy), true
}

func clipTest(p, q float64, t0, t1 *float64) bool {
	if math.Abs(p) < clipEpsilon {
		return q >= 0
	}
	r := q / p
	if p < 0 {
		if r > *t1 {
			return false
		}
		*t0 = max(*t0, r)
	} else {
		if r < *t0 {
			return false
		}
		*t1 = min(*t1, r)
	}
	return true
}
