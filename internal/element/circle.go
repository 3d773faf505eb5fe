package element

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
)

// minRadius is the smallest radius a handle drag may produce.
const minRadius = 0.001

// Circle is a circle in the plane orthogonal to its normal.
type Circle struct {
	base
	center      geom.Vec3
	radius      float64
	fixedRadius bool
	normal      geom.Vec3
	use3D       bool
}

// NewCircle creates a circle facing +Z.
func NewCircle(center geom.Vec3, radius float64, style Style) (*Circle, error) {
	if !center.IsValid() || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, ErrInvalidGeometry
	}
	if radius < 0 {
		return nil, ErrNegativeRadius
	}
	return &Circle{
		base:   newBase(style),
		center: center,
		radius: radius,
		normal: geom.V3(0, 0, 1),
	}, nil
}

func (c *Circle) Kind() Kind            { return KindCircle }
func (c *Circle) Center() geom.Vec3     { return c.center }
func (c *Circle) Radius() float64       { return c.radius }
func (c *Circle) FixedRadius() bool     { return c.fixedRadius }
func (c *Circle) Normal() geom.Vec3     { return c.normal }
func (c *Circle) Use3D() bool           { return c.use3D }
func (c *Circle) SetFixedRadius(v bool) { c.fixedRadius = v }

// SetCenter moves the circle.
func (c *Circle) SetCenter(p geom.Vec3) {
	if rejectInvalid("center", c.id, p) {
		return
	}
	c.center = p
	c.changed()
}

// SetRadius changes the radius. Negative and non-finite values are ignored.
func (c *Circle) SetRadius(r float64) {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return
	}
	c.radius = r
	c.changed()
}

// SetNormal orients the circle in 3D. Zero-length normals are ignored.
func (c *Circle) SetNormal(n geom.Vec3) {
	if rejectInvalid("normal", c.id, n) || n.Length() < 1e-10 {
		return
	}
	c.normal = n.Normalize()
	c.use3D = true
	c.changed()
}

// Basis returns the two unit vectors spanning the circle plane.
func (c *Circle) Basis() (u, v geom.Vec3) {
	return planeBasis(c.normal)
}

func (c *Circle) Bounds() geom.Box3 {
	u, v := c.Basis()
	ext := u.Scale(c.radius).Abs().Add(v.Scale(c.radius).Abs())
	return geom.NewBox3(c.center.Sub(ext), c.center.Add(ext))
}

// HitTest matches points near the perimeter only, filled or not.
func (c *Circle) HitTest(p geom.Vec3, tol float64) bool {
	return math.Abs(p.Distance(c.center)-c.radius) <= tol
}

// ControlPoints returns the center followed by the right, top, left and
// bottom radius handles.
func (c *Circle) ControlPoints() []geom.Vec3 {
	r := c.radius
	return []geom.Vec3{
		c.center,
		c.center.Add(geom.V3(r, 0, 0)),
		c.center.Add(geom.V3(0, r, 0)),
		c.center.Add(geom.V3(-r, 0, 0)),
		c.center.Add(geom.V3(0, -r, 0)),
	}
}

func (c *Circle) ControlPointAt(p geom.Vec3, tol float64) (int, bool) {
	return controlPointAt(c.ControlPoints(), p, tol)
}

// MoveControlPoint moves the center (0) or resizes through a radius
// handle (1-4). Fixed-radius circles ignore handle drags.
func (c *Circle) MoveControlPoint(i int, p geom.Vec3) error {
	if i < 0 || i > 4 {
		return rangeError(KindCircle, i, 5)
	}
	if rejectInvalid("control point", c.id, p) {
		return nil
	}
	if i == 0 {
		c.center = p
		c.changed()
		return nil
	}
	if c.fixedRadius {
		return nil
	}
	if r := p.Distance(c.center); r > minRadius {
		c.radius = r
		c.changed()
	}
	return nil
}

func (c *Circle) Translate(d geom.Vec3) {
	c.SetCenter(c.center.Add(d))
}

// Sample returns n points evenly spaced around the circle.
func (c *Circle) Sample(n int) []geom.Vec3 {
	if n < 3 {
		n = 3
	}
	u, v := c.Basis()
	pts := make([]geom.Vec3, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = c.center.
			Add(u.Scale(c.radius * math.Cos(a))).
			Add(v.Scale(c.radius * math.Sin(a)))
	}
	return pts
}

func (c *Circle) Clone() Element {
	cp := *c
	cp.base = c.cloneBase()
	return &cp
}
