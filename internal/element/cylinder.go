package element

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
)

const (
	DefaultDetailLevel = 16
	minDetailLevel     = 4
)

// Cylinder is a right circular cylinder between two cap centers.
type Cylinder struct {
	base
	startCenter geom.Vec3
	endCenter   geom.Vec3
	radius      float64
	fixedRadius bool
	drawEndCaps bool
	detailLevel int
}

// NewCylinder creates a cylinder. The axis must have non-zero length.
func NewCylinder(start, end geom.Vec3, radius float64, style Style) (*Cylinder, error) {
	if !start.IsValid() || !end.IsValid() || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, ErrInvalidGeometry
	}
	if radius < 0 {
		return nil, ErrNegativeRadius
	}
	if start == end {
		return nil, ErrDegenerateAxis
	}
	return &Cylinder{
		base:        newBase(style),
		startCenter: start,
		endCenter:   end,
		radius:      radius,
		drawEndCaps: true,
		detailLevel: DefaultDetailLevel,
	}, nil
}

func (c *Cylinder) Kind() Kind             { return KindCylinder }
func (c *Cylinder) StartCenter() geom.Vec3 { return c.startCenter }
func (c *Cylinder) EndCenter() geom.Vec3   { return c.endCenter }
func (c *Cylinder) Radius() float64        { return c.radius }
func (c *Cylinder) FixedRadius() bool      { return c.fixedRadius }
func (c *Cylinder) DrawEndCaps() bool      { return c.drawEndCaps }
func (c *Cylinder) DetailLevel() int       { return c.detailLevel }
func (c *Cylinder) SetFixedRadius(v bool)  { c.fixedRadius = v }
func (c *Cylinder) SetDrawEndCaps(v bool)  { c.drawEndCaps = v }

// SetDetailLevel sets the number of segments per cap, minimum 4.
func (c *Cylinder) SetDetailLevel(n int) {
	c.detailLevel = max(n, minDetailLevel)
}

// SetCenters moves both cap centers.
func (c *Cylinder) SetCenters(start, end geom.Vec3) {
	if rejectInvalid("centers", c.id, start, end) {
		return
	}
	c.startCenter, c.endCenter = start, end
	c.changed()
}

// SetRadius changes the radius. Negative and non-finite values are ignored.
func (c *Cylinder) SetRadius(r float64) {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return
	}
	c.radius = r
	c.changed()
}

// Axis returns the normalized start-to-end direction.
func (c *Cylinder) Axis() geom.Vec3 {
	return c.endCenter.Sub(c.startCenter).Normalize()
}

// degenerate reports a zero-length axis, which is treated as a sphere.
func (c *Cylinder) degenerate() bool {
	return c.endCenter.Sub(c.startCenter).LengthSquared() < 1e-8
}

// frameAxis is the axis used for ring and handle placement. A zero-length
// axis falls back to +Z.
func (c *Cylinder) frameAxis() geom.Vec3 {
	if c.degenerate() {
		return geom.V3(0, 0, 1)
	}
	return c.Axis()
}

// Basis returns two unit vectors orthogonal to the axis.
func (c *Cylinder) Basis() (u, v geom.Vec3) {
	return planeBasis(c.frameAxis())
}

func (c *Cylinder) Bounds() geom.Box3 {
	if c.degenerate() {
		return geom.BoxAround(c.startCenter, c.radius)
	}
	u, v := c.Basis()
	ext := u.Scale(c.radius).Abs().Add(v.Scale(c.radius).Abs())
	return geom.NewBox3(c.startCenter.Sub(ext), c.startCenter.Add(ext)).
		Union(geom.NewBox3(c.endCenter.Sub(ext), c.endCenter.Add(ext)))
}

// HitTest measures the distance from p to the axis segment. Filled
// cylinders match the whole volume, others only the mantle. A degenerate
// axis is treated as a sphere shell.
func (c *Cylinder) HitTest(p geom.Vec3, tol float64) bool {
	closest, _ := closestOnSegment(c.startCenter, c.endCenter, p)
	d := p.Distance(closest)
	if c.style.Filled {
		return d <= c.radius+tol
	}
	return math.Abs(d-c.radius) <= tol
}

// perpendicular returns a unit vector orthogonal to the axis, built against
// an arbitrary reference direction.
func (c *Cylinder) perpendicular() geom.Vec3 {
	axis := c.frameAxis()
	ref := geom.V3(0, 0, 1)
	if math.Abs(axis.Z) >= 0.9 {
		ref = geom.V3(1, 0, 0)
	}
	return axis.Cross(ref).Normalize()
}

// ControlPoints returns the start center, end center and the two radius
// handles beside them.
func (c *Cylinder) ControlPoints() []geom.Vec3 {
	off := c.perpendicular().Scale(c.radius)
	return []geom.Vec3{
		c.startCenter,
		c.endCenter,
		c.startCenter.Add(off),
		c.endCenter.Add(off),
	}
}

func (c *Cylinder) ControlPointAt(p geom.Vec3, tol float64) (int, bool) {
	return controlPointAt(c.ControlPoints(), p, tol)
}

// MoveControlPoint moves a cap center (0, 1) or resizes through a radius
// handle (2, 3).
func (c *Cylinder) MoveControlPoint(i int, p geom.Vec3) error {
	if i < 0 || i > 3 {
		return rangeError(KindCylinder, i, 4)
	}
	if rejectInvalid("control point", c.id, p) {
		return nil
	}
	switch i {
	case 0:
		c.startCenter = p
	case 1:
		c.endCenter = p
	default:
		if c.fixedRadius {
			return nil
		}
		anchor := c.startCenter
		if i == 3 {
			anchor = c.endCenter
		}
		axis := c.endCenter.Sub(c.startCenter)
		lenSq := axis.LengthSquared()
		if lenSq <= 1e-8 {
			return nil
		}
		proj := anchor.Add(axis.Scale(p.Sub(anchor).Dot(axis) / lenSq))
		r := p.Distance(proj)
		if r <= minRadius {
			return nil
		}
		c.radius = r
	}
	c.changed()
	return nil
}

func (c *Cylinder) Translate(d geom.Vec3) {
	c.SetCenters(c.startCenter.Add(d), c.endCenter.Add(d))
}

// CapVisibility reports which end caps face a viewer looking along viewDir.
func (c *Cylinder) CapVisibility(viewDir geom.Vec3) (start, end bool) {
	axis := c.Axis()
	return axis.Neg().Dot(viewDir) > 0, axis.Dot(viewDir) > 0
}

// Rings returns DetailLevel points around each cap.
func (c *Cylinder) Rings() (start, end []geom.Vec3) {
	u, v := c.Basis()
	n := c.detailLevel
	start = make([]geom.Vec3, n)
	end = make([]geom.Vec3, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		off := u.Scale(c.radius * math.Cos(a)).Add(v.Scale(c.radius * math.Sin(a)))
		start[i] = c.startCenter.Add(off)
		end[i] = c.endCenter.Add(off)
	}
	return start, end
}

func (c *Cylinder) Clone() Element {
	cp := *c
	cp.base = c.cloneBase()
	return &cp
}
