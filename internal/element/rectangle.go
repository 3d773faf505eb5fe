package element

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
)

// Rectangle is an axis-aligned rectangle spanned by two corners.
type Rectangle struct {
	base
	start geom.Vec3
	end   geom.Vec3
}

// NewRectangle creates a rectangle from two opposite corners.
func NewRectangle(start, end geom.Vec3, style Style) (*Rectangle, error) {
	if !start.IsValid() || !end.IsValid() {
		return nil, ErrInvalidGeometry
	}
	return &Rectangle{base: newBase(style), start: start, end: end}, nil
}

func (r *Rectangle) Kind() Kind       { return KindRectangle }
func (r *Rectangle) Start() geom.Vec3 { return r.start }
func (r *Rectangle) End() geom.Vec3   { return r.end }

// SetCorners replaces both corners.
func (r *Rectangle) SetCorners(start, end geom.Vec3) {
	if rejectInvalid("corners", r.id, start, end) {
		return
	}
	r.start, r.end = start, end
	r.changed()
}

func (r *Rectangle) Bounds() geom.Box3 {
	return geom.NewBox3(r.start, r.end)
}

func (r *Rectangle) extent() (minX, minY, maxX, maxY float64) {
	return math.Min(r.start.X, r.end.X), math.Min(r.start.Y, r.end.Y),
		math.Max(r.start.X, r.end.X), math.Max(r.start.Y, r.end.Y)
}

// HitTest checks the area when filled and the four edges otherwise.
// Only X and Y are compared.
func (r *Rectangle) HitTest(p geom.Vec3, tol float64) bool {
	minX, minY, maxX, maxY := r.extent()
	inX := p.X >= minX-tol && p.X <= maxX+tol
	inY := p.Y >= minY-tol && p.Y <= maxY+tol
	if r.style.Filled {
		return inX && inY
	}
	nearVertical := (math.Abs(p.X-minX) <= tol || math.Abs(p.X-maxX) <= tol) && inY
	nearHorizontal := (math.Abs(p.Y-minY) <= tol || math.Abs(p.Y-maxY) <= tol) && inX
	return nearVertical || nearHorizontal
}

// ControlPoints returns the bottom-left, bottom-right, top-right and
// top-left corners at the start corner's Z.
func (r *Rectangle) ControlPoints() []geom.Vec3 {
	minX, minY, maxX, maxY := r.extent()
	z := r.start.Z
	return []geom.Vec3{
		geom.V3(minX, minY, z),
		geom.V3(maxX, minY, z),
		geom.V3(maxX, maxY, z),
		geom.V3(minX, maxY, z),
	}
}

func (r *Rectangle) ControlPointAt(p geom.Vec3, tol float64) (int, bool) {
	return controlPointAt(r.ControlPoints(), p, tol)
}

// MoveControlPoint drags one corner while the opposite corner stays put.
func (r *Rectangle) MoveControlPoint(i int, p geom.Vec3) error {
	if i < 0 || i > 3 {
		return rangeError(KindRectangle, i, 4)
	}
	if rejectInvalid("control point", r.id, p) {
		return nil
	}
	minX, minY, maxX, maxY := r.extent()
	zs, ze := r.start.Z, r.end.Z
	switch i {
	case 0:
		r.start, r.end = geom.V3(p.X, p.Y, zs), geom.V3(maxX, maxY, ze)
	case 1:
		r.start, r.end = geom.V3(minX, p.Y, zs), geom.V3(p.X, maxY, ze)
	case 2:
		r.start, r.end = geom.V3(minX, minY, zs), geom.V3(p.X, p.Y, ze)
	case 3:
		r.start, r.end = geom.V3(p.X, minY, zs), geom.V3(maxX, p.Y, ze)
	}
	r.changed()
	return nil
}

func (r *Rectangle) Translate(d geom.Vec3) {
	r.SetCorners(r.start.Add(d), r.end.Add(d))
}

func (r *Rectangle) Clone() Element {
	cp := *r
	cp.base = r.cloneBase()
	return &cp
}
