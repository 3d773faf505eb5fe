package view

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
)

const (
	// MinZoom is the smallest accepted zoom component.
	MinZoom = 0.0001

	// wEpsilon is the smallest |w| accepted by the perspective divide.
	wEpsilon = 1e-10
)

// State is the serializable form of a Transform.
type State struct {
	Viewport geom.Rect2 `json:"viewport"`
	Zoom     geom.Vec3  `json:"zoom"`
	Shift    geom.Vec3  `json:"shift"`
	Rotation geom.Vec3  `json:"rotation"`
	Pivot    geom.Vec3  `json:"pivot"`
}

// Transform maps world coordinates to screen pixels and back.
//
// The matrix is a pure function of viewport, zoom, shift, rotation and
// pivot; every setter recomputes it.
type Transform struct {
	viewport geom.Rect2
	zoom     geom.Vec3
	zoomAvg  float64
	shift    geom.Vec3
	rotation geom.Vec3
	pivot    geom.Vec3

	matrix  Matrix4
	viewDir geom.Vec3
}

// NewTransform creates an unrotated 1:1 view over viewport.
func NewTransform(viewport geom.Rect2) *Transform {
	t := &Transform{viewport: viewport}
	t.apply(geom.V3(1, 1, 1), geom.Vec3{}, geom.Vec3{}, geom.Vec3{})
	return t
}

// FromState builds a transform from a saved state. Invalid fields fall back
// to the defaults of NewTransform.
func FromState(s State) *Transform {
	t := NewTransform(s.Viewport)
	t.SetZoom(s.Zoom)
	t.SetShift(s.Shift)
	t.SetRotation(s.Rotation)
	t.SetPivot(s.Pivot)
	return t
}

// State returns a snapshot of the view fields.
func (t *Transform) State() State {
	return State{
		Viewport: t.viewport,
		Zoom:     t.zoom,
		Shift:    t.shift,
		Rotation: t.rotation,
		Pivot:    t.pivot,
	}
}

// Clone returns an independent copy.
func (t *Transform) Clone() *Transform {
	c := *t
	return &c
}

func (t *Transform) Viewport() geom.Rect2     { return t.viewport }
func (t *Transform) Zoom() geom.Vec3          { return t.zoom }
func (t *Transform) Shift() geom.Vec3         { return t.shift }
func (t *Transform) Rotation() geom.Vec3      { return t.rotation }
func (t *Transform) Pivot() geom.Vec3         { return t.pivot }
func (t *Transform) Matrix() Matrix4          { return t.matrix }
func (t *Transform) ViewDirection() geom.Vec3 { return t.viewDir }

// ZoomAverage is the arithmetic mean of the three zoom components.
func (t *Transform) ZoomAverage() float64 { return t.zoomAvg }

// SetViewport replaces the viewport. The matrix does not depend on it.
func (t *Transform) SetViewport(r geom.Rect2) { t.viewport = r }

// SetZoom sets the zoom factors, clamping each to MinZoom.
// Non-finite input is rejected and false returned.
func (t *Transform) SetZoom(z geom.Vec3) bool {
	if !z.IsValid() {
		logging.Logger().Warn("rejected zoom", "value", z)
		return false
	}
	z = geom.V3(max(z.X, MinZoom), max(z.Y, MinZoom), max(z.Z, MinZoom))
	return t.apply(z, t.shift, t.rotation, t.pivot)
}

// SetShift sets the world shift.
func (t *Transform) SetShift(s geom.Vec3) bool {
	if !s.IsValid() {
		logging.Logger().Warn("rejected shift", "value", s)
		return false
	}
	return t.apply(t.zoom, s, t.rotation, t.pivot)
}

// SetRotation sets the rotation angles in radians, normalized into [-2π, 2π].
func (t *Transform) SetRotation(r geom.Vec3) bool {
	if !r.IsValid() {
		logging.Logger().Warn("rejected rotation", "value", r)
		return false
	}
	r = geom.V3(normalizeAngle(r.X), normalizeAngle(r.Y), normalizeAngle(r.Z))
	return t.apply(t.zoom, t.shift, r, t.pivot)
}

// SetPivot sets the point rotations are applied around.
func (t *Transform) SetPivot(p geom.Vec3) bool {
	if !p.IsValid() {
		logging.Logger().Warn("rejected pivot", "value", p)
		return false
	}
	return t.apply(t.zoom, t.shift, t.rotation, p)
}

func normalizeAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	if a > twoPi || a < -twoPi {
		a = math.Mod(a, twoPi)
	}
	return a
}

func compose(zoom, shift, rotation, pivot geom.Vec3) Matrix4 {
	return Scale(zoom.X, -zoom.Y, zoom.Z).
		Multiply(Translate(shift)).
		Multiply(Translate(pivot)).
		Multiply(RotateZ(rotation.Z)).
		Multiply(RotateY(rotation.Y)).
		Multiply(RotateX(rotation.X)).
		Multiply(Translate(pivot.Neg()))
}

// apply replaces the view fields and matrix together. Fields whose matrix
// overflows are rejected and the previous view is kept.
func (t *Transform) apply(zoom, shift, rotation, pivot geom.Vec3) bool {
	m := compose(zoom, shift, rotation, pivot)
	if !m.IsFinite() {
		logging.Logger().Warn("rejected view: matrix not finite",
			"zoom", zoom, "shift", shift, "rotation", rotation, "pivot", pivot)
		return false
	}
	t.zoom, t.shift, t.rotation, t.pivot = zoom, shift, rotation, pivot
	t.zoomAvg = (zoom.X + zoom.Y + zoom.Z) / 3
	t.matrix = m
	t.viewDir = rotateVec(geom.V3(0, 0, -1), rotation.X, rotation.Y, rotation.Z).Normalize()
	return true
}

// WorldToScreen projects p to screen pixels. depth is z/w. ok is false when
// p is not finite (depth 0) or the point lies at infinity (depth MaxFloat64).
func (t *Transform) WorldToScreen(p geom.Vec3) (s geom.Vec2, depth float64, ok bool) {
	if !p.IsValid() {
		return geom.InvalidVec2(), 0, false
	}
	x, y, z, w := t.matrix.Apply(p)
	if math.Abs(w) < wEpsilon {
		return geom.InvalidVec2(), math.MaxFloat64, false
	}
	s = geom.V2(x/w, y/w)
	if !s.IsValid() {
		return geom.InvalidVec2(), 0, false
	}
	return s, z / w, true
}

// ScreenToWorld maps a screen point back to world space by replaying the
// forward chain in reverse. worldZ is the screen-space depth of the point;
// passing the depth returned by WorldToScreen recovers the original point.
// For any other depth on a rotated view the result is the point on the
// plane facing the camera, not a general inverse.
func (t *Transform) ScreenToWorld(s geom.Vec2, worldZ float64) geom.Vec3 {
	p := geom.V3(s.X/t.zoom.X, -s.Y/t.zoom.Y, worldZ/t.zoom.Z)
	p = p.Sub(t.shift).Sub(t.pivot)
	p = rotateVec(p, 0, 0, -t.rotation.Z)
	p = rotateVec(p, 0, -t.rotation.Y, 0)
	p = rotateVec(p, -t.rotation.X, 0, 0)
	return p.Add(t.pivot)
}

// ScreenToViewPlane reverses scale and shift only.
func (t *Transform) ScreenToViewPlane(s geom.Vec2, worldZ float64) geom.Vec3 {
	return geom.V3(
		s.X/t.zoom.X-t.shift.X,
		-s.Y/t.zoom.Y-t.shift.Y,
		worldZ/t.zoom.Z-t.shift.Z,
	)
}

// DistToScreen converts a world distance to pixels using the average zoom.
// It returns 0 for non-finite input or output.
func (t *Transform) DistToScreen(d float64) float64 {
	if math.IsNaN(d) || t.zoomAvg <= 0 {
		return 0
	}
	r := d * t.zoomAvg
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// DistToWorld converts a pixel distance to world units.
func (t *Transform) DistToWorld(px float64) float64 {
	if math.IsNaN(px) || t.zoomAvg <= 0 {
		return 0
	}
	return px / t.zoomAvg
}

// ClampToViewport clamps p into [0, width] × [0, height].
func (t *Transform) ClampToViewport(p geom.Vec2) geom.Vec2 {
	return geom.V2(
		min(max(p.X, 0), t.viewport.Width),
		min(max(p.Y, 0), t.viewport.Height),
	)
}

// ScreenRect projects the eight corners of b and returns their screen AABB.
func (t *Transform) ScreenRect(b geom.Box3) (geom.Rect2, bool) {
	if b.IsEmpty() {
		return geom.Rect2{}, false
	}
	lo := geom.V2(math.Inf(1), math.Inf(1))
	hi := geom.V2(math.Inf(-1), math.Inf(-1))
	for i := range 8 {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		s, _, ok := t.WorldToScreen(c)
		if !ok {
			return geom.Rect2{}, false
		}
		lo = geom.V2(min(lo.X, s.X), min(lo.Y, s.Y))
		hi = geom.V2(max(hi.X, s.X), max(hi.Y, s.Y))
	}
	return geom.RectFromPoints(lo, hi), true
}

// IsBoundsVisible reports whether the screen AABB of b's eight projected
// corners overlaps the viewport.
func (t *Transform) IsBoundsVisible(b geom.Box3) bool {
	r, ok := t.ScreenRect(b)
	if !ok {
		return false
	}
	return r.IntersectsWith(t.viewport)
}
