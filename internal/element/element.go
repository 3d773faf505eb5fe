// Package element defines the drawable shapes of a scene: line, circle,
// rectangle, label and cylinder.
//
// The set is closed. Code that needs per-shape behavior switches on the
// concrete type.
package element

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/typeid"
)

var (
	ErrNegativeRadius    = errors.New("radius must not be negative")
	ErrDegenerateAxis    = errors.New("axis has zero length")
	ErrInvalidGeometry   = errors.New("geometry is not finite")
	ErrControlPointRange = errors.New("control point index out of range")
)

// ID is the opaque handle of an element.
type ID string

// NewID generates a fresh element handle.
func NewID() ID { return ID(typeid.NewElementID()) }

// Kind tags the concrete shape for serialization.
type Kind string

const (
	KindLine      Kind = "line"
	KindCircle    Kind = "circle"
	KindRectangle Kind = "rectangle"
	KindLabel     Kind = "label"
	KindCylinder  Kind = "cylinder"
)

// Style holds the paint attributes shared by all shapes. Labels draw their
// text with Stroke.
type Style struct {
	Stroke geom.Color `json:"stroke"`
	Width  float64    `json:"width"`
	Fill   geom.Color `json:"fill"`
	Filled bool       `json:"filled"`
}

// DefaultStyle is a 1px black outline without fill.
func DefaultStyle() Style {
	return Style{Stroke: geom.Black, Width: 1, Fill: geom.Transparent}
}

// ChangeFunc is called with the element's handle after its bounds may have
// changed.
type ChangeFunc func(ID)

// Element is implemented by every shape.
type Element interface {
	ID() ID
	Kind() Kind
	Bounds() geom.Box3
	HitTest(p geom.Vec3, tol float64) bool
	ControlPoints() []geom.Vec3
	ControlPointAt(p geom.Vec3, tol float64) (int, bool)
	MoveControlPoint(i int, p geom.Vec3) error
	Translate(d geom.Vec3)

	// Clone returns a detached, unselected copy with a fresh handle.
	Clone() Element

	Style() Style
	SetStyle(s Style)
	Selected() bool
	SetSelected(v bool)

	// Attach installs the bounds-changed callback of the owning layer.
	// Passing nil detaches.
	Attach(fn ChangeFunc)
	Attached() bool

	common() *base
}

// base carries the fields common to every shape.
type base struct {
	id       ID
	style    Style
	selected bool
	onChange ChangeFunc
}

func newBase(s Style) base {
	return base{id: NewID(), style: s}
}

func (b *base) ID() ID               { return b.id }
func (b *base) Style() Style         { return b.style }
func (b *base) SetStyle(s Style)     { b.style = s }
func (b *base) Selected() bool       { return b.selected }
func (b *base) SetSelected(v bool)   { b.selected = v }
func (b *base) Attach(fn ChangeFunc) { b.onChange = fn }
func (b *base) Attached() bool       { return b.onChange != nil }
func (b *base) common() *base        { return b }

// WithID replaces the generated handle. Importers use it to keep handles
// stable across a round trip. It must be called before the element is
// added to a layer.
func WithID[E Element](e E, id ID) E {
	if id != "" {
		e.common().id = id
	}
	return e
}

// cloneBase resets the per-instance fields of a copied shape.
func (b *base) cloneBase() base {
	return base{id: NewID(), style: b.style}
}

func (b *base) changed() {
	if b.onChange != nil {
		b.onChange(b.id)
	}
}

func rejectInvalid(what string, id ID, pts ...geom.Vec3) bool {
	for _, p := range pts {
		if !p.IsValid() {
			logging.Logger().Warn("rejected non-finite input", "field", what, "element", id, "value", p)
			return true
		}
	}
	return false
}

func rangeError(k Kind, i, n int) error {
	return fmt.Errorf("%s has %d control points, got index %d: %w", k, n, i, ErrControlPointRange)
}

// controlPointAt returns the first point within tol of p.
func controlPointAt(pts []geom.Vec3, p geom.Vec3, tol float64) (int, bool) {
	for i, c := range pts {
		if c.Distance(p) <= tol {
			return i, true
		}
	}
	return -1, false
}

// closestOnSegment returns the point of segment a-b nearest to p and the
// clamped projection parameter. Segments with squared length below 1e-8
// collapse to a.
func closestOnSegment(a, b, p geom.Vec3) (geom.Vec3, float64) {
	d := b.Sub(a)
	lenSq := d.LengthSquared()
	if lenSq < 1e-8 {
		return a, 0
	}
	t := p.Sub(a).Dot(d) / lenSq
	t = max(0, min(1, t))
	return a.Add(d.Scale(t)), t
}

// planeBasis returns two unit vectors spanning the plane orthogonal to n.
func planeBasis(n geom.Vec3) (u, v geom.Vec3) {
	temp := geom.V3(1, 0, 0)
	if math.Abs(n.X) >= 0.9 {
		temp = geom.V3(0, 1, 0)
	}
	u = n.Cross(temp).Normalize()
	v = n.Cross(u).Normalize()
	return u, v
}
