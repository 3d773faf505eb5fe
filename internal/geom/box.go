package geom

import (
	"fmt"
	"math"
)

// Box3 is an axis-aligned bounding box in world space.
// Min <= Max holds on every axis for any non-empty box.
type Box3 struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewBox3 builds a box from two arbitrary corners, sorting them per axis.
func NewBox3(a, b Vec3) Box3 {
	return Box3{Min: a.Min(b), Max: a.Max(b)}
}

// EmptyBox3 returns the empty sentinel. It is the identity of Union and
// intersects nothing.
func EmptyBox3() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoxAround returns the box centered on c extending r in every direction.
func BoxAround(c Vec3, r float64) Box3 {
	d := Vec3{r, r, r}
	return NewBox3(c.Sub(d), c.Add(d))
}

// IsEmpty reports whether the box has Min > Max on some axis.
func (b Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// IsValid reports whether the box is non-empty with finite corners.
func (b Box3) IsValid() bool {
	return !b.IsEmpty() && b.Min.IsValid() && b.Max.IsValid()
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(o Box3) Box3 {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// UnionAll folds Union over boxes, starting from the empty sentinel.
func UnionAll(boxes ...Box3) Box3 {
	out := EmptyBox3()
	for _, b := range boxes {
		out = out.Union(b)
	}
	return out
}

// IntersectsWith reports whether the boxes overlap on all three axes.
// Touching faces count as overlap.
func (b Box3) IntersectsWith(o Box3) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Contains reports whether p lies inside the box, boundary included.
func (b Box3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsBox reports whether o lies entirely inside b.
func (b Box3) ContainsBox(o Box3) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Contains(o.Min) && b.Contains(o.Max)
}

// Center returns the midpoint of the box.
func (b Box3) Center() Vec3 {
	return Vec3{
		(b.Min.X + b.Max.X) / 2,
		(b.Min.Y + b.Max.Y) / 2,
		(b.Min.Z + b.Max.Z) / 2,
	}
}

func (b Box3) Width() float64  { return b.Max.X - b.Min.X }
func (b Box3) Height() float64 { return b.Max.Y - b.Min.Y }
func (b Box3) Depth() float64  { return b.Max.Z - b.Min.Z }

// Inflate grows the box by d on every side. Empty boxes stay empty.
func (b Box3) Inflate(d float64) Box3 {
	if b.IsEmpty() {
		return b
	}
	v := Vec3{d, d, d}
	return NewBox3(b.Min.Sub(v), b.Max.Add(v))
}

func (b Box3) String() string {
	if b.IsEmpty() {
		return "Box3(empty)"
	}
	return fmt.Sprintf("Box3(%v - %v)", b.Min, b.Max)
}
