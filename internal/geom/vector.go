package geom

import (
	"fmt"
	"math"
)

// Vec2 is a point or displacement in screen space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a point or displacement in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V2 returns a Vec2.
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// V3 returns a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// InvalidVec2 is the sentinel returned when a projection has no finite result.
func InvalidVec2() Vec2 { return Vec2{X: math.NaN(), Y: math.NaN()} }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// IsValid reports whether both components are finite.
func (v Vec2) IsValid() bool { return finite(v.X) && finite(v.Y) }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Length() float64      { return math.Hypot(v.X, v.Y) }

// Distance returns the euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Length() }

func (v Vec2) String() string { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }

// IsValid reports whether all components are finite.
func (v Vec3) IsValid() bool { return finite(v.X) && finite(v.Y) && finite(v.Z) }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSquared() float64 { return v.Dot(v) }
func (v Vec3) Length() float64        { return math.Sqrt(v.Dot(v)) }

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// Normalize returns the unit vector along v, or v unchanged when its length
// is below 1e-10.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < 1e-10 {
		return v
	}
	return v.Scale(1 / l)
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 { return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)} }

// XY drops the Z component.
func (v Vec3) XY() Vec2 { return Vec2{v.X, v.Y} }

// Min returns the component-wise minimum.
func (v Vec3) Min(o Vec3) Vec3 { return Vec3{min(v.X, o.X), min(v.Y, o.Y), min(v.Z, o.Z)} }

// Max returns the component-wise maximum.
func (v Vec3) Max(o Vec3) Vec3 { return Vec3{max(v.X, o.X), max(v.Y, o.Y), max(v.Z, o.Z)} }

func (v Vec3) String() string { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }
