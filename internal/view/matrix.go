package view

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
)

// Matrix4 is a row-major 4×4 homogeneous transform.
// A point is transformed as a column vector: p' = M · [x, y, z, 1].
type Matrix4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate returns a translation matrix.
func Translate(v geom.Vec3) Matrix4 {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = v.X, v.Y, v.Z
	return m
}

// Scale returns a scale matrix.
func Scale(sx, sy, sz float64) Matrix4 {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = sx, sy, sz
	return m
}

// RotateX returns a rotation about the X axis (radians).
func RotateX(a float64) Matrix4 {
	c, s := math.Cos(a), math.Sin(a)
	return Matrix4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateY returns a rotation about the Y axis (radians).
func RotateY(a float64) Matrix4 {
	c, s := math.Cos(a), math.Sin(a)
	return Matrix4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateZ returns a rotation about the Z axis (radians).
func RotateZ(a float64) Matrix4 {
	c, s := math.Cos(a), math.Sin(a)
	return Matrix4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Multiply returns m · o, which applies o first, then m.
func (m Matrix4) Multiply(o Matrix4) Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Apply transforms the homogeneous point [p, 1] and returns (x, y, z, w)
// without the perspective divide.
func (m Matrix4) Apply(p geom.Vec3) (x, y, z, w float64) {
	v := [4]float64{p.X, p.Y, p.Z, 1}
	var out [4]float64
	for i := 0; i < 4; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2] + m[i][3]*v[3]
	}
	return out[0], out[1], out[2], out[3]
}

// IsFinite reports whether every entry is finite.
func (m Matrix4) IsFinite() bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return false
			}
		}
	}
	return true
}

// rotateVec rotates p by rx, then ry, then rz. Angles below 1e-10 are
// skipped outright so that an unrotated view stays bit-exact.
func rotateVec(p geom.Vec3, rx, ry, rz float64) geom.Vec3 {
	if math.Abs(rx) > 1e-10 {
		c, s := math.Cos(rx), math.Sin(rx)
		p = geom.Vec3{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
	}
	if math.Abs(ry) > 1e-10 {
		c, s := math.Cos(ry), math.Sin(ry)
		p = geom.Vec3{X: p.X*c + p.Z*s, Y: p.Y, Z: -p.X*s + p.Z*c}
	}
	if math.Abs(rz) > 1e-10 {
		c, s := math.Cos(rz), math.Sin(rz)
		p = geom.Vec3{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c, Z: p.Z}
	}
	return p
}
