package geom

// Rect2 is a screen-space rectangle. Width and Height are never negative.
type Rect2 struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect2 returns a rect with negative sizes clamped to zero.
func NewRect2(x, y, w, h float64) Rect2 {
	return Rect2{X: x, Y: y, Width: max(w, 0), Height: max(h, 0)}
}

// RectFromPoints returns the rect spanned by two screen points.
func RectFromPoints(a, b Vec2) Rect2 {
	x, y := min(a.X, b.X), min(a.Y, b.Y)
	return NewRect2(x, y, max(a.X, b.X)-x, max(a.Y, b.Y)-y)
}

func (r Rect2) Left() float64   { return r.X }
func (r Rect2) Top() float64    { return r.Y }
func (r Rect2) Right() float64  { return r.X + r.Width }
func (r Rect2) Bottom() float64 { return r.Y + r.Height }

// IsEmpty checks if the rect has zero area.
func (r Rect2) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains checks if a point is inside the rect.
func (r Rect2) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// IntersectsWith reports whether the interiors overlap.
func (r Rect2) IntersectsWith(o Rect2) bool {
	return o.X < r.Right() && o.Right() > r.X && o.Y < r.Bottom() && o.Bottom() > r.Y
}

// Center returns the center point of the rect.
func (r Rect2) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}
