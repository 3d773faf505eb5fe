package element

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
)

const (
	// EllipseSamples is the number of circle points used for a fit.
	EllipseSamples = 64
	// PolylineSamples is the number of segments drawn when a fit fails.
	PolylineSamples = 32

	ellipseAxisFactor = 2.5
	maxEllipseAxis    = 10000
)

// Projector maps world points to the screen. *view.Transform satisfies it.
type Projector interface {
	WorldToScreen(p geom.Vec3) (geom.Vec2, float64, bool)
	ViewDirection() geom.Vec3
	DistToScreen(d float64) float64
}

// Ellipse is a fitted screen-space ellipse. Angle is in radians.
type Ellipse struct {
	Center geom.Vec2
	Width  float64
	Height float64
	Angle  float64
}

// Project maps pts to the screen. It fails if any point does not project
// to a finite position.
func Project(p Projector, pts []geom.Vec3) ([]geom.Vec2, bool) {
	out := make([]geom.Vec2, len(pts))
	for i, w := range pts {
		s, _, ok := p.WorldToScreen(w)
		if !ok || !s.IsValid() {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// FitEllipse fits an ellipse to a point cloud from the eigenvalues of its
// covariance. It needs at least five points.
func FitEllipse(pts []geom.Vec2) (Ellipse, bool) {
	if len(pts) < 5 {
		return Ellipse{}, false
	}
	n := float64(len(pts))
	var c geom.Vec2
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Scale(1 / n)

	var mxx, mxy, myy float64
	for _, p := range pts {
		dx, dy := p.X-c.X, p.Y-c.Y
		mxx += dx * dx
		mxy += dx * dy
		myy += dy * dy
	}
	mxx, mxy, myy = mxx/n, mxy/n, myy/n

	tr := mxx + myy
	det := mxx*myy - mxy*mxy
	disc := tr*tr - 4*det
	if disc < 0 && disc > -1e-9*tr*tr {
		// rounding on near-circular clouds
		disc = 0
	}
	if disc < 0 || math.IsNaN(disc) {
		return Ellipse{}, false
	}
	sq := math.Sqrt(disc)
	l1 := (tr + sq) / 2
	l2 := math.Max((tr-sq)/2, 0)

	var angle float64
	switch {
	case math.Abs(mxy) > 1e-10:
		angle = math.Atan2(l1-mxx, mxy)
	case mxx > myy:
		angle = 0
	default:
		angle = math.Pi / 2
	}

	return Ellipse{
		Center: c,
		Width:  clampAxis(2 * math.Sqrt(l1) * ellipseAxisFactor),
		Height: clampAxis(2 * math.Sqrt(l2) * ellipseAxisFactor),
		Angle:  angle,
	}, true
}

func clampAxis(v float64) float64 {
	return math.Max(1, math.Min(v, maxEllipseAxis))
}
