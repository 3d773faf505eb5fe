package view

import (
	"math"
	"testing"

	"github.com/inamate/vectorscene/internal/geom"
)

const eps = 1e-3

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

func nearVec3(a, b geom.Vec3) bool { return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) }

func nearVec2(a, b geom.Vec2) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func newTestTransform() *Transform {
	return NewTransform(geom.NewRect2(0, 0, 800, 600))
}

func TestWorldToScreenIdentity(t *testing.T) {
	tr := newTestTransform()
	s, depth, ok := tr.WorldToScreen(geom.V3(10, 20, 3))
	if !ok {
		t.Fatal("WorldToScreen() ok = false")
	}
	if want := geom.V2(10, -20); !nearVec2(s, want) {
		t.Errorf("WorldToScreen() = %v, want %v", s, want)
	}
	if !near(depth, 3) {
		t.Errorf("depth = %v, want 3", depth)
	}
}

func TestWorldToScreenRejectsInvalidPoint(t *testing.T) {
	tr := newTestTransform()
	s, depth, ok := tr.WorldToScreen(geom.V3(math.NaN(), 0, 0))
	if ok || s.IsValid() || depth != 0 {
		t.Errorf("WorldToScreen(NaN) = %v, %v, %v, want invalid", s, depth, ok)
	}
}

func TestScreenToWorldRoundTripNoRotation(t *testing.T) {
	tr := newTestTransform()
	tr.SetZoom(geom.V3(2.5, 2.5, 1))
	tr.SetShift(geom.V3(40, -17, 3))
	tr.SetPivot(geom.V3(5, 5, 0))

	points := []geom.Vec3{
		geom.V3(0, 0, 0),
		geom.V3(100, -250, 0),
		geom.V3(-3.25, 7.5, 0),
		geom.V3(1e4, 1e4, 0),
	}
	for _, p := range points {
		s, depth, ok := tr.WorldToScreen(p)
		if !ok {
			t.Fatalf("WorldToScreen(%v) failed", p)
		}
		if got := tr.ScreenToWorld(s, depth); !nearVec3(got, p) {
			t.Errorf("ScreenToWorld(WorldToScreen(%v)) = %v", p, got)
		}
	}
}

func TestScreenToWorldRoundTripWithDepth(t *testing.T) {
	tr := newTestTransform()
	tr.SetZoom(geom.V3(1.5, 1.5, 1.5))
	tr.SetRotation(geom.V3(0.4, -0.7, 1.2))
	tr.SetPivot(geom.V3(10, 0, -4))

	p := geom.V3(12, -8, 30)
	s, depth, ok := tr.WorldToScreen(p)
	if !ok {
		t.Fatal("WorldToScreen() failed")
	}
	if got := tr.ScreenToWorld(s, depth); !nearVec3(got, p) {
		t.Errorf("ScreenToWorld() = %v, want %v", got, p)
	}
}

func TestZoomKeepsPivotStable(t *testing.T) {
	tests := []struct {
		name     string
		pivot    geom.Vec2
		factor   float64
		rotation geom.Vec3
	}{
		{"zoom in at center", geom.V2(400, 300), 1.1, geom.Vec3{}},
		{"zoom out at corner", geom.V2(0, 0), 0.9, geom.Vec3{}},
		{"large factor", geom.V2(123, 456), 7, geom.Vec3{}},
		{"rotated view", geom.V2(250, 80), 1.3, geom.V3(0, 0, 0.6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTransform()
			tr.SetShift(geom.V3(30, -20, 0))
			tr.SetRotation(tt.rotation)
			z := NewZoomer(0)

			world := tr.ScreenToWorld(tt.pivot, 0)
			if !z.Zoom(tr, tt.pivot, tt.factor) {
				t.Fatal("Zoom() = false")
			}
			got, _, ok := tr.WorldToScreen(world)
			if !ok || !nearVec2(got, tt.pivot) {
				t.Errorf("pivot after zoom = %v, want %v", got, tt.pivot)
			}
		})
	}
}

func TestZoomRejectsBadFactor(t *testing.T) {
	tr := newTestTransform()
	z := NewZoomer(0)
	for _, f := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		if z.Zoom(tr, geom.V2(1, 1), f) {
			t.Errorf("Zoom(factor=%v) = true, want false", f)
		}
	}
	if tr.Zoom() != geom.V3(1, 1, 1) {
		t.Errorf("Zoom() = %v after rejected zooms", tr.Zoom())
	}
}

func TestSettersRejectNonFinite(t *testing.T) {
	tr := newTestTransform()
	tr.SetShift(geom.V3(1, 2, 3))
	if tr.SetShift(geom.V3(math.NaN(), 0, 0)) {
		t.Error("SetShift(NaN) = true")
	}
	if tr.Shift() != geom.V3(1, 2, 3) {
		t.Errorf("Shift() = %v, want prior value", tr.Shift())
	}
	if tr.SetRotation(geom.V3(0, math.Inf(1), 0)) {
		t.Error("SetRotation(Inf) = true")
	}
	if tr.SetPivot(geom.V3(0, 0, math.NaN())) {
		t.Error("SetPivot(NaN) = true")
	}
}

func TestSettersRejectOverflow(t *testing.T) {
	tr := newTestTransform()
	tr.SetZoom(geom.V3(10, 10, 10))
	before := tr.State()
	m := tr.Matrix()

	if tr.SetShift(geom.V3(1e308, 0, 0)) {
		t.Error("SetShift(1e308) = true, want false")
	}
	if tr.State() != before || tr.Matrix() != m {
		t.Errorf("State() = %+v after rejected shift, want %+v", tr.State(), before)
	}
	if s, _, _ := tr.WorldToScreen(geom.V3(1, 0, 0)); !nearVec2(s, geom.V2(10, 0)) {
		t.Errorf("WorldToScreen() = %v, want (10, 0)", s)
	}
}

func TestZoomOverflowKeepsView(t *testing.T) {
	tr := newTestTransform()
	tr.SetShift(geom.V3(1e300, 0, 0))
	before := tr.State()

	z := NewZoomer(0)
	if z.Zoom(tr, geom.V2(400, 300), 1e10) {
		t.Error("Zoom() = true for an overflowing view")
	}
	if tr.State() != before {
		t.Errorf("State() = %+v, want %+v", tr.State(), before)
	}
}

func TestSetZoomClamps(t *testing.T) {
	tr := newTestTransform()
	tr.SetZoom(geom.V3(-5, 0, 3))
	want := geom.V3(MinZoom, MinZoom, 3)
	if tr.Zoom() != want {
		t.Errorf("Zoom() = %v, want %v", tr.Zoom(), want)
	}
	if avg := (MinZoom*2 + 3) / 3; !near(tr.ZoomAverage(), avg) {
		t.Errorf("ZoomAverage() = %v, want %v", tr.ZoomAverage(), avg)
	}
}

func TestRotationNormalized(t *testing.T) {
	tr := newTestTransform()
	tr.SetRotation(geom.V3(5*math.Pi, -7*math.Pi, math.Pi))
	r := tr.Rotation()
	for _, a := range []float64{r.X, r.Y, r.Z} {
		if a > 2*math.Pi || a < -2*math.Pi {
			t.Errorf("angle %v outside [-2π, 2π]", a)
		}
	}
	if !near(r.X, math.Pi) || !near(r.Y, -math.Pi) || !near(r.Z, math.Pi) {
		t.Errorf("Rotation() = %v", r)
	}
}

func TestViewDirection(t *testing.T) {
	tr := newTestTransform()
	if d := tr.ViewDirection(); !nearVec3(d, geom.V3(0, 0, -1)) {
		t.Errorf("ViewDirection() = %v, want (0,0,-1)", d)
	}
	tr.SetRotation(geom.V3(0, math.Pi/2, 0))
	if d := tr.ViewDirection(); !nearVec3(d, geom.V3(-1, 0, 0)) {
		t.Errorf("ViewDirection() = %v, want (-1,0,0)", d)
	}
}

func TestDistToScreen(t *testing.T) {
	tr := newTestTransform()
	tr.SetZoom(geom.V3(2, 4, 3))
	if got := tr.DistToScreen(10); !near(got, 30) {
		t.Errorf("DistToScreen(10) = %v, want 30", got)
	}
	if got := tr.DistToScreen(math.NaN()); got != 0 {
		t.Errorf("DistToScreen(NaN) = %v, want 0", got)
	}
	if got := tr.DistToWorld(30); !near(got, 10) {
		t.Errorf("DistToWorld(30) = %v, want 10", got)
	}
}

func TestIsBoundsVisible(t *testing.T) {
	tr := newTestTransform()
	tr.SetShift(geom.V3(0, -600, 0))
	tests := []struct {
		name string
		b    geom.Box3
		want bool
	}{
		{"on screen", geom.NewBox3(geom.V3(10, 10, 0), geom.V3(50, 50, 0)), true},
		{"off to the left", geom.NewBox3(geom.V3(-100, 10, 0), geom.V3(-50, 50, 0)), false},
		{"empty", geom.EmptyBox3(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.IsBoundsVisible(tt.b); got != tt.want {
				t.Errorf("IsBoundsVisible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBoundsVisibleRotated(t *testing.T) {
	tr := newTestTransform()
	tr.SetRotation(geom.V3(0, 0, math.Pi/4))
	tr.SetShift(geom.V3(400, -300, 0))

	// Min and Max project onto one vertical screen line at this angle.
	b := geom.NewBox3(geom.V3(-50, -50, 0), geom.V3(50, 50, 0))
	r, ok := tr.ScreenRect(b)
	if !ok {
		t.Fatal("ScreenRect() ok = false")
	}
	want := 100 * math.Sqrt2
	if !near(r.Width, want) || !near(r.Height, want) {
		t.Errorf("ScreenRect() = %+v, want %gx%g", r, want, want)
	}
	if !tr.IsBoundsVisible(b) {
		t.Error("IsBoundsVisible() = false for a box at the view center")
	}
}

func TestSetViewportNoOp(t *testing.T) {
	tr := newTestTransform()
	before := tr.Matrix()
	tr.SetViewport(geom.NewRect2(0, 0, 800, 600))
	if tr.Matrix() != before {
		t.Error("matrix changed on identical viewport")
	}
}

func TestClampToViewport(t *testing.T) {
	tr := newTestTransform()
	got := tr.ClampToViewport(geom.V2(-10, 900))
	if got != geom.V2(0, 600) {
		t.Errorf("ClampToViewport() = %v, want (0, 600)", got)
	}
}
