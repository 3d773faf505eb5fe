package view

import (
	"testing"

	"github.com/inamate/vectorscene/internal/geom"
)

type fakeLayer struct {
	visible bool
	bounds  geom.Box3
}

func (l fakeLayer) IsVisible() bool   { return l.visible }
func (l fakeLayer) Bounds() geom.Box3 { return l.bounds }

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory[int](3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	for _, want := range []int{5, 4, 3} {
		got, ok := h.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = %d, %v, want %d", got, ok, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("Pop() on empty history = ok")
	}
}

func TestZoomPrevious(t *testing.T) {
	tr := newTestTransform()
	z := NewZoomer(5)
	original := tr.State()

	z.ZoomIn(tr, geom.V2(100, 100))
	z.ZoomOut(tr, geom.V2(300, 200))
	if z.HistoryLen() != 2 {
		t.Fatalf("HistoryLen() = %d, want 2", z.HistoryLen())
	}

	z.ZoomPrevious(tr)
	z.ZoomPrevious(tr)
	if got := tr.State(); got != original {
		t.Errorf("State() after two ZoomPrevious = %+v, want %+v", got, original)
	}
	if z.ZoomPrevious(tr) {
		t.Error("ZoomPrevious() with empty history = true")
	}
}

func TestZoomExtentsCentersBounds(t *testing.T) {
	tr := newTestTransform()
	tr.SetRotation(geom.V3(0.3, 0, 0))
	z := NewZoomer(0)

	b := geom.NewBox3(geom.V3(100, 100, 0), geom.V3(300, 200, 0))
	if !z.ZoomExtents(tr, b, 5) {
		t.Fatal("ZoomExtents() = false")
	}

	if tr.Rotation() != (geom.Vec3{}) {
		t.Errorf("Rotation() = %v, want zero", tr.Rotation())
	}
	want := min(800/(200*1.05), 600/(100*1.05))
	if !near(tr.Zoom().X, want) {
		t.Errorf("Zoom().X = %v, want %v", tr.Zoom().X, want)
	}
	center, _, _ := tr.WorldToScreen(b.Center())
	if !nearVec2(center, geom.V2(400, 300)) {
		t.Errorf("center projects to %v, want (400, 300)", center)
	}
	if z.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", z.HistoryLen())
	}
}

func TestZoomExtentsEmptyIsNoOp(t *testing.T) {
	tr := newTestTransform()
	before := tr.State()
	z := NewZoomer(0)
	if z.ZoomExtents(tr, geom.EmptyBox3(), 5) {
		t.Error("ZoomExtents(empty) = true")
	}
	if tr.State() != before || z.HistoryLen() != 0 {
		t.Error("ZoomExtents(empty) changed state")
	}
}

func TestExtents(t *testing.T) {
	a := geom.NewBox3(geom.V3(0, 0, 0), geom.V3(1, 1, 1))
	b := geom.NewBox3(geom.V3(5, 5, 5), geom.V3(6, 7, 8))
	hidden := geom.NewBox3(geom.V3(-100, -100, -100), geom.V3(0, 0, 0))

	got := Extents([]fakeLayer{{true, a}, {true, b}, {false, hidden}})
	if want := a.Union(b); got != want {
		t.Errorf("Extents() = %v, want %v", got, want)
	}

	def := geom.NewBox3(geom.V3(0, 0, 0), geom.V3(50, 50, 50))
	if got := Extents([]fakeLayer{{false, a}}); got != def {
		t.Errorf("Extents(no visible) = %v, want %v", got, def)
	}
}

func TestPan(t *testing.T) {
	tr := newTestTransform()
	tr.SetZoom(geom.V3(2, 2, 1))
	p := geom.V3(10, 10, 0)
	before, _, _ := tr.WorldToScreen(p)
	Pan(tr, 15, -8)
	after, _, _ := tr.WorldToScreen(p)
	if !nearVec2(after.Sub(before), geom.V2(15, -8)) {
		t.Errorf("pan moved point by %v, want (15, -8)", after.Sub(before))
	}
}
