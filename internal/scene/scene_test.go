package scene

import (
	"testing"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
)

func newLine(t *testing.T, a, b geom.Vec3) *element.Line {
	t.Helper()
	l, err := element.NewLine(a, b, element.DefaultStyle())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLayerRebuildBounds(t *testing.T) {
	l := NewLayer("test")
	l.RebuildBounds()
	if !l.Bounds().IsEmpty() {
		t.Errorf("Bounds() of empty layer = %v, want empty", l.Bounds())
	}

	a := newLine(t, geom.V3(0, 0, 0), geom.V3(1, 1, 0))
	b := newLine(t, geom.V3(5, -2, 1), geom.V3(6, 3, 4))
	l.AddElement(a, true)
	l.AddElement(b, true)

	want := a.Bounds().Union(b.Bounds())
	if l.Bounds() != want {
		t.Errorf("Bounds() = %v, want %v", l.Bounds(), want)
	}

	l.RemoveElement(b)
	if l.Bounds() != a.Bounds() {
		t.Errorf("Bounds() after remove = %v, want %v", l.Bounds(), a.Bounds())
	}
}

func TestLayerElementChangeRebuildsBounds(t *testing.T) {
	l := NewLayer("test")
	a := newLine(t, geom.V3(0, 0, 0), geom.V3(1, 1, 0))
	l.AddElement(a, true)

	changes := 0
	l.onChange = func(*Layer) { changes++ }

	a.SetEndpoints(geom.V3(0, 0, 0), geom.V3(10, 10, 0))
	if l.Bounds().Max != geom.V3(10, 10, 0) {
		t.Errorf("Bounds().Max = %v, want (10, 10, 0)", l.Bounds().Max)
	}
	if !l.IndexDirty() {
		t.Error("IndexDirty() = false after member change")
	}

	l.Batch(func() {
		a.Translate(geom.V3(1, 0, 0))
		a.Translate(geom.V3(1, 0, 0))
	})
	if changes != 2 {
		t.Errorf("change signals = %d, want 2", changes)
	}
	if l.Bounds().Max.X != 12 {
		t.Errorf("Bounds().Max.X after batch = %v, want 12", l.Bounds().Max.X)
	}

	l.RemoveElement(a)
	if a.Attached() {
		t.Error("removed element still attached")
	}
}

func TestLayerAddRejected(t *testing.T) {
	l := NewLayer("test")
	a := newLine(t, geom.V3(0, 0, 0), geom.V3(1, 1, 0))
	if !l.AddElement(a, true) {
		t.Fatal("AddElement() = false")
	}
	if l.AddElement(a, true) {
		t.Error("AddElement() of a member = true")
	}
	if l.AddElement(nil, true) {
		t.Error("AddElement(nil) = true")
	}

	other := NewLayer("other")
	if other.AddElement(a, true) {
		t.Error("AddElement() of an element owned elsewhere = true")
	}

	l.SetLocked(true)
	b := newLine(t, geom.V3(0, 0, 0), geom.V3(1, 1, 0))
	if l.AddElement(b, true) || l.RemoveElement(a) || l.Clear() {
		t.Error("locked layer accepted a mutation")
	}
}

func TestLayerQueryElementsInFrustum(t *testing.T) {
	l := NewLayer("test")
	l.SetIndexCapacity(1)
	var lines []*element.Line
	for i := range 10 {
		x := float64(i * 10)
		ln := newLine(t, geom.V3(x, 0, 0), geom.V3(x+1, 1, 0))
		lines = append(lines, ln)
		l.AddElement(ln, false)
	}

	got := l.QueryElementsInFrustum(geom.NewBox3(geom.V3(15, -1, -1), geom.V3(35, 2, 1)))
	if len(got) != 2 || got[0].ID() != lines[2].ID() && got[1].ID() != lines[2].ID() {
		t.Errorf("QueryElementsInFrustum() = %d items, want lines 2 and 3", len(got))
	}
	if l.IndexDirty() {
		t.Error("IndexDirty() = true after query")
	}

	if got := l.QueryElementsInFrustum(geom.NewBox3(geom.V3(500, 500, 0), geom.V3(600, 600, 0))); len(got) != 0 {
		t.Errorf("QueryElementsInFrustum(outside) = %d items, want 0", len(got))
	}

	lines[0].Translate(geom.V3(20, 0, 0))
	got = l.QueryElementsInFrustum(geom.NewBox3(geom.V3(15, -1, -1), geom.V3(25, 2, 1)))
	if len(got) != 2 {
		t.Errorf("QueryElementsInFrustum() after move = %d items, want 2", len(got))
	}
}

func TestManagerStartsWithBackground(t *testing.T) {
	m := NewManager()
	if m.Count() != 1 || m.ActiveLayer().Name() != BackgroundLayerName {
		t.Fatalf("NewManager() layers = %d active = %q", m.Count(), m.ActiveLayer().Name())
	}
	if m.RemoveLayer(m.ActiveLayer()) {
		t.Error("RemoveLayer() of the last layer = true")
	}
}

func TestManagerLayerNames(t *testing.T) {
	m := NewManager()
	tests := []struct {
		name string
		want string
	}{
		{"", "Layer 2"},
		{"Roads", "Roads"},
		{"Roads", "Roads (1)"},
		{"Roads", "Roads (2)"},
		{BackgroundLayerName, "Background (1)"},
	}
	for _, tt := range tests {
		if got := m.AddLayer(tt.name).Name(); got != tt.want {
			t.Errorf("AddLayer(%q).Name() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestManagerRemoveReassignsActive(t *testing.T) {
	m := NewManager()
	bg := m.ActiveLayer()
	a := m.AddLayer("a")
	b := m.AddLayer("b")
	m.SetActiveLayer(b)
	bg.SetLocked(true)

	var removed *Layer
	m.SetListener(Listener{LayerRemoved: func(l *Layer) { removed = l }})
	if !m.RemoveLayer(b) {
		t.Fatal("RemoveLayer() = false")
	}
	if removed != b {
		t.Error("LayerRemoved not fired")
	}
	if m.ActiveLayer() != a {
		t.Errorf("ActiveLayer() = %q, want first unlocked layer a", m.ActiveLayer().Name())
	}
	if m.SetActiveLayer(bg) {
		t.Error("SetActiveLayer(locked) = true")
	}
	if m.SetActiveLayer(b) {
		t.Error("SetActiveLayer(removed layer) = true")
	}
}

func TestManagerReorder(t *testing.T) {
	m := NewManager()
	bg := m.ActiveLayer()
	a := m.AddLayer("a")
	b := m.AddLayer("b")

	reordered := 0
	m.SetListener(Listener{LayerReordered: func() { reordered++ }})

	names := func() []string {
		var out []string
		for _, l := range m.Layers() {
			out = append(out, l.Name())
		}
		return out
	}
	check := func(step string, want ...string) {
		t.Helper()
		got := names()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: order = %v, want %v", step, got, want)
				return
			}
		}
	}

	m.BringToFront(bg)
	check("BringToFront", "a", "b", "Background")
	m.SendToBack(b)
	check("SendToBack", "b", "a", "Background")
	m.MoveUp(b)
	check("MoveUp", "a", "b", "Background")
	m.MoveDown(a)
	check("MoveDown at bottom", "a", "b", "Background")
	if m.MoveLayer(a, 7) {
		t.Error("MoveLayer(out of range) = true")
	}
	if reordered != 3 {
		t.Errorf("LayerReordered fired %d times, want 3", reordered)
	}
}

func TestFindElementAtPointTopLayerWins(t *testing.T) {
	m := NewManager()
	bottom := m.ActiveLayer()
	top := m.AddLayer("top")

	under := newLine(t, geom.V3(0, 0, 0), geom.V3(10, 0, 0))
	over := newLine(t, geom.V3(5, -5, 0), geom.V3(5, 5, 0))
	bottom.AddElement(under, true)
	top.AddElement(over, true)

	e, l, ok := m.FindElementAtPoint(geom.V3(5, 0, 0), 0.5)
	if !ok || e.ID() != over.ID() || l != top {
		t.Errorf("FindElementAtPoint() = %v on %v, want element of top layer", e, l)
	}

	top.SetVisible(false)
	e, _, ok = m.FindElementAtPoint(geom.V3(5, 0, 0), 0.5)
	if !ok || e.ID() != under.ID() {
		t.Error("FindElementAtPoint() with hidden top layer did not fall through")
	}
}

func TestSaveRestoreLayerState(t *testing.T) {
	m := NewManager()
	bg := m.ActiveLayer()
	a := m.AddLayer("a")
	saved := m.SaveLayerState()

	b := m.AddLayer("b")
	a.SetName("renamed")
	a.SetVisible(false)
	m.SendToBack(a)
	m.SetActiveLayer(b)

	m.RestoreLayerState(saved)

	layers := m.Layers()
	if len(layers) != 2 || layers[0] != bg || layers[1] != a {
		t.Fatalf("layers after restore = %v", layers)
	}
	if a.Name() != "a" || !a.IsVisible() {
		t.Errorf("layer a = %q visible=%v, want %q visible", a.Name(), a.IsVisible(), "a")
	}
	if m.ActiveLayer() == b {
		t.Error("ActiveLayer() still points at a removed layer")
	}
}

func TestRemoveAllLayers(t *testing.T) {
	m := NewManager()
	m.AddLayer("a")
	m.AddLayer("b")
	m.RemoveAllLayers()
	if m.Count() != 1 || m.ActiveLayer().Name() != BackgroundLayerName {
		t.Errorf("after RemoveAllLayers: %d layers, active %q", m.Count(), m.ActiveLayer().Name())
	}
}

func TestMoveElementsToLayer(t *testing.T) {
	m := NewManager()
	src := m.ActiveLayer()
	dst := m.AddLayer("dst")

	a := newLine(t, geom.V3(0, 0, 0), geom.V3(1, 0, 0))
	b := newLine(t, geom.V3(0, 0, 0), geom.V3(2, 0, 0))
	if n := m.AddElementsToActiveLayer(a, b); n != 2 {
		t.Fatalf("AddElementsToActiveLayer() = %d, want 2", n)
	}
	if src.Bounds().Max.X != 2 {
		t.Errorf("src bounds after batch add = %v", src.Bounds())
	}

	if n := m.MoveElementsToLayer([]element.Element{a}, dst); n != 1 {
		t.Fatalf("MoveElementsToLayer() = %d, want 1", n)
	}
	if l, _ := m.LayerOf(a.ID()); l != dst {
		t.Error("LayerOf(a) is not the destination")
	}
	if src.Count() != 1 || dst.Count() != 1 {
		t.Errorf("counts = %d, %d, want 1, 1", src.Count(), dst.Count())
	}
	if got := len(m.QueryVisibleElements(geom.NewBox3(geom.V3(-1, -1, -1), geom.V3(3, 1, 1)))); got != 2 {
		t.Errorf("QueryVisibleElements() = %d items, want 2", got)
	}
}
