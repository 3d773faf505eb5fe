package format

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/scene"
	"github.com/inamate/vectorscene/internal/view"
)

func newView() *view.Transform {
	return view.NewTransform(geom.NewRect2(0, 0, 400, 300))
}

func mustAdd(t *testing.T, l *scene.Layer, e element.Element, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	if !l.AddElement(e, true) {
		t.Fatalf("AddElement(%s) = false", e.Kind())
	}
}

func buildScene(t *testing.T) *scene.Manager {
	t.Helper()
	lm := scene.NewManager()
	bg := lm.ActiveLayer()

	filled := element.DefaultStyle()
	filled.Filled, filled.Fill = true, geom.Red

	line, err := element.NewLine(geom.V3(1.5, 2.25, 3), geom.V3(10, 20, 0), element.DefaultStyle())
	mustAdd(t, bg, line, err)
	circle, err := element.NewCircle(geom.V3(5, 5, 0), 4, filled)
	mustAdd(t, bg, circle, err)
	disc, err := element.NewCircle(geom.V3(-5, 5, 1), 2, element.DefaultStyle())
	if err == nil {
		disc.SetNormal(geom.V3(0, 0, 1))
	}
	mustAdd(t, bg, disc, err)
	rect, err := element.NewRectangle(geom.V3(0, 0, 0), geom.V3(8, 6, 0), element.DefaultStyle())
	mustAdd(t, bg, rect, err)
	label, err := element.NewLabel(geom.V3(2, 3, 0), "north", 14, element.DefaultStyle())
	mustAdd(t, bg, label, err)
	cyl, err := element.NewCylinder(geom.V3(0, 0, 0), geom.V3(0, 0, 10), 2, filled)
	if err == nil {
		cyl.SetDetailLevel(8)
		cyl.SetDrawEndCaps(false)
	}
	mustAdd(t, bg, cyl, err)

	hidden := lm.AddLayer("Hidden")
	l2, err := element.NewLine(geom.V3(0, 0, 0), geom.V3(1, 1, 0), element.DefaultStyle())
	mustAdd(t, hidden, l2, err)
	hidden.SetVisible(false)
	hidden.SetColor(geom.Green)
	hidden.SetLocked(true)
	return lm
}

func TestSVGRoundTrip(t *testing.T) {
	src := buildScene(t)
	var buf bytes.Buffer
	if err := ExportSVG(&buf, src, newView(), ExportOptions{}); err != nil {
		t.Fatalf("ExportSVG() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`xmlns="http://www.w3.org/2000/svg"`, `style="display:none"`, `data-layer-color="#008000"`, `data-kind="cylinder"`} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %s", want)
		}
	}

	dst := scene.NewManager()
	res, err := ImportSVG(strings.NewReader(out), dst)
	if err != nil {
		t.Fatalf("ImportSVG() error = %v", err)
	}
	if len(res.Layers) != 2 || res.Elements != 7 || res.Skipped != 0 {
		t.Fatalf("ImportSVG() = %d layers, %d elements, %d skipped", len(res.Layers), res.Elements, res.Skipped)
	}
	if len(res.Before) != 1 {
		t.Errorf("Before = %d states, want 1", len(res.Before))
	}
	if dst.Count() != 3 {
		t.Errorf("Count() = %d, want 3", dst.Count())
	}

	bg, hidden := res.Layers[0], res.Layers[1]
	if bg.Name() != "Background (1)" || hidden.Name() != "Hidden" {
		t.Errorf("names = %q, %q", bg.Name(), hidden.Name())
	}
	if hidden.IsVisible() || !hidden.IsLocked() || hidden.Color() != geom.Green {
		t.Errorf("hidden layer = visible %v locked %v color %v", hidden.IsVisible(), hidden.IsLocked(), hidden.Color())
	}
	if hidden.Count() != 1 {
		t.Errorf("hidden layer Count() = %d, want 1", hidden.Count())
	}
	if dst.ActiveLayer().IsLocked() {
		t.Error("active layer is locked")
	}

	var kinds []element.Kind
	for _, e := range bg.Elements() {
		kinds = append(kinds, e.Kind())
		switch v := e.(type) {
		case *element.Line:
			if v.Start() != geom.V3(1.5, 2.25, 3) || v.End() != geom.V3(10, 20, 0) {
				t.Errorf("line = %v %v", v.Start(), v.End())
			}
		case *element.Cylinder:
			if v.Radius() != 2 || v.DetailLevel() != 8 || v.DrawEndCaps() || !v.Style().Filled {
				t.Errorf("cylinder = r %v detail %d caps %v", v.Radius(), v.DetailLevel(), v.DrawEndCaps())
			}
		case *element.Label:
			if v.Text() != "north" || v.FontSize() != 14 {
				t.Errorf("label = %q size %v", v.Text(), v.FontSize())
			}
		case *element.Rectangle:
			if v.End() != geom.V3(8, 6, 0) {
				t.Errorf("rectangle end = %v", v.End())
			}
		}
	}
	if len(kinds) != 6 {
		t.Errorf("background kinds = %v", kinds)
	}

	var use3D, filled int
	for _, e := range bg.Elements() {
		if c, ok := e.(*element.Circle); ok {
			if c.Use3D() {
				use3D++
			}
			if c.Style().Filled && c.Style().Fill == geom.Red {
				filled++
			}
		}
	}
	if use3D != 1 || filled != 1 {
		t.Errorf("circles: %d with normal, %d filled; want 1, 1", use3D, filled)
	}
}

func TestImportPlainSVG(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">
  <line x1="0" y1="0" x2="10" y2="0" stroke="blue" stroke-width="2"/>
  <line x1="abc" y1="0" x2="10" y2="0" stroke="black"/>
  <line x1="0" y1="0" x2="5" y2="5" stroke="none"/>
  <g>
    <polyline points="0,0 10,0 10,10" stroke="#ff0000"/>
    <rect x="1" y="2" width="3" height="4" fill="none"/>
  </g>
  <text x="5" y="6" font-size="9">hello</text>
</svg>`

	lm := scene.NewManager()
	res, err := ImportSVG(strings.NewReader(doc), lm)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Layers) != 1 || res.Layers[0].Name() != ImportedLayerName {
		t.Fatalf("layers = %v", res.Layers)
	}
	if res.Elements != 5 || res.Skipped != 2 {
		t.Errorf("Elements, Skipped = %d, %d; want 5, 2", res.Elements, res.Skipped)
	}

	elems := res.Layers[0].Elements()
	first := elems[0].(*element.Line)
	if first.Style().Stroke != geom.Blue || first.Style().Width != 2 {
		t.Errorf("first line style = %+v", first.Style())
	}
	if b := res.Layers[0].Bounds(); b.IsEmpty() {
		t.Error("imported layer bounds are empty")
	}
}

func TestImportMalformedSVGChangesNothing(t *testing.T) {
	lm := scene.NewManager()
	if _, err := ImportSVG(strings.NewReader("<svg><line"), lm); err == nil {
		t.Fatal("ImportSVG() error = nil for truncated document")
	}
	if lm.Count() != 1 {
		t.Errorf("Count() = %d, want 1", lm.Count())
	}
}

func TestExportRelative(t *testing.T) {
	lm := scene.NewManager()
	line, err := element.NewLine(geom.V3(10, -10, 0), geom.V3(20, -20, 0), element.DefaultStyle())
	mustAdd(t, lm.ActiveLayer(), line, err)

	tr := newView()
	tr.SetZoom(geom.V3(2, 2, 2))

	var buf bytes.Buffer
	if err := ExportSVG(&buf, lm, tr, ExportOptions{Relative: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`width="400"`, `x1="20.00"`, `y1="20.00"`, `x2="40.00"`, `stroke-width="2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("relative export missing %s:\n%s", want, out)
		}
	}
}

func TestExportEmptySceneBounds(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportSVG(&buf, scene.NewManager(), newView(), ExportOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `viewBox="0.00 0.00 100.00 100.00"`) {
		t.Errorf("empty export = %s", buf.String())
	}
}

func TestImportFlat(t *testing.T) {
	const data = `segment 1
0 0

not a point
1,0
2	0
`
	l := scene.NewLayer("flat")
	n, err := ImportFlat(strings.NewReader(data), l)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || l.Count() != 2 {
		t.Fatalf("ImportFlat() = %d, layer has %d", n, l.Count())
	}
	first := l.Elements()[0].(*element.Line)
	if math.Abs(first.Start().X+MetersPerDegree) > 1e-6 || first.End() != (geom.Vec3{}) {
		t.Errorf("first line = %v %v", first.Start(), first.End())
	}
	if first.Style().Stroke != geom.Blue {
		t.Errorf("stroke = %v, want blue", first.Style().Stroke)
	}
}

func TestImportFlatTooFewPoints(t *testing.T) {
	_, err := ImportFlat(strings.NewReader("segment\n1 2\n"), scene.NewLayer("flat"))
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("ImportFlat() error = %v, want ErrTooFewPoints", err)
	}
}

func TestProjectScalesLongitude(t *testing.T) {
	p := Project([2]float64{0, 60}, 1, 61)
	if math.Abs(p.X-MetersPerDegree/2) > 1e-6 || math.Abs(p.Y-MetersPerDegree) > 1e-6 {
		t.Errorf("Project() = %v", p)
	}
}
