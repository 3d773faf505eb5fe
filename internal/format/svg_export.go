package format

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/scene"
	"github.com/inamate/vectorscene/internal/view"
)

// ExportOptions controls SVG export.
type ExportOptions struct {
	// Relative writes screen coordinates through the view instead of world
	// coordinates. Z values are always written in world units.
	Relative bool
}

// ExportSVG writes every layer of lm as a <g> element in render order.
// Hidden layers are kept with display:none.
func ExportSVG(w io.Writer, lm *scene.Manager, t *view.Transform, opts ExportOptions) error {
	doc := svgDoc{Xmlns: svgNamespace}
	if opts.Relative {
		vp := t.Viewport()
		doc.Width, doc.Height = fg(vp.Width), fg(vp.Height)
	} else {
		x, y, width, height := drawingBounds(lm)
		doc.Width, doc.Height = f2(width), f2(height)
		doc.ViewBox = fmt.Sprintf("%s %s %s %s", f2(x), f2(y), f2(width), f2(height))
	}

	ex := exporter{t: t, relative: opts.Relative}
	for _, l := range lm.Layers() {
		doc.Groups = append(doc.Groups, ex.layer(l))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	return enc.Close()
}

// drawingBounds is the XY extent of the visible layers, or 100×100 at the
// origin when nothing is visible.
func drawingBounds(lm *scene.Manager) (x, y, width, height float64) {
	b := lm.VisibleBounds()
	if b.IsEmpty() {
		return 0, 0, 100, 100
	}
	return b.Min.X, b.Min.Y, b.Width(), b.Height()
}

type exporter struct {
	t        *view.Transform
	relative bool
}

func (ex exporter) layer(l *scene.Layer) svgGroup {
	g := svgGroup{
		ID:           "layer-" + l.ID(),
		LayerID:      l.ID(),
		LayerName:    l.Name(),
		LayerVisible: strconv.FormatBool(l.IsVisible()),
		LayerLocked:  strconv.FormatBool(l.IsLocked()),
		LayerColor:   l.Color().Hex(),
	}
	if !l.IsVisible() {
		g.Style = "display:none"
	}
	for _, e := range l.Elements() {
		ex.element(&g.svgContent, e)
	}
	return g
}

// xy returns the output position of p. ok is false when p does not project
// to a finite screen position.
func (ex exporter) xy(p geom.Vec3) (geom.Vec2, bool) {
	if !ex.relative {
		return p.XY(), true
	}
	s, _, ok := ex.t.WorldToScreen(p)
	return s, ok
}

// dist converts a world length to the output unit.
func (ex exporter) dist(d float64) float64 {
	if ex.relative {
		return ex.t.DistToScreen(d)
	}
	return d
}

func fillAttr(s element.Style) string {
	if !s.Filled || s.Fill.A == 0 {
		return "none"
	}
	return s.Fill.Hex()
}

func (ex exporter) element(c *svgContent, e element.Element) {
	s := e.Style()
	switch v := e.(type) {
	case *element.Line:
		if l, ok := ex.line(v.Start(), v.End(), s); ok {
			c.Lines = append(c.Lines, l)
		}

	case *element.Circle:
		ci, ok := ex.circle(v.Center(), ex.circleRadius(v.Radius(), v.FixedRadius()), s)
		if !ok {
			return
		}
		if v.Use3D() {
			ci.Normal = vec3String(v.Normal())
		}
		c.Circles = append(c.Circles, ci)

	case *element.Rectangle:
		a, ok1 := ex.xy(v.Start())
		b, ok2 := ex.xy(v.End())
		if !ok1 || !ok2 {
			return
		}
		c.Rects = append(c.Rects, svgRect{
			X:           f2(min(a.X, b.X)),
			Y:           f2(min(a.Y, b.Y)),
			Width:       f2(math.Abs(b.X - a.X)),
			Height:      f2(math.Abs(b.Y - a.Y)),
			Z1:          f2(v.Start().Z),
			Z2:          f2(v.End().Z),
			Stroke:      s.Stroke.Hex(),
			StrokeWidth: fg(ex.dist(s.Width)),
			Fill:        fillAttr(s),
		})

	case *element.Label:
		p, ok := ex.xy(v.Position())
		if !ok {
			return
		}
		c.Texts = append(c.Texts, svgText{
			X:          f2(p.X),
			Y:          f2(p.Y),
			Z:          f2(v.Position().Z),
			Fill:       s.Stroke.Hex(),
			FontFamily: "Arial",
			FontSize:   fg(v.FontSize()),
			Text:       v.Text(),
		})

	case *element.Cylinder:
		if g, ok := ex.cylinder(v, s); ok {
			c.Groups = append(c.Groups, g)
		}
	}
}

func (ex exporter) line(a, b geom.Vec3, s element.Style) (svgLine, bool) {
	p1, ok1 := ex.xy(a)
	p2, ok2 := ex.xy(b)
	if !ok1 || !ok2 {
		return svgLine{}, false
	}
	return svgLine{
		X1:          f2(p1.X),
		Y1:          f2(p1.Y),
		X2:          f2(p2.X),
		Y2:          f2(p2.Y),
		Z1:          f2(a.Z),
		Z2:          f2(b.Z),
		Stroke:      s.Stroke.Hex(),
		StrokeWidth: fg(ex.dist(s.Width)),
	}, true
}

func (ex exporter) circle(center geom.Vec3, r float64, s element.Style) (svgCircle, bool) {
	p, ok := ex.xy(center)
	if !ok {
		return svgCircle{}, false
	}
	return svgCircle{
		CX:          f2(p.X),
		CY:          f2(p.Y),
		Z:           f2(center.Z),
		R:           f2(r),
		Stroke:      s.Stroke.Hex(),
		StrokeWidth: fg(s.Width),
		Fill:        fillAttr(s),
	}, true
}

// circleRadius converts r to the output unit. A fixed radius is in pixels.
func (ex exporter) circleRadius(r float64, fixed bool) float64 {
	switch {
	case fixed && ex.relative:
		return r
	case fixed:
		return ex.t.DistToWorld(r)
	}
	return ex.dist(r)
}

// cylinder writes the end circles and two side lines for viewers, plus data
// attributes that carry the exact geometry.
func (ex exporter) cylinder(c *element.Cylinder, s element.Style) (svgGroup, bool) {
	start, end := c.Rings()
	g := svgGroup{
		Kind:        string(element.KindCylinder),
		Start:       vec3String(c.StartCenter()),
		End:         vec3String(c.EndCenter()),
		Radius:      fg(c.Radius()),
		FixedRadius: strconv.FormatBool(c.FixedRadius()),
		Detail:      strconv.Itoa(c.DetailLevel()),
		Caps:        strconv.FormatBool(c.DrawEndCaps()),
		Stroke:      s.Stroke.Hex(),
		StrokeWidth: fg(s.Width),
		Fill:        fillAttr(s),
	}
	r := ex.circleRadius(c.Radius(), c.FixedRadius())
	for _, center := range []geom.Vec3{c.StartCenter(), c.EndCenter()} {
		ci, ok := ex.circle(center, r, s)
		if !ok {
			return svgGroup{}, false
		}
		g.Circles = append(g.Circles, ci)
	}
	for _, i := range []int{0, len(start) / 2} {
		l, ok := ex.line(start[i], end[i], s)
		if !ok {
			return svgGroup{}, false
		}
		g.Lines = append(g.Lines, l)
	}
	return g, true
}
