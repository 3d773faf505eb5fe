// Package render compiles scene elements into screen-space draw commands.
// It owns no pixel buffer; hosts execute the commands on a canvas or hand
// them to the raster package.
package render

import (
	"encoding/json"
	"math"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/view"
)

// Op names a drawing primitive.
type Op string

const (
	OpLine     Op = "line"
	OpPolyline Op = "polyline"
	OpPolygon  Op = "polygon"
	OpEllipse  Op = "ellipse"
	OpText     Op = "text"
)

// DrawCommand is a single drawing operation in screen pixels.
type DrawCommand struct {
	Op          Op          `json:"op"`                    // Primitive to draw
	ElementID   string      `json:"elementId,omitempty"`   // For hit correlation; empty for overlays
	Points      []geom.Vec2 `json:"points,omitempty"`      // line: 2 points, polyline/polygon: n points, text: anchor
	Center      geom.Vec2   `json:"center,omitzero"`       // ellipse center
	RX          float64     `json:"rx,omitempty"`          // ellipse semi-axis along Angle
	RY          float64     `json:"ry,omitempty"`          // ellipse semi-axis across Angle
	Angle       float64     `json:"angle,omitempty"`       // ellipse rotation in degrees
	Text        string      `json:"text,omitempty"`        // text content
	FontSize    float64     `json:"fontSize,omitempty"`    // text size in pixels
	Stroke      string      `json:"stroke,omitempty"`      // Stroke color, #RRGGBB or #AARRGGBB
	Fill        string      `json:"fill,omitempty"`        // Fill color; empty means no fill
	StrokeWidth float64     `json:"strokeWidth,omitempty"` // Stroke width in pixels
}

// Options controls the overlays added after the elements.
type Options struct {
	ShowGrid       bool    `json:"showGrid"`
	ShowAxes       bool    `json:"showAxes"`
	ShowScaleBar   bool    `json:"showScaleBar"`
	ShowHandles    bool    `json:"showHandles"`
	GridSpacing    float64 `json:"gridSpacing"`    // world units between grid lines
	ScaleBarLength float64 `json:"scaleBarLength"` // target bar length in pixels
}

// DefaultOptions draws axes, the scale bar and selection handles.
func DefaultOptions() Options {
	return Options{
		ShowAxes:       true,
		ShowScaleBar:   true,
		ShowHandles:    true,
		GridSpacing:    50,
		ScaleBarLength: 100,
	}
}

// Compile generates draw commands for elems in painter's order (first
// element at the bottom), followed by the overlays. Elements outside the
// viewport are culled; an element that projects to a non-finite position
// is dropped without affecting the others.
func Compile(t *view.Transform, elems []element.Element, opts Options) []DrawCommand {
	var cmds []DrawCommand
	for _, e := range elems {
		if !t.IsBoundsVisible(e.Bounds()) {
			continue
		}
		out, ok := compileElement(t, e)
		if !ok {
			logging.Logger().Debug("skipped element with non-finite projection", "element", e.ID())
			continue
		}
		cmds = append(cmds, out...)
		if opts.ShowHandles && e.Selected() {
			cmds = append(cmds, handles(t, e)...)
		}
	}
	if opts.ShowScaleBar {
		cmds = append(cmds, ScaleBar(t, opts.ScaleBarLength)...)
	}
	if opts.ShowGrid {
		cmds = append(cmds, Grid(t, opts.GridSpacing)...)
	}
	if opts.ShowAxes {
		cmds = append(cmds, Axes(t)...)
	}
	return cmds
}

// ToJSON serializes draw commands.
func ToJSON(cmds []DrawCommand) (string, error) {
	if cmds == nil {
		cmds = []DrawCommand{}
	}
	data, err := json.Marshal(cmds)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// projector collects screen points and remembers whether any failed.
type projector struct {
	t  *view.Transform
	ok bool
}

func (p *projector) point(w geom.Vec3) geom.Vec2 {
	s, _, ok := p.t.WorldToScreen(w)
	if !ok {
		p.ok = false
	}
	return s
}

func (p *projector) points(ws []geom.Vec3) []geom.Vec2 {
	out := make([]geom.Vec2, len(ws))
	for i, w := range ws {
		out[i] = p.point(w)
	}
	return out
}

func strokeWidth(s element.Style) float64 {
	return max(s.Width, 1)
}

func fillOf(s element.Style) string {
	if !s.Filled || s.Fill.A == 0 {
		return ""
	}
	return colorString(s.Fill)
}

func colorString(c geom.Color) string {
	if c.A == 255 {
		return c.Hex()
	}
	return c.ArgbHex()
}

func compileElement(t *view.Transform, e element.Element) ([]DrawCommand, bool) {
	p := &projector{t: t, ok: true}
	s := e.Style()
	base := DrawCommand{
		ElementID:   string(e.ID()),
		Stroke:      colorString(s.Stroke),
		StrokeWidth: strokeWidth(s),
	}

	var cmds []DrawCommand
	switch v := e.(type) {
	case *element.Line:
		a, b := p.point(v.Start()), p.point(v.End())
		if !p.ok {
			return nil, false
		}
		ca, cb, visible := ClipLine(a, b, t.Viewport())
		if !visible {
			return nil, true
		}
		c := base
		c.Op, c.Points = OpLine, []geom.Vec2{ca, cb}
		cmds = append(cmds, c)

	case *element.Rectangle:
		c := base
		c.Op, c.Points, c.Fill = OpPolygon, p.points(v.ControlPoints()), fillOf(s)
		cmds = append(cmds, c)

	case *element.Circle:
		cmds = append(cmds, compileCircle(p, v, base, s)...)

	case *element.Label:
		c := base
		c.Op, c.Points, c.Text = OpText, []geom.Vec2{p.point(v.Position())}, v.Text()
		c.FontSize = max(t.DistToScreen(v.FontSize()), 1)
		c.Fill, c.StrokeWidth = c.Stroke, 0
		cmds = append(cmds, c)

	case *element.Cylinder:
		cmds = append(cmds, compileCylinder(p, v, base, s)...)
	}
	if !p.ok {
		return nil, false
	}
	return cmds, true
}

func compileCircle(p *projector, c *element.Circle, base DrawCommand, s element.Style) []DrawCommand {
	if !c.Use3D() {
		r := p.t.DistToScreen(c.Radius())
		if c.FixedRadius() {
			r = c.Radius()
		}
		cmd := base
		cmd.Op, cmd.Center, cmd.RX, cmd.RY = OpEllipse, p.point(c.Center()), max(r, 1), max(r, 1)
		cmd.Fill = fillOf(s)
		return []DrawCommand{cmd}
	}

	pts := p.points(c.Sample(element.EllipseSamples))
	if !p.ok {
		return nil
	}
	if e, ok := element.FitEllipse(pts); ok {
		cmd := base
		cmd.Op, cmd.Center = OpEllipse, p.t.ClampToViewport(e.Center)
		cmd.RX, cmd.RY, cmd.Angle = e.Width/2, e.Height/2, e.Angle*180/math.Pi
		cmd.Fill = fillOf(s)
		return []DrawCommand{cmd}
	}

	poly := p.points(c.Sample(element.PolylineSamples))
	cmd := base
	cmd.Op, cmd.Points = OpPolyline, append(poly, poly[0])
	return []DrawCommand{cmd}
}

func compileCylinder(p *projector, c *element.Cylinder, base DrawCommand, s element.Style) []DrawCommand {
	start, end := c.Rings()
	sp, ep := p.points(start), p.points(end)
	if !p.ok {
		return nil
	}

	var cmds []DrawCommand
	fill := fillOf(s)
	if fill != "" {
		for i := range sp {
			j := (i + 1) % len(sp)
			q := base
			q.Op, q.Points, q.Fill, q.Stroke = OpPolygon, []geom.Vec2{sp[i], sp[j], ep[j], ep[i]}, fill, ""
			cmds = append(cmds, q)
		}
	}

	var startFill, endFill string
	if c.DrawEndCaps() {
		showStart, showEnd := c.CapVisibility(p.t.ViewDirection())
		if showStart {
			startFill = fill
		}
		if showEnd {
			endFill = fill
		}
	}
	for _, r := range []struct {
		pts  []geom.Vec2
		fill string
	}{{sp, startFill}, {ep, endFill}} {
		ring := base
		ring.Op, ring.Points, ring.Fill = OpPolygon, r.pts, r.fill
		cmds = append(cmds, ring)
	}
	// silhouette edges
	for i := 0; i < len(sp); i += max(len(sp)/4, 1) {
		l := base
		l.Op, l.Points = OpLine, []geom.Vec2{sp[i], ep[i]}
		cmds = append(cmds, l)
	}
	return cmds
}

// handles marks the control points of a selected element.
func handles(t *view.Transform, e element.Element) []DrawCommand {
	const half = 3
	var cmds []DrawCommand
	for _, cp := range e.ControlPoints() {
		s, _, ok := t.WorldToScreen(cp)
		if !ok {
			continue
		}
		cmds = append(cmds, DrawCommand{
			Op:        OpPolygon,
			ElementID: string(e.ID()),
			Points: []geom.Vec2{
				geom.V2(s.X-half, s.Y-half), geom.V2(s.X+half, s.Y-half),
				geom.V2(s.X+half, s.Y+half), geom.V2(s.X-half, s.Y+half),
			},
			Stroke:      geom.Blue.Hex(),
			Fill:        geom.White.Hex(),
			StrokeWidth: 1,
		})
	}
	return cmds
}
