package format

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/scene"
)

// ImportedLayerName names the layer that receives an SVG without layer
// groups.
const ImportedLayerName = "Imported"

// ImportResult describes what ImportSVG added.
type ImportResult struct {
	Layers   []*scene.Layer
	Elements int
	Skipped  int

	// Before is the layer state captured before the import.
	Before []scene.LayerState
}

// ImportSVG adds the content of an SVG document to lm. Each <g> carrying
// data-layer-id becomes a new layer with its saved name, visibility, lock
// and color; without such groups everything goes to one "Imported" layer.
// Elements that fail to parse are skipped and logged. A document that is not
// well-formed XML changes nothing.
func ImportSVG(r io.Reader, lm *scene.Manager) (ImportResult, error) {
	var doc svgDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("decode svg: %w", err)
	}

	res := ImportResult{Before: lm.SaveLayerState()}
	var groups []svgGroup
	collectLayerGroups(doc.svgContent, &groups)

	if len(groups) == 0 {
		l := lm.AddLayer(ImportedLayerName)
		lm.SetActiveLayer(l)
		res.add(l, doc.svgContent)
	} else {
		for _, g := range groups {
			res.add(importLayer(lm, g), g.svgContent)
		}
	}
	// lock after filling, a locked layer rejects new elements
	for i, g := range groups {
		a := attrs{}
		res.Layers[i].SetLocked(a.boolean(g.LayerLocked, false))
	}

	for _, l := range lm.Layers() {
		if !l.IsLocked() {
			lm.SetActiveLayer(l)
			break
		}
	}
	lm.UpdateAllLayersBounds()
	return res, nil
}

// collectLayerGroups finds layer groups at any depth outside other layer
// groups.
func collectLayerGroups(c svgContent, out *[]svgGroup) {
	for _, g := range c.Groups {
		if g.LayerID != "" {
			*out = append(*out, g)
			continue
		}
		collectLayerGroups(g.svgContent, out)
	}
}

func importLayer(lm *scene.Manager, g svgGroup) *scene.Layer {
	name := g.LayerName
	if name == "" {
		name = "Layer"
	}
	a := attrs{}
	l := lm.AddLayer(name)
	l.SetVisible(a.boolean(g.LayerVisible, true))
	l.SetColor(geom.ParseColor(g.LayerColor, geom.Black))
	lm.SetActiveLayer(l)
	if a.err != nil {
		logging.Logger().Warn("invalid layer attribute", "layer", name, "error", a.err)
	}
	return l
}

func (res *ImportResult) add(l *scene.Layer, c svgContent) {
	res.Layers = append(res.Layers, l)
	p := &parser{}
	p.content(c)
	for _, e := range p.elems {
		if l.AddElement(e, false) {
			res.Elements++
		}
	}
	res.Skipped += p.skipped
}

// parser converts svg nodes into elements.
type parser struct {
	elems   []element.Element
	skipped int
}

func (p *parser) result(kind string, e element.Element, err error) {
	if err != nil {
		p.skipped++
		logging.Logger().Warn("skipped svg element", "kind", kind, "error", err)
		return
	}
	p.elems = append(p.elems, e)
}

// content parses lines, circles, polylines, rectangles and texts, then
// nested groups.
func (p *parser) content(c svgContent) {
	for _, n := range c.Lines {
		e, err := parseLine(n)
		p.result("line", e, err)
	}
	for _, n := range c.Circles {
		e, err := parseCircle(n)
		p.result("circle", e, err)
	}
	for _, n := range c.Polylines {
		lines, err := parsePolyline(n)
		if err != nil {
			p.result("polyline", nil, err)
			continue
		}
		for _, l := range lines {
			p.elems = append(p.elems, l)
		}
	}
	for _, n := range c.Rects {
		e, err := parseRect(n)
		p.result("rect", e, err)
	}
	for _, n := range c.Texts {
		e, err := parseText(n)
		p.result("text", e, err)
	}
	for _, g := range c.Groups {
		switch {
		case g.LayerID != "":
			// imported as a layer of its own
		case g.Kind == string(element.KindCylinder):
			e, err := parseCylinder(g)
			p.result("cylinder", e, err)
		default:
			p.content(g.svgContent)
		}
	}
}

var errNoStroke = errors.New("stroke is none")

func isNone(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "none") }

func style(a *attrs, stroke, width, fill string) element.Style {
	s := element.DefaultStyle()
	s.Stroke = geom.ParseColor(stroke, geom.Black)
	s.Width = a.float(width, 1)
	if fill != "" && !isNone(fill) {
		s.Fill = geom.ParseColor(fill, geom.Transparent)
		s.Filled = s.Fill.A != 0
	}
	return s
}

func parseLine(n svgLine) (element.Element, error) {
	if isNone(n.Stroke) {
		return nil, errNoStroke
	}
	a := &attrs{}
	start := geom.V3(a.float(n.X1, 0), a.float(n.Y1, 0), a.float(n.Z1, 0))
	end := geom.V3(a.float(n.X2, 0), a.float(n.Y2, 0), a.float(n.Z2, 0))
	s := style(a, n.Stroke, n.StrokeWidth, "")
	if a.err != nil {
		return nil, a.err
	}
	return element.NewLine(start, end, s)
}

func parseCircle(n svgCircle) (element.Element, error) {
	a := &attrs{}
	center := geom.V3(a.float(n.CX, 0), a.float(n.CY, 0), a.float(n.Z, 0))
	r := a.float(n.R, 1)
	s := style(a, n.Stroke, n.StrokeWidth, n.Fill)
	var normal geom.Vec3
	if n.Normal != "" {
		normal = a.vec3(n.Normal)
	}
	if a.err != nil {
		return nil, a.err
	}
	c, err := element.NewCircle(center, r, s)
	if err != nil {
		return nil, err
	}
	if n.Normal != "" {
		c.SetNormal(normal)
	}
	return c, nil
}

// parsePolyline splits a polyline into consecutive line segments at z = 0.
func parsePolyline(n svgPolyline) ([]element.Element, error) {
	if isNone(n.Stroke) {
		return nil, errNoStroke
	}
	a := &attrs{}
	s := style(a, n.Stroke, n.StrokeWidth, "")
	f := strings.FieldsFunc(n.Points, isSeparator)

	var out []element.Element
	var prev geom.Vec3
	for i := 0; i+1 < len(f); i += 2 {
		pt := geom.V3(a.float(f[i], 0), a.float(f[i+1], 0), 0)
		if i > 0 {
			l, err := element.NewLine(prev, pt, s)
			if err != nil {
				return nil, err
			}
			out = append(out, l)
		}
		prev = pt
	}
	if a.err != nil {
		return nil, a.err
	}
	return out, nil
}

func parseRect(n svgRect) (element.Element, error) {
	a := &attrs{}
	x, y := a.float(n.X, 0), a.float(n.Y, 0)
	w, h := a.float(n.Width, 1), a.float(n.Height, 1)
	start := geom.V3(x, y, a.float(n.Z1, 0))
	end := geom.V3(x+w, y+h, a.float(n.Z2, 0))
	s := style(a, n.Stroke, n.StrokeWidth, n.Fill)
	if a.err != nil {
		return nil, a.err
	}
	return element.NewRectangle(start, end, s)
}

func parseText(n svgText) (element.Element, error) {
	a := &attrs{}
	pos := geom.V3(a.float(n.X, 0), a.float(n.Y, 0), a.float(n.Z, 0))
	size := a.float(n.FontSize, element.DefaultFontSize)
	s := element.DefaultStyle()
	s.Stroke = geom.ParseColor(n.Fill, geom.Black)
	if a.err != nil {
		return nil, a.err
	}
	return element.NewLabel(pos, strings.TrimSpace(n.Text), size, s)
}

func parseCylinder(g svgGroup) (element.Element, error) {
	a := &attrs{}
	start, end := a.vec3(g.Start), a.vec3(g.End)
	r := a.float(g.Radius, 1)
	fixed := a.boolean(g.FixedRadius, false)
	caps := a.boolean(g.Caps, true)
	s := style(a, g.Stroke, g.StrokeWidth, g.Fill)
	detail := element.DefaultDetailLevel
	if g.Detail != "" {
		d, err := strconv.Atoi(g.Detail)
		if err != nil {
			return nil, err
		}
		detail = d
	}
	if a.err != nil {
		return nil, a.err
	}
	c, err := element.NewCylinder(start, end, r, s)
	if err != nil {
		return nil, err
	}
	c.SetFixedRadius(fixed)
	c.SetDrawEndCaps(caps)
	c.SetDetailLevel(detail)
	return c, nil
}
