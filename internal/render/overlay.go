package render

import (
	"fmt"
	"math"

	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/view"
)

const (
	gridExtent     = 20
	minGridSpacing = 0.1 // pixels

	axisLength  = 80
	arrowLength = 20
	arrowWidth  = 10

	scaleBarMargin   = 10
	scaleBarHeight   = 5
	scaleBarFontSize = 10
)

// Grid draws gridExtent lines per axis on the XY, XZ and YZ planes, starting
// at the origin. Nothing is drawn when spacing is below a tenth of a pixel
// on screen.
func Grid(t *view.Transform, spacing float64) []DrawCommand {
	if spacing <= 0 || t.DistToScreen(spacing) < minGridSpacing {
		return nil
	}
	far := gridExtent * spacing
	stroke := geom.LightGray.Hex()

	var cmds []DrawCommand
	line := func(a, b geom.Vec3) {
		sa, _, ok1 := t.WorldToScreen(a)
		sb, _, ok2 := t.WorldToScreen(b)
		if !ok1 || !ok2 {
			return
		}
		ca, cb, ok := ClipLine(sa, sb, t.Viewport())
		if !ok {
			return
		}
		cmds = append(cmds, DrawCommand{Op: OpLine, Points: []geom.Vec2{ca, cb}, Stroke: stroke, StrokeWidth: 1})
	}
	for i := range gridExtent + 1 {
		c := float64(i) * spacing
		// XY
		line(geom.V3(0, c, 0), geom.V3(far, c, 0))
		line(geom.V3(c, 0, 0), geom.V3(c, far, 0))
		// XZ
		line(geom.V3(0, 0, c), geom.V3(far, 0, c))
		line(geom.V3(c, 0, 0), geom.V3(c, 0, far))
		// YZ
		line(geom.V3(0, 0, c), geom.V3(0, far, c))
		line(geom.V3(0, c, 0), geom.V3(0, c, far))
	}
	return cmds
}

// Axes draws the three world axes from the origin with arrowheads. Their
// length is fixed in pixels regardless of zoom.
func Axes(t *view.Transform) []DrawCommand {
	z := t.ZoomAverage()
	if z <= 0 {
		return nil
	}
	length, al, aw := axisLength/z, arrowLength/z, arrowWidth/z
	origin, _, ok := t.WorldToScreen(geom.Vec3{})
	if !ok {
		return nil
	}
	stroke := geom.Black.Hex()

	axes := [3][3]geom.Vec3{
		{geom.V3(length, 0, 0), geom.V3(length-al, aw, 0), geom.V3(length-al, -aw, 0)},
		{geom.V3(0, length, 0), geom.V3(aw, length-al, 0), geom.V3(-aw, length-al, 0)},
		{geom.V3(0, 0, length), geom.V3(aw, 0, length-al), geom.V3(-aw, 0, length-al)},
	}
	var cmds []DrawCommand
	for _, ax := range axes {
		end, _, ok := t.WorldToScreen(ax[0])
		if !ok {
			continue
		}
		cmds = append(cmds, DrawCommand{Op: OpLine, Points: []geom.Vec2{origin, end}, Stroke: stroke, StrokeWidth: 2})
		for _, tip := range ax[1:] {
			s, _, ok := t.WorldToScreen(tip)
			if !ok {
				continue
			}
			cmds = append(cmds, DrawCommand{Op: OpLine, Points: []geom.Vec2{end, s}, Stroke: stroke, StrokeWidth: 2})
		}
	}
	return cmds
}

// ScaleBar draws a bar in the bottom-left corner whose length is the round
// world distance closest to lengthPx pixels, labeled in world units.
func ScaleBar(t *view.Transform, lengthPx float64) []DrawCommand {
	z := t.ZoomAverage()
	if z <= 0 || lengthPx <= 0 {
		return nil
	}
	nice := NiceDistance(lengthPx / z)
	px := t.DistToScreen(nice)

	x0, x1 := float64(scaleBarMargin), scaleBarMargin+px
	y := t.Viewport().Height - scaleBarMargin - scaleBarHeight
	stroke := geom.Black.Hex()
	seg := func(a, b geom.Vec2) DrawCommand {
		return DrawCommand{Op: OpLine, Points: []geom.Vec2{a, b}, Stroke: stroke, StrokeWidth: 1}
	}
	return []DrawCommand{
		seg(geom.V2(x0, y), geom.V2(x1, y)),
		seg(geom.V2(x0, y-scaleBarHeight), geom.V2(x0, y+scaleBarHeight)),
		seg(geom.V2(x1, y-scaleBarHeight), geom.V2(x1, y+scaleBarHeight)),
		{
			Op:       OpText,
			Points:   []geom.Vec2{geom.V2(x0+scaleBarMargin, y-scaleBarFontSize-4)},
			Text:     fmt.Sprintf("%.0f Units", nice),
			FontSize: scaleBarFontSize,
			Fill:     stroke,
		},
	}
}

// NiceDistance rounds d up to 1, 5 or 10 times a power of ten.
func NiceDistance(d float64) float64 {
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(d)))
	n := d / mag
	switch {
	case n >= 5:
		return 10 * mag
	case n >= 2:
		return 5 * mag
	}
	return mag
}
