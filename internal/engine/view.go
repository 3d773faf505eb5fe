package engine

import (
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/view"
)

// SetViewport resizes the drawing surface.
func (e *Engine) SetViewport(width, height float64) {
	e.view.SetViewport(geom.NewRect2(0, 0, width, height))
	e.invalidate()
}

// Pan moves the view by a screen delta in pixels.
func (e *Engine) Pan(dx, dy float64) bool {
	return e.changed(view.Pan(e.view, dx, dy))
}

// ZoomAt scales the view by factor keeping the point under (x, y) fixed.
func (e *Engine) ZoomAt(x, y, factor float64) bool {
	return e.changed(e.zoomer.Zoom(e.view, geom.V2(x, y), factor))
}

// ZoomIn zooms one step in around (x, y).
func (e *Engine) ZoomIn(x, y float64) bool {
	return e.changed(e.zoomer.ZoomIn(e.view, geom.V2(x, y)))
}

// ZoomOut zooms one step out around (x, y).
func (e *Engine) ZoomOut(x, y float64) bool {
	return e.changed(e.zoomer.ZoomOut(e.view, geom.V2(x, y)))
}

// ZoomPrevious returns to the last recorded view.
func (e *Engine) ZoomPrevious() bool {
	return e.changed(e.zoomer.ZoomPrevious(e.view))
}

// ZoomExtents fits the visible layers into the viewport.
func (e *Engine) ZoomExtents() bool {
	ext := view.Extents(e.layers.Layers())
	return e.changed(e.zoomer.ZoomExtents(e.view, ext, e.opts.ExtentsPadding))
}

// SetRotation sets the view rotation in radians. When rotating away from
// an unrotated view the pivot moves to the world point at the viewport
// center, so the scene turns around what the user is looking at.
func (e *Engine) SetRotation(r geom.Vec3) bool {
	if e.view.Rotation() == (geom.Vec3{}) && r != (geom.Vec3{}) {
		c := e.view.ScreenToViewPlane(e.view.Viewport().Center(), 0)
		e.view.SetPivot(geom.V3(c.X, c.Y, 0))
	}
	return e.changed(e.view.SetRotation(r))
}

func (e *Engine) changed(ok bool) bool {
	if ok {
		e.invalidate()
	}
	return ok
}
