package view

import (
	"math"

	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
)

const (
	// ZoomInFactor and ZoomOutFactor are the wheel step factors.
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9

	// DefaultHistorySize bounds the zoom-previous stack.
	DefaultHistorySize = 20
)

// LayerBounds is what extents computation needs from a layer.
type LayerBounds interface {
	IsVisible() bool
	Bounds() geom.Box3
}

// Zoomer applies zoom and pan gestures to a Transform and keeps the
// zoom-previous history.
type Zoomer struct {
	history *History[State]
}

// NewZoomer creates a zoomer with a history of the given size.
func NewZoomer(historySize int) *Zoomer {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Zoomer{history: NewHistory[State](historySize)}
}

// HistoryLen returns the number of views ZoomPrevious can restore.
func (z *Zoomer) HistoryLen() int { return z.history.Len() }

// PushHistory records the current view so ZoomPrevious can return to it.
func (z *Zoomer) PushHistory(t *Transform) { z.history.Push(t.State()) }

// Zoom multiplies the zoom by factor and adjusts the shift so the world
// point under pivot stays under pivot.
func (z *Zoomer) Zoom(t *Transform, pivot geom.Vec2, factor float64) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) || !pivot.IsValid() {
		logging.Logger().Warn("rejected zoom factor", "factor", factor, "pivot", pivot)
		return false
	}

	candidate := t.Clone()
	if !candidate.SetZoom(t.Zoom().Scale(factor)) {
		return false
	}

	before := t.ScreenToViewPlane(pivot, 0)
	after := candidate.ScreenToViewPlane(pivot, 0)
	shift := t.Shift().Sub(before.Sub(after))

	if !candidate.SetShift(shift) {
		return false
	}
	*t = *candidate
	return true
}

// ZoomIn zooms by ZoomInFactor around pivot, recording history.
func (z *Zoomer) ZoomIn(t *Transform, pivot geom.Vec2) bool {
	return z.zoomStep(t, pivot, ZoomInFactor)
}

// ZoomOut zooms by ZoomOutFactor around pivot, recording history.
func (z *Zoomer) ZoomOut(t *Transform, pivot geom.Vec2) bool {
	return z.zoomStep(t, pivot, ZoomOutFactor)
}

func (z *Zoomer) zoomStep(t *Transform, pivot geom.Vec2, factor float64) bool {
	prev := t.State()
	if !z.Zoom(t, pivot, factor) {
		return false
	}
	z.history.Push(prev)
	return true
}

// ZoomPrevious restores the most recently recorded view.
func (z *Zoomer) ZoomPrevious(t *Transform) bool {
	s, ok := z.history.Pop()
	if !ok {
		return false
	}
	vp := t.Viewport()
	*t = *FromState(s)
	t.SetViewport(vp)
	return true
}

// Pan moves the view by a screen-space delta in pixels.
func Pan(t *Transform, dx, dy float64) bool {
	zoom := t.Zoom()
	return t.SetShift(t.Shift().Add(geom.V3(dx/zoom.X, -dy/zoom.Y, 0)))
}

// RegionView fits b into the viewport with paddingPercent of margin,
// centers it and resets rotation. Empty boxes leave t unchanged.
func RegionView(t *Transform, b geom.Box3, paddingPercent float64) bool {
	if b.IsEmpty() || !b.IsValid() {
		return false
	}
	vp := t.Viewport()
	pad := (100 + paddingPercent) / 100

	w, h := b.Width(), b.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	zoom := min(vp.Width/(w*pad), vp.Height/(h*pad))
	if zoom <= 0 || math.IsInf(zoom, 0) || math.IsNaN(zoom) {
		return false
	}

	c := b.Center()
	cx := vp.X + vp.Width/2
	cy := vp.Y + vp.Height/2

	t.SetZoom(geom.V3(zoom, zoom, zoom))
	t.SetShift(geom.V3(cx/zoom-c.X, -(cy/zoom)-c.Y, c.Z))
	t.SetRotation(geom.Vec3{})
	return true
}

// ZoomExtents records the current view and fits extents into the viewport.
func (z *Zoomer) ZoomExtents(t *Transform, extents geom.Box3, paddingPercent float64) bool {
	if extents.IsEmpty() {
		return false
	}
	prev := t.State()
	if !RegionView(t, extents, paddingPercent) {
		return false
	}
	z.history.Push(prev)
	return true
}

// Extents is the union of the bounds of the visible layers. With no
// visible layer it returns the default (0,0,0)-(50,50,50) box.
func Extents[L LayerBounds](layers []L) geom.Box3 {
	out := geom.EmptyBox3()
	visible := 0
	for _, l := range layers {
		if !l.IsVisible() {
			continue
		}
		visible++
		out = out.Union(l.Bounds())
	}
	if visible == 0 {
		return geom.NewBox3(geom.V3(0, 0, 0), geom.V3(50, 50, 50))
	}
	return out
}
