package engine

import (
	"fmt"

	"github.com/inamate/vectorscene/internal/command"
	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/view"
)

// Tool selects what a left-button drag does.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolPan       Tool = "pan"
	ToolZoom      Tool = "zoom"
	ToolLine      Tool = "line"
	ToolCircle    Tool = "circle"
	ToolRectangle Tool = "rectangle"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Pointer is one pointer event in screen pixels.
type Pointer struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button Button  `json:"button"`
	Shift  bool    `json:"shift"`
}

func (p Pointer) pos() geom.Vec2 { return geom.V2(p.X, p.Y) }

// minDragPixels is the pointer travel below which a draw or zoom drag is
// treated as a click.
const minDragPixels = 2

type gesture int

const (
	gesturePan gesture = iota
	gestureZoomRect
	gestureDraw
	gestureControlPoint
	gestureMove
)

// drag is the state of the gesture between PointerDown and PointerUp.
type drag struct {
	kind  gesture
	start geom.Vec2
	last  geom.Vec2
	depth float64 // screen depth the pointer is mapped back at

	elem   element.Element
	index  int
	elems  []element.Element
	origin geom.Vec3
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// SetTool changes the active tool, cancelling any gesture in progress.
func (e *Engine) SetTool(t Tool) error {
	switch t {
	case ToolSelect, ToolPan, ToolZoom, ToolLine, ToolCircle, ToolRectangle:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTool, t)
	}
	e.CancelPointer()
	e.tool = t
	return nil
}

// SetDrawStyle sets the style of elements created by the drawing tools.
func (e *Engine) SetDrawStyle(s element.Style) { e.drawStyle = s }

// PointerDown starts a gesture. The middle button always pans and the
// right button always drags a zoom rectangle; the left button uses the
// active tool.
func (e *Engine) PointerDown(p Pointer) {
	e.CancelPointer()
	s := p.pos()
	if !s.IsValid() {
		return
	}
	d := &drag{start: s, last: s, depth: e.planeDepth()}

	switch {
	case p.Button == ButtonMiddle || (p.Button == ButtonLeft && e.tool == ToolPan):
		d.kind = gesturePan
		e.zoomer.PushHistory(e.view)
	case p.Button == ButtonRight || e.tool == ToolZoom:
		d.kind = gestureZoomRect
	case e.tool == ToolSelect:
		if !e.beginSelect(d, p) {
			return
		}
	default:
		if !e.beginDraw(d) {
			return
		}
	}
	e.drag = d
	e.invalidate()
}

// beginSelect picks a control point of the selection, then an element, and
// clears the selection on empty space. It reports whether a drag starts.
func (e *Engine) beginSelect(d *drag, p Pointer) bool {
	if el, i, depth, ok := e.controlPointAt(d.start); ok {
		d.kind = gestureControlPoint
		d.elem, d.index, d.depth = el, i, depth
		e.history.EndMergeBlock()
		return true
	}

	el, _, ok := e.hit(d.start)
	if !ok {
		if !p.Shift {
			e.layers.ClearSelection()
			e.invalidate()
		}
		return false
	}
	switch {
	case p.Shift:
		el.SetSelected(!el.Selected())
	case !el.Selected():
		e.layers.ClearSelection()
		el.SetSelected(true)
	}
	e.invalidate()

	d.elems = e.editableSelection()
	if len(d.elems) == 0 {
		return false
	}
	d.kind = gestureMove
	d.origin = e.view.ScreenToWorld(d.start, d.depth)
	e.history.EndMergeBlock()
	return true
}

// controlPointAt finds a control point of a selected, editable element
// within the selection tolerance of s, comparing in screen space.
func (e *Engine) controlPointAt(s geom.Vec2) (element.Element, int, float64, bool) {
	tol := e.opts.SelectionTolerance
	for _, el := range e.editableSelection() {
		for i, cp := range el.ControlPoints() {
			sp, depth, ok := e.view.WorldToScreen(cp)
			if ok && sp.Distance(s) <= tol {
				return el, i, depth, true
			}
		}
	}
	return nil, 0, 0, false
}

func (e *Engine) beginDraw(d *drag) bool {
	l := e.layers.ActiveLayer()
	if l == nil || l.IsLocked() {
		logging.Logger().Warn("drawing on a locked layer ignored", "tool", e.tool)
		return false
	}
	at := e.view.ScreenToWorld(d.start, d.depth)
	var (
		el  element.Element
		err error
	)
	switch e.tool {
	case ToolLine:
		el, err = element.NewLine(at, at, e.drawStyle)
	case ToolCircle:
		el, err = element.NewCircle(at, 0, e.drawStyle)
	case ToolRectangle:
		el, err = element.NewRectangle(at, at, e.drawStyle)
	default:
		return false
	}
	if err != nil {
		logging.Logger().Warn("could not start drawing", "tool", e.tool, "error", err)
		return false
	}
	d.kind = gestureDraw
	d.origin = at
	e.preview = el
	return true
}

// PointerMove updates the gesture in progress.
func (e *Engine) PointerMove(p Pointer) {
	d := e.drag
	s := p.pos()
	if d == nil || !s.IsValid() {
		return
	}
	switch d.kind {
	case gesturePan:
		e.Pan(s.X-d.last.X, s.Y-d.last.Y)

	case gestureDraw:
		at := e.view.ScreenToWorld(s, d.depth)
		switch v := e.preview.(type) {
		case *element.Line:
			v.SetEndpoints(d.origin, at)
		case *element.Circle:
			v.SetRadius(d.origin.Distance(at))
		case *element.Rectangle:
			v.SetCorners(d.origin, at)
		}

	case gestureControlPoint:
		at := e.view.ScreenToWorld(s, d.depth)
		e.history.Execute(command.NewControlPoint(d.elem, d.index, at))
		e.history.BeginMergeBlock()

	case gestureMove:
		from := e.view.ScreenToWorld(d.last, d.depth)
		to := e.view.ScreenToWorld(s, d.depth)
		if delta := to.Sub(from); delta != (geom.Vec3{}) {
			e.history.Execute(command.NewBatchMove(d.elems, delta))
			e.history.BeginMergeBlock()
		}
	}
	d.last = s
	e.invalidate()
}

// PointerUp finishes the gesture: a drawn element is committed, a zoom
// rectangle is applied and edit drags close their merged undo step.
func (e *Engine) PointerUp(p Pointer) {
	d := e.drag
	if d == nil {
		return
	}
	if s := p.pos(); s.IsValid() && s != d.last {
		e.PointerMove(p)
	}
	e.drag = nil
	defer e.invalidate()

	switch d.kind {
	case gestureZoomRect:
		if d.last.Distance(d.start) < minDragPixels {
			return
		}
		a := e.view.ScreenToWorld(d.start, d.depth)
		b := e.view.ScreenToWorld(d.last, d.depth)
		e.zoomer.PushHistory(e.view)
		e.changed(view.RegionView(e.view, geom.NewBox3(a, b), 0))

	case gestureDraw:
		el := e.preview
		e.preview = nil
		if d.last.Distance(d.start) < minDragPixels {
			return
		}
		if err := e.AddElement(el); err != nil {
			logging.Logger().Warn("drawn element dropped", "error", err)
		}

	case gestureControlPoint, gestureMove:
		e.history.BeginMergeBlock()
	}
}

// CancelPointer abandons the gesture in progress. Edits already applied by
// a drag stay in the history.
func (e *Engine) CancelPointer() {
	if e.drag == nil {
		return
	}
	e.drag = nil
	e.preview = nil
	e.history.BeginMergeBlock()
	e.invalidate()
}
