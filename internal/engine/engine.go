// Package engine ties the view, the layers and the undo history into one
// editing facade. Hosts send commands (view changes, pointer input, edits)
// and read back queries (draw commands, layer state, history).
//
// An Engine is not safe for concurrent use; the session package confines
// each one to a single goroutine.
package engine

import (
	"errors"
	"io"
	"math"

	"github.com/inamate/vectorscene/internal/command"
	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/format"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/render"
	"github.com/inamate/vectorscene/internal/render/raster"
	"github.com/inamate/vectorscene/internal/scene"
	"github.com/inamate/vectorscene/internal/spatial"
	"github.com/inamate/vectorscene/internal/view"
)

var (
	ErrLayerNotFound = errors.New("layer not found")
	ErrLayerLocked   = errors.New("layer is locked")
	ErrLastLayer     = errors.New("cannot remove the last layer")
	ErrElementInUse  = errors.New("element already belongs to a layer")
	ErrUnknownTool   = errors.New("unknown tool")
)

// Options configures a new Engine.
type Options struct {
	Viewport           geom.Rect2
	IndexCapacity      int
	HistorySize        int
	ZoomHistorySize    int
	SelectionTolerance float64 // pixels
	ExtentsPadding     float64 // percent of the fitted box
	Background         geom.Color
	Render             render.Options
}

// DefaultOptions returns a 1280×720 viewport with the library defaults.
func DefaultOptions() Options {
	return Options{
		Viewport:           geom.NewRect2(0, 0, 1280, 720),
		IndexCapacity:      spatial.DefaultCapacity,
		HistorySize:        command.DefaultMaxHistory,
		ZoomHistorySize:    view.DefaultHistorySize,
		SelectionTolerance: 8,
		ExtentsPadding:     5,
		Background:         geom.White,
		Render:             render.DefaultOptions(),
	}
}

// Engine owns one scene and everything needed to edit and draw it.
type Engine struct {
	opts Options

	view    *view.Transform
	zoomer  *view.Zoomer
	layers  *scene.Manager
	history *command.Manager

	tool      Tool
	drawStyle element.Style
	drag      *drag
	preview   element.Element

	// Dirty flag - the cached frame needs recompiling
	dirty bool
	frame []render.DrawCommand
}

// New creates an engine with a single Background layer.
func New(opts Options) *Engine {
	if opts.SelectionTolerance <= 0 {
		opts.SelectionTolerance = DefaultOptions().SelectionTolerance
	}
	e := &Engine{
		opts:      opts,
		view:      view.NewTransform(opts.Viewport),
		zoomer:    view.NewZoomer(opts.ZoomHistorySize),
		layers:    scene.NewManager(),
		history:   command.NewManager(opts.HistorySize),
		tool:      ToolSelect,
		drawStyle: element.DefaultStyle(),
		dirty:     true,
	}
	e.layers.SetIndexCapacity(opts.IndexCapacity)
	e.layers.SetListener(scene.Listener{
		LayersChanged: e.invalidate,
		LayerChanged:  func(*scene.Layer) { e.invalidate() },
	})
	e.history.OnHistoryChanged(e.invalidate)
	return e
}

func (e *Engine) invalidate() { e.dirty = true }

// View returns the live view transform.
func (e *Engine) View() *view.Transform { return e.view }

// LayerManager returns the live layer manager.
func (e *Engine) LayerManager() *scene.Manager { return e.layers }

// --- Queries ---

// Render returns the draw commands for the current frame. The frame is
// cached until something changes.
func (e *Engine) Render() []render.DrawCommand {
	if !e.dirty && e.frame != nil {
		return e.frame
	}
	elems := e.visibleElements()
	if e.preview != nil {
		elems = append(elems, e.preview)
	}
	cmds := render.Compile(e.view, elems, e.opts.Render)
	if d := e.drag; d != nil && d.kind == gestureZoomRect {
		cmds = append(cmds, zoomRectCommand(d.start, d.last))
	}
	if cmds == nil {
		cmds = []render.DrawCommand{}
	}
	e.frame = cmds
	e.dirty = false
	return cmds
}

// visibleElements returns the elements to draw in painter's order. On an
// unrotated view the layer indexes narrow the set to the viewport first.
func (e *Engine) visibleElements() []element.Element {
	if e.view.Rotation() != (geom.Vec3{}) {
		return e.layers.VisibleElements()
	}
	all := e.layers.VisibleBounds()
	if all.IsEmpty() {
		return nil
	}
	vp := e.view.Viewport()
	a := e.view.ScreenToWorld(geom.V2(vp.Left(), vp.Top()), 0)
	b := e.view.ScreenToWorld(geom.V2(vp.Right(), vp.Bottom()), 0)
	region := geom.NewBox3(
		geom.V3(min(a.X, b.X), min(a.Y, b.Y), all.Min.Z),
		geom.V3(max(a.X, b.X), max(a.Y, b.Y), all.Max.Z),
	).Inflate(e.view.DistToWorld(e.opts.SelectionTolerance))
	return e.layers.QueryVisibleElements(region)
}

func zoomRectCommand(a, b geom.Vec2) render.DrawCommand {
	r := geom.RectFromPoints(a, b)
	return render.DrawCommand{
		Op: render.OpPolygon,
		Points: []geom.Vec2{
			geom.V2(r.Left(), r.Top()), geom.V2(r.Right(), r.Top()),
			geom.V2(r.Right(), r.Bottom()), geom.V2(r.Left(), r.Bottom()),
		},
		Stroke:      geom.Gray.Hex(),
		StrokeWidth: 1,
	}
}

// RenderJSON returns Render serialized for a JS host.
func (e *Engine) RenderJSON() string {
	out, err := render.ToJSON(e.Render())
	if err != nil {
		logging.Logger().Error("serialize frame", "error", err)
	}
	return out
}

// RenderPNG rasterizes the current frame at viewport size.
func (e *Engine) RenderPNG(w io.Writer) error {
	vp := e.view.Viewport()
	width, height := int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height))
	return raster.Render(w, e.Render(), width, height, e.opts.Background)
}

// HitTest returns the topmost element under the screen point, or "" when
// nothing is within the selection tolerance.
func (e *Engine) HitTest(x, y float64) element.ID {
	if el, _, ok := e.hit(geom.V2(x, y)); ok {
		return el.ID()
	}
	return ""
}

func (e *Engine) hit(s geom.Vec2) (element.Element, *scene.Layer, bool) {
	p := e.view.ScreenToWorld(s, e.planeDepth())
	return e.layers.FindElementAtPoint(p, e.view.DistToWorld(e.opts.SelectionTolerance))
}

// planeDepth is the screen depth of the camera-facing plane through the
// world origin. Pointer input lands on that plane.
func (e *Engine) planeDepth() float64 {
	_, d, ok := e.view.WorldToScreen(geom.Vec3{})
	if !ok {
		return 0
	}
	return d
}

// SelectionBounds returns the union of the selected elements' bounds.
func (e *Engine) SelectionBounds() geom.Box3 {
	b := geom.EmptyBox3()
	for _, el := range e.layers.SelectedElements() {
		b = b.Union(el.Bounds())
	}
	return b
}

// Selection returns the selected element handles in render order.
func (e *Engine) Selection() []element.ID {
	var out []element.ID
	for _, el := range e.layers.SelectedElements() {
		out = append(out, el.ID())
	}
	return out
}

// ViewState returns the serializable view.
func (e *Engine) ViewState() view.State { return e.view.State() }

// LayersState describes the layers and which one is active.
type LayersState struct {
	Layers []scene.LayerState `json:"layers"`
	Active string             `json:"active"`
}

// Layers returns the saved form of every layer.
func (e *Engine) Layers() LayersState {
	out := LayersState{Layers: e.layers.SaveLayerState()}
	if l := e.layers.ActiveLayer(); l != nil {
		out.Active = l.ID()
	}
	return out
}

// HistoryState lists command names, most recent first.
type HistoryState struct {
	Undo []string `json:"undo"`
	Redo []string `json:"redo"`
}

// History returns the undo and redo stacks.
func (e *Engine) History() HistoryState {
	return HistoryState{Undo: e.history.UndoHistory(), Redo: e.history.RedoHistory()}
}

// ExportSVG writes the scene as SVG.
func (e *Engine) ExportSVG(w io.Writer, relative bool) error {
	return format.ExportSVG(w, e.layers, e.view, format.ExportOptions{Relative: relative})
}
