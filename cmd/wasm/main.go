//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/geom"
)

var eng *engine.Engine

func main() {
	eng = engine.New(engine.DefaultOptions())

	// Create the engine API object
	sceneEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	sceneEngine.Set("setViewport", js.FuncOf(setViewport))
	sceneEngine.Set("pan", js.FuncOf(pan))
	sceneEngine.Set("zoomAt", js.FuncOf(zoomAt))
	sceneEngine.Set("zoomIn", js.FuncOf(zoomIn))
	sceneEngine.Set("zoomOut", js.FuncOf(zoomOut))
	sceneEngine.Set("zoomPrevious", js.FuncOf(zoomPrevious))
	sceneEngine.Set("zoomExtents", js.FuncOf(zoomExtents))
	sceneEngine.Set("setRotation", js.FuncOf(setRotation))
	sceneEngine.Set("setTool", js.FuncOf(setTool))
	sceneEngine.Set("setDrawStyle", js.FuncOf(setDrawStyle))
	sceneEngine.Set("pointerDown", js.FuncOf(pointerDown))
	sceneEngine.Set("pointerMove", js.FuncOf(pointerMove))
	sceneEngine.Set("pointerUp", js.FuncOf(pointerUp))
	sceneEngine.Set("cancelPointer", js.FuncOf(cancelPointer))
	sceneEngine.Set("addElement", js.FuncOf(addElement))
	sceneEngine.Set("removeSelected", js.FuncOf(removeSelected))
	sceneEngine.Set("setSelection", js.FuncOf(setSelection))
	sceneEngine.Set("undo", js.FuncOf(undo))
	sceneEngine.Set("redo", js.FuncOf(redo))
	sceneEngine.Set("addLayer", js.FuncOf(addLayer))
	sceneEngine.Set("removeLayer", js.FuncOf(removeLayer))
	sceneEngine.Set("setActiveLayer", js.FuncOf(setActiveLayer))
	sceneEngine.Set("updateLayer", js.FuncOf(updateLayer))
	sceneEngine.Set("moveLayer", js.FuncOf(moveLayer))
	sceneEngine.Set("importSVG", js.FuncOf(importSVG))
	sceneEngine.Set("importFlat", js.FuncOf(importFlat))

	// --- Queries (frontend ← backend) ---
	sceneEngine.Set("render", js.FuncOf(render))
	sceneEngine.Set("hitTest", js.FuncOf(hitTest))
	sceneEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	sceneEngine.Set("getSelection", js.FuncOf(getSelection))
	sceneEngine.Set("getViewState", js.FuncOf(getViewState))
	sceneEngine.Set("getLayers", js.FuncOf(getLayers))
	sceneEngine.Set("getHistory", js.FuncOf(getHistory))
	sceneEngine.Set("exportSVG", js.FuncOf(exportSVG))

	// Register on global scope
	js.Global().Set("vectorSceneEngine", sceneEngine)

	// Signal that WASM is ready
	js.Global().Set("vectorSceneWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func failMsg(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func result(err error) interface{} {
	if err != nil {
		return fail(err)
	}
	return ok()
}

func toJSON(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

func floats(args []js.Value, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = args[i].Float()
	}
	return out, true
}

func pointer(args []js.Value) (engine.Pointer, bool) {
	if len(args) < 2 {
		return engine.Pointer{}, false
	}
	p := engine.Pointer{X: args[0].Float(), Y: args[1].Float()}
	if len(args) > 2 {
		p.Button = engine.Button(args[2].Int())
	}
	if len(args) > 3 {
		p.Shift = args[3].Bool()
	}
	return p, true
}

// --- Command Handlers ---

func setViewport(this js.Value, args []js.Value) interface{} {
	v, ok := floats(args, 2)
	if !ok || v[0] <= 0 || v[1] <= 0 {
		return failMsg("invalid viewport")
	}
	eng.SetViewport(v[0], v[1])
	return nil
}

func pan(this js.Value, args []js.Value) interface{} {
	v, ok := floats(args, 2)
	if !ok {
		return nil
	}
	return js.ValueOf(eng.Pan(v[0], v[1]))
}

func zoomAt(this js.Value, args []js.Value) interface{} {
	v, ok := floats(args, 3)
	if !ok {
		return nil
	}
	return js.ValueOf(eng.ZoomAt(v[0], v[1], v[2]))
}

func zoomIn(this js.Value, args []js.Value) interface{} {
	v, ok := floats(args, 2)
	if !ok {
		return nil
	}
	return js.ValueOf(eng.ZoomIn(v[0], v[1]))
}

func zoomOut(this js.Value, args []js.Value) interface{} {
	v, ok := floats(args, 2)
	if !ok {
		return nil
	}
	return js.ValueOf(eng.ZoomOut(v[0], v[1]))
}

func zoomPrevious(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ZoomPrevious())
}

func zoomExtents(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ZoomExtents())
}

// setRotation takes radians around the x, y and z axes.
func setRotation(this js.Value, args []js.Value) interface{} {
	v, ok := floats(args, 3)
	if !ok {
		return nil
	}
	return js.ValueOf(eng.SetRotation(geom.V3(v[0], v[1], v[2])))
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failMsg("missing tool")
	}
	return result(eng.SetTool(engine.Tool(args[0].String())))
}

func setDrawStyle(this js.Value, args []js.Value) interface{} {
	var p *engine.StyleParams
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[0].String()), &p); err != nil {
			return fail(err)
		}
	}
	eng.SetDrawStyle(p.Style())
	return ok()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if p, ok := pointer(args); ok {
		eng.PointerDown(p)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if p, ok := pointer(args); ok {
		eng.PointerMove(p)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if p, ok := pointer(args); ok {
		eng.PointerUp(p)
	}
	return nil
}

func cancelPointer(this js.Value, args []js.Value) interface{} {
	eng.CancelPointer()
	return nil
}

func addElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failMsg("missing element JSON")
	}
	var p engine.ElementParams
	if err := json.Unmarshal([]byte(args[0].String()), &p); err != nil {
		return fail(err)
	}
	el, err := p.Build()
	if err != nil {
		return fail(err)
	}
	if err := eng.AddElement(el); err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": string(el.ID())})
}

func removeSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RemoveSelected())
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]element.ID, length)
	for i := 0; i < length; i++ {
		ids[i] = element.ID(arr.Index(i).String())
	}
	eng.SetSelection(ids)
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func addLayer(this js.Value, args []js.Value) interface{} {
	name := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	return js.ValueOf(eng.AddLayer(name).ID())
}

func removeLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failMsg("missing layer id")
	}
	return result(eng.RemoveLayer(args[0].String()))
}

func setActiveLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failMsg("missing layer id")
	}
	return result(eng.SetActiveLayer(args[0].String()))
}

// updateLayer takes a layer id and a JSON object with any of name,
// visible, locked and color.
func updateLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return failMsg("missing layer id or update JSON")
	}
	var p struct {
		Name    *string `json:"name"`
		Visible *bool   `json:"visible"`
		Locked  *bool   `json:"locked"`
		Color   *string `json:"color"`
	}
	if err := json.Unmarshal([]byte(args[1].String()), &p); err != nil {
		return fail(err)
	}
	u := engine.LayerUpdate{Name: p.Name, Visible: p.Visible, Locked: p.Locked}
	if p.Color != nil {
		c := geom.ParseColor(*p.Color, geom.Black)
		u.Color = &c
	}
	return result(eng.UpdateLayer(args[0].String(), u))
}

func moveLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return failMsg("missing layer id or index")
	}
	return result(eng.MoveLayer(args[0].String(), args[1].Int()))
}

func importSVG(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failMsg("missing SVG text")
	}
	res, err := eng.ImportSVG(strings.NewReader(args[0].String()))
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{
		"ok":       true,
		"layers":   len(res.Layers),
		"elements": res.Elements,
		"skipped":  res.Skipped,
	})
}

func importFlat(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failMsg("missing point data")
	}
	n, err := eng.ImportFlat(strings.NewReader(args[0].String()))
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "elements": n})
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(string(eng.HitTest(x, y)))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	b := eng.SelectionBounds()
	if b.IsEmpty() {
		return js.ValueOf("null")
	}
	return toJSON(b)
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Selection())
}

func getViewState(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.ViewState())
}

func getLayers(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Layers())
}

func getHistory(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.History())
}

// exportSVG takes an optional flag for screen-relative coordinates.
func exportSVG(this js.Value, args []js.Value) interface{} {
	relative := len(args) > 0 && args[0].Truthy()
	var sb strings.Builder
	if err := eng.ExportSVG(&sb, relative); err != nil {
		return fail(err)
	}
	return js.ValueOf(sb.String())
}
