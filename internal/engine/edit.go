package engine

import (
	"fmt"
	"io"

	"github.com/inamate/vectorscene/internal/command"
	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/format"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/scene"
)

// FlatLayerName names the layer created by ImportFlat.
const FlatLayerName = "Flat import"

// AddElement adds el to the active layer as one undoable step.
func (e *Engine) AddElement(el element.Element) error {
	l := e.layers.ActiveLayer()
	if l == nil {
		return ErrLayerNotFound
	}
	if l.IsLocked() {
		return fmt.Errorf("add %s to %q: %w", el.Kind(), l.Name(), ErrLayerLocked)
	}
	if el.Attached() {
		return fmt.Errorf("add %s: %w", el.ID(), ErrElementInUse)
	}
	e.history.Execute(command.NewAdd(el, l))
	return nil
}

// RemoveSelected deletes the selected elements of unlocked layers as one
// undoable step and returns how many were removed.
func (e *Engine) RemoveSelected() int {
	var cmds []command.Command
	n := 0
	for _, l := range e.layers.Layers() {
		if l.IsLocked() {
			continue
		}
		sel := l.Selected()
		if len(sel) == 0 {
			continue
		}
		for _, el := range sel {
			el.SetSelected(false)
		}
		cmds = append(cmds, command.NewBatchRemove(sel, l))
		n += len(sel)
	}
	if n == 0 {
		return 0
	}
	e.history.Execute(command.NewComposite(fmt.Sprintf("Delete %d element(s)", n), cmds...))
	return n
}

// SetStyle applies s to the selected elements as one undoable step.
func (e *Engine) SetStyle(s element.Style) int {
	var cmds []command.Command
	for _, el := range e.editableSelection() {
		cmds = append(cmds, command.NewProperty(el.ID(), "style", el.Style, el.SetStyle, s))
	}
	if len(cmds) == 0 {
		return 0
	}
	e.history.Execute(command.NewComposite("Edit style", cmds...))
	return len(cmds)
}

// MoveSelected translates the selected elements by a world offset.
// Consecutive moves of the same selection merge into one undo step.
func (e *Engine) MoveSelected(delta geom.Vec3) int {
	sel := e.editableSelection()
	if len(sel) == 0 || !delta.IsValid() {
		return 0
	}
	e.history.Execute(command.NewBatchMove(sel, delta))
	return len(sel)
}

// editableSelection returns the selected elements of unlocked layers.
func (e *Engine) editableSelection() []element.Element {
	var out []element.Element
	for _, l := range e.layers.Layers() {
		if !l.IsLocked() {
			out = append(out, l.Selected()...)
		}
	}
	return out
}

// Undo reverts the last edit.
func (e *Engine) Undo() bool { return e.history.Undo() }

// Redo reapplies the last undone edit.
func (e *Engine) Redo() bool { return e.history.Redo() }

// SetSelection replaces the selection. Unknown handles are ignored.
func (e *Engine) SetSelection(ids []element.ID) {
	e.layers.ClearSelection()
	for _, id := range ids {
		l, ok := e.layers.LayerOf(id)
		if !ok {
			continue
		}
		if el, ok := l.Element(id); ok {
			el.SetSelected(true)
		}
	}
	e.invalidate()
}

// SelectAt selects the topmost element under the screen point. With
// additive the hit element toggles and the rest of the selection stays;
// otherwise the selection is replaced, and cleared on a miss.
func (e *Engine) SelectAt(x, y float64, additive bool) element.ID {
	defer e.invalidate()
	el, _, ok := e.hit(geom.V2(x, y))
	if !additive {
		e.layers.ClearSelection()
	}
	if !ok {
		return ""
	}
	if additive {
		el.SetSelected(!el.Selected())
	} else {
		el.SetSelected(true)
	}
	return el.ID()
}

// --- Layers ---

// LayerUpdate carries the layer properties to change. Nil fields are kept.
type LayerUpdate struct {
	Name    *string     `json:"name,omitempty"`
	Visible *bool       `json:"visible,omitempty"`
	Locked  *bool       `json:"locked,omitempty"`
	Color   *geom.Color `json:"color,omitempty"`
}

// AddLayer appends a layer, makes it active and returns it.
func (e *Engine) AddLayer(name string) *scene.Layer {
	var l *scene.Layer
	e.history.Execute(command.NewLayerStructure("Add layer", e.layers, func() {
		l = e.layers.AddLayer(name)
		e.layers.SetActiveLayer(l)
	}))
	return l
}

// RemoveLayer removes a layer and its elements.
func (e *Engine) RemoveLayer(id string) error {
	l, ok := e.layers.LayerByID(id)
	if !ok {
		return fmt.Errorf("remove layer %s: %w", id, ErrLayerNotFound)
	}
	if e.layers.Count() <= 1 {
		return ErrLastLayer
	}
	e.history.Execute(command.NewLayerStructure("Remove layer "+l.Name(), e.layers, func() {
		e.layers.RemoveLayer(l)
	}))
	return nil
}

// SetActiveLayer makes the layer the target of new elements.
func (e *Engine) SetActiveLayer(id string) error {
	l, ok := e.layers.LayerByID(id)
	if !ok {
		return fmt.Errorf("activate layer %s: %w", id, ErrLayerNotFound)
	}
	if !e.layers.SetActiveLayer(l) {
		return fmt.Errorf("activate layer %q: %w", l.Name(), ErrLayerLocked)
	}
	return nil
}

// UpdateLayer changes layer properties as one undoable step. Locking the
// active layer moves the active mark to the first unlocked layer.
func (e *Engine) UpdateLayer(id string, u LayerUpdate) error {
	l, ok := e.layers.LayerByID(id)
	if !ok {
		return fmt.Errorf("update layer %s: %w", id, ErrLayerNotFound)
	}
	e.history.Execute(command.NewLayerStructure("Edit layer "+l.Name(), e.layers, func() {
		if u.Name != nil && *u.Name != "" {
			l.SetName(*u.Name)
		}
		if u.Visible != nil {
			l.SetVisible(*u.Visible)
		}
		if u.Color != nil {
			l.SetColor(*u.Color)
		}
		if u.Locked != nil {
			l.SetLocked(*u.Locked)
			if *u.Locked && e.layers.ActiveLayer() == l {
				e.activateFirstUnlocked()
			}
		}
	}))
	return nil
}

func (e *Engine) activateFirstUnlocked() {
	for _, l := range e.layers.Layers() {
		if e.layers.SetActiveLayer(l) {
			return
		}
	}
}

// MoveLayer moves a layer to a render position; 0 is the bottom.
func (e *Engine) MoveLayer(id string, index int) error {
	l, ok := e.layers.LayerByID(id)
	if !ok {
		return fmt.Errorf("move layer %s: %w", id, ErrLayerNotFound)
	}
	if index < 0 || index >= e.layers.Count() {
		return fmt.Errorf("move layer %q to %d: index out of range", l.Name(), index)
	}
	if e.layers.IndexOf(l) == index {
		return nil
	}
	e.history.Execute(command.NewLayerStructure("Move layer "+l.Name(), e.layers, func() {
		e.layers.MoveLayer(l, index)
	}))
	return nil
}

// --- Import ---

// ImportSVG adds the layers of an SVG document as one undoable step and
// fits the view to the result. A malformed document changes nothing.
func (e *Engine) ImportSVG(r io.Reader) (format.ImportResult, error) {
	var (
		res format.ImportResult
		err error
	)
	cmd := command.NewLayerStructure("Import SVG", e.layers, func() {
		res, err = format.ImportSVG(r, e.layers)
	})
	cmd.Execute()
	if err != nil {
		return res, fmt.Errorf("import svg: %w", err)
	}
	e.history.Record(cmd)
	e.ZoomExtents()
	logging.Logger().Info("imported svg", "layers", len(res.Layers), "elements", res.Elements, "skipped", res.Skipped)
	return res, nil
}

// ImportFlat reads a longitude/latitude point file into a new layer as one
// undoable step and returns the number of lines added.
func (e *Engine) ImportFlat(r io.Reader) (int, error) {
	var (
		n   int
		err error
	)
	cmd := command.NewLayerStructure("Import flat file", e.layers, func() {
		l := e.layers.AddLayer(FlatLayerName)
		if n, err = format.ImportFlat(r, l); err != nil {
			e.layers.RemoveLayer(l)
			return
		}
		e.layers.SetActiveLayer(l)
	})
	cmd.Execute()
	if err != nil {
		return 0, fmt.Errorf("import flat file: %w", err)
	}
	e.history.Record(cmd)
	e.ZoomExtents()
	return n, nil
}
