package command

import (
	"fmt"
	"slices"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/scene"
)

// AddRemove adds one element to a layer or removes it. It never merges.
type AddRemove struct {
	elem  element.Element
	layer *scene.Layer
	add   bool
}

func NewAdd(e element.Element, l *scene.Layer) *AddRemove    { return &AddRemove{e, l, true} }
func NewRemove(e element.Element, l *scene.Layer) *AddRemove { return &AddRemove{e, l, false} }

func (c *AddRemove) Name() string {
	if c.add {
		return fmt.Sprintf("Add %s", c.elem.Kind())
	}
	return fmt.Sprintf("Remove %s", c.elem.Kind())
}

func (c *AddRemove) Execute() { c.apply(c.add) }
func (c *AddRemove) Undo()    { c.apply(!c.add) }

func (c *AddRemove) apply(add bool) {
	if add {
		c.layer.AddElement(c.elem, true)
	} else {
		c.layer.RemoveElement(c.elem)
	}
}

func (c *AddRemove) CanMergeWith(Command) bool { return false }
func (c *AddRemove) MergeWith(Command)         {}

// BatchAddRemove adds or removes several elements of one layer.
type BatchAddRemove struct {
	elems []element.Element
	layer *scene.Layer
	add   bool
}

func NewBatchAdd(elems []element.Element, l *scene.Layer) *BatchAddRemove {
	return &BatchAddRemove{slices.Clone(elems), l, true}
}

func NewBatchRemove(elems []element.Element, l *scene.Layer) *BatchAddRemove {
	return &BatchAddRemove{slices.Clone(elems), l, false}
}

func (c *BatchAddRemove) Name() string {
	if c.add {
		return fmt.Sprintf("Add %d element(s)", len(c.elems))
	}
	return fmt.Sprintf("Remove %d element(s)", len(c.elems))
}

func (c *BatchAddRemove) Execute() { c.apply(c.add) }
func (c *BatchAddRemove) Undo()    { c.apply(!c.add) }

// apply adds in order and removes in reverse order.
func (c *BatchAddRemove) apply(add bool) {
	c.layer.Batch(func() {
		if add {
			for _, e := range c.elems {
				c.layer.AddElement(e, true)
			}
			return
		}
		for i := len(c.elems) - 1; i >= 0; i-- {
			c.layer.RemoveElement(c.elems[i])
		}
	})
}

func (c *BatchAddRemove) CanMergeWith(Command) bool { return false }
func (c *BatchAddRemove) MergeWith(Command)         {}

// Property sets one value through getter and setter closures. The old value
// is captured when the command is built.
type Property[T any] struct {
	target   element.ID
	property string
	set      func(T)
	oldValue T
	newValue T
}

// NewProperty captures get() as the value to restore on undo.
func NewProperty[T any](target element.ID, property string, get func() T, set func(T), newValue T) *Property[T] {
	return &Property[T]{
		target:   target,
		property: property,
		set:      set,
		oldValue: get(),
		newValue: newValue,
	}
}

func (c *Property[T]) Name() string { return fmt.Sprintf("Edit %s", c.property) }
func (c *Property[T]) Execute()     { c.set(c.newValue) }
func (c *Property[T]) Undo()        { c.set(c.oldValue) }

// UpdateNewValue changes the value applied by Execute.
func (c *Property[T]) UpdateNewValue(v T) { c.newValue = v }

func (c *Property[T]) CanMergeWith(next Command) bool {
	n, ok := next.(*Property[T])
	return ok && n.target == c.target && n.property == c.property
}

func (c *Property[T]) MergeWith(next Command) {
	if n, ok := next.(*Property[T]); ok && c.CanMergeWith(n) {
		c.newValue = n.newValue
	}
}

// Composite runs several commands as one and undoes them in reverse.
type Composite struct {
	name string
	cmds []Command
}

func NewComposite(name string, cmds ...Command) *Composite {
	if name == "" {
		name = "Composite"
	}
	return &Composite{name: name, cmds: cmds}
}

func (c *Composite) Name() string { return c.name }

func (c *Composite) Execute() {
	for _, cmd := range c.cmds {
		cmd.Execute()
	}
}

func (c *Composite) Undo() {
	for i := len(c.cmds) - 1; i >= 0; i-- {
		c.cmds[i].Undo()
	}
}

func (c *Composite) CanMergeWith(Command) bool { return false }
func (c *Composite) MergeWith(Command)         {}

// ControlPoint moves one control point of an element. Undo and redo
// restore the exact geometry seen before and after.
type ControlPoint struct {
	elem   element.Element
	index  int
	point  geom.Vec3
	before func()
	after  func()
}

func NewControlPoint(e element.Element, index int, p geom.Vec3) *ControlPoint {
	return &ControlPoint{elem: e, index: index, point: p, before: capture(e)}
}

func (c *ControlPoint) Name() string {
	return fmt.Sprintf("Move %s point %d", c.elem.Kind(), c.index)
}

func (c *ControlPoint) Execute() {
	if c.after != nil {
		c.after()
		return
	}
	if err := c.elem.MoveControlPoint(c.index, c.point); err != nil {
		return
	}
	c.after = capture(c.elem)
}

func (c *ControlPoint) Undo() { c.before() }

func (c *ControlPoint) CanMergeWith(next Command) bool {
	n, ok := next.(*ControlPoint)
	return ok && n.elem.ID() == c.elem.ID() && n.index == c.index
}

func (c *ControlPoint) MergeWith(next Command) {
	if n, ok := next.(*ControlPoint); ok && c.CanMergeWith(n) {
		c.point = n.point
		c.after = n.after
	}
}

// BatchMove translates a set of elements by one offset.
type BatchMove struct {
	elems []element.Element
	delta geom.Vec3
}

func NewBatchMove(elems []element.Element, delta geom.Vec3) *BatchMove {
	return &BatchMove{elems: slices.Clone(elems), delta: delta}
}

func (c *BatchMove) Name() string { return fmt.Sprintf("Move %d element(s)", len(c.elems)) }
func (c *BatchMove) Execute()     { c.translate(c.delta) }
func (c *BatchMove) Undo()        { c.translate(c.delta.Neg()) }

func (c *BatchMove) translate(d geom.Vec3) {
	for _, e := range c.elems {
		e.Translate(d)
	}
}

// Delta returns the accumulated offset.
func (c *BatchMove) Delta() geom.Vec3 { return c.delta }

func (c *BatchMove) CanMergeWith(next Command) bool {
	n, ok := next.(*BatchMove)
	if !ok || len(n.elems) != len(c.elems) {
		return false
	}
	for i := range c.elems {
		if c.elems[i].ID() != n.elems[i].ID() {
			return false
		}
	}
	return true
}

func (c *BatchMove) MergeWith(next Command) {
	if n, ok := next.(*BatchMove); ok && c.CanMergeWith(n) {
		c.delta = c.delta.Add(n.delta)
	}
}

// LayerStructure records layer-level edits as before and after snapshots
// of the layer manager.
type LayerStructure struct {
	name  string
	lm    *scene.Manager
	apply func()

	before, after structure
}

type structure struct {
	states []scene.LayerState
	layers []*scene.Layer
	active *scene.Layer
}

func snapshotStructure(lm *scene.Manager) structure {
	return structure{lm.SaveLayerState(), lm.Layers(), lm.ActiveLayer()}
}

func (s structure) restore(lm *scene.Manager) {
	lm.RestoreLayers(s.states, s.layers)
	if s.active != nil {
		lm.SetActiveLayer(s.active)
	}
}

// NewLayerStructure wraps apply, which performs the edit on lm.
func NewLayerStructure(name string, lm *scene.Manager, apply func()) *LayerStructure {
	return &LayerStructure{name: name, lm: lm, apply: apply}
}

func (c *LayerStructure) Name() string { return c.name }

func (c *LayerStructure) Execute() {
	if c.apply != nil {
		c.before = snapshotStructure(c.lm)
		c.apply()
		c.apply = nil
		c.after = snapshotStructure(c.lm)
		return
	}
	c.after.restore(c.lm)
}

func (c *LayerStructure) Undo() { c.before.restore(c.lm) }

func (c *LayerStructure) CanMergeWith(Command) bool { return false }
func (c *LayerStructure) MergeWith(Command)         {}

// capture returns a func that puts e's geometry back to its current state.
func capture(e element.Element) func() {
	switch v := e.(type) {
	case *element.Line:
		a, b := v.Start(), v.End()
		return func() { v.SetEndpoints(a, b) }
	case *element.Circle:
		c, r := v.Center(), v.Radius()
		return func() {
			v.SetRadius(r)
			v.SetCenter(c)
		}
	case *element.Rectangle:
		a, b := v.Start(), v.End()
		return func() { v.SetCorners(a, b) }
	case *element.Label:
		p := v.Position()
		return func() { v.SetPosition(p) }
	case *element.Cylinder:
		a, b, r := v.StartCenter(), v.EndCenter(), v.Radius()
		return func() {
			v.SetRadius(r)
			v.SetCenters(a, b)
		}
	}
	return func() {}
}
