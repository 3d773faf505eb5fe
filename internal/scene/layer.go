// Package scene holds layers of elements and the manager that orders them.
package scene

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
	"github.com/inamate/vectorscene/internal/spatial"
)

// Layer owns a set of elements, their aggregate bounds and a spatial index
// that is rebuilt lazily when members change.
type Layer struct {
	id      string
	name    string
	visible bool
	locked  bool
	color   geom.Color

	elements map[element.ID]element.Element
	order    []element.ID

	bounds        geom.Box3
	index         *spatial.Octree[element.Element]
	rank          map[element.ID]int
	indexDirty    bool
	indexCapacity int

	// batch coalesces change handling inside Batch.
	batch   int
	pending bool

	onChange func(*Layer)
}

// NewLayer creates an empty, visible, unlocked layer.
func NewLayer(name string) *Layer {
	return &Layer{
		id:            uuid.NewString(),
		name:          name,
		visible:       true,
		color:         geom.Black,
		elements:      make(map[element.ID]element.Element),
		bounds:        geom.EmptyBox3(),
		indexCapacity: spatial.DefaultCapacity,
	}
}

func (l *Layer) ID() string        { return l.id }
func (l *Layer) Name() string      { return l.name }
func (l *Layer) IsVisible() bool   { return l.visible }
func (l *Layer) IsLocked() bool    { return l.locked }
func (l *Layer) Color() geom.Color { return l.color }
func (l *Layer) Bounds() geom.Box3 { return l.bounds }
func (l *Layer) Count() int        { return len(l.order) }
func (l *Layer) IndexDirty() bool  { return l.indexDirty }

func (l *Layer) SetName(n string) {
	l.name = n
	l.notify()
}

func (l *Layer) SetVisible(v bool) {
	l.visible = v
	l.notify()
}

func (l *Layer) SetLocked(v bool) {
	l.locked = v
	l.notify()
}

func (l *Layer) SetColor(c geom.Color) {
	l.color = c
	l.notify()
}

// SetIndexCapacity sets the per-node capacity used when the index is
// rebuilt.
func (l *Layer) SetIndexCapacity(n int) {
	l.indexCapacity = n
	l.indexDirty = true
}

// Contains reports whether the element is a member.
func (l *Layer) Contains(id element.ID) bool {
	_, ok := l.elements[id]
	return ok
}

// Element returns a member by handle.
func (l *Layer) Element(id element.ID) (element.Element, bool) {
	e, ok := l.elements[id]
	return e, ok
}

// Elements returns the members in insertion order.
func (l *Layer) Elements() []element.Element {
	out := make([]element.Element, len(l.order))
	for i, id := range l.order {
		out[i] = l.elements[id]
	}
	return out
}

// AddElement adds e to the layer. It fails when the layer is locked or e is
// nil or already a member. With notifyNow the aggregate bounds are extended
// and the layer-changed signal fires immediately.
func (l *Layer) AddElement(e element.Element, notifyNow bool) bool {
	if l.locked || e == nil {
		return false
	}
	if l.Contains(e.ID()) {
		return false
	}
	if e.Attached() {
		logging.Logger().Warn("element already belongs to a layer", "element", e.ID(), "layer", l.name)
		return false
	}
	l.elements[e.ID()] = e
	l.order = append(l.order, e.ID())
	e.Attach(l.elementChanged)
	l.indexDirty = true
	if notifyNow {
		l.bounds = l.bounds.Union(e.Bounds())
		l.notify()
	}
	return true
}

// RemoveElement detaches e and recomputes the aggregate bounds.
func (l *Layer) RemoveElement(e element.Element) bool {
	if l.locked || e == nil || !l.Contains(e.ID()) {
		return false
	}
	l.detach(e.ID())
	l.changed()
	return true
}

func (l *Layer) detach(id element.ID) {
	if e, ok := l.elements[id]; ok {
		e.Attach(nil)
	}
	delete(l.elements, id)
	for i, o := range l.order {
		if o == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Clear removes every member. Locked layers are left untouched.
func (l *Layer) Clear() bool {
	if l.locked {
		return false
	}
	for _, e := range l.elements {
		e.Attach(nil)
	}
	l.elements = make(map[element.ID]element.Element)
	l.order = nil
	l.changed()
	return true
}

// RebuildBounds recomputes the aggregate bounds from scratch.
func (l *Layer) RebuildBounds() {
	b := geom.EmptyBox3()
	for _, id := range l.order {
		b = b.Union(l.elements[id].Bounds())
	}
	l.bounds = b
}

// Batch runs fn and handles member changes once at the end.
func (l *Layer) Batch(fn func()) {
	l.batch++
	defer func() {
		l.batch--
		if l.batch == 0 && l.pending {
			l.pending = false
			l.changed()
		}
	}()
	fn()
}

// elementChanged is attached to every member.
func (l *Layer) elementChanged(element.ID) {
	l.changed()
}

func (l *Layer) changed() {
	l.indexDirty = true
	if l.batch > 0 {
		l.pending = true
		return
	}
	l.RebuildBounds()
	l.notify()
}

func (l *Layer) notify() {
	if l.onChange != nil {
		l.onChange(l)
	}
}

// QueryElementsInFrustum returns the members whose bounds intersect
// region, in insertion order.
func (l *Layer) QueryElementsInFrustum(region geom.Box3) []element.Element {
	if len(l.order) == 0 {
		return nil
	}
	if l.indexDirty || l.index == nil {
		// members added without notifyNow have not been folded in yet
		l.RebuildBounds()
		l.rebuildIndex()
	}
	if !l.bounds.IntersectsWith(region) {
		return nil
	}
	candidates := l.index.Query(region)
	out := candidates[:0]
	for _, e := range candidates {
		if region.IntersectsWith(e.Bounds()) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b element.Element) int {
		return cmp.Compare(l.rank[a.ID()], l.rank[b.ID()])
	})
	return out
}

func (l *Layer) rebuildIndex() {
	l.index = spatial.NewOctree[element.Element](l.bounds, l.indexCapacity)
	l.rank = make(map[element.ID]int, len(l.order))
	for i, id := range l.order {
		l.index.Insert(l.elements[id])
		l.rank[id] = i
	}
	l.indexDirty = false
}

// SelectAll sets the selection flag of every member.
func (l *Layer) SelectAll(v bool) {
	for _, id := range l.order {
		l.elements[id].SetSelected(v)
	}
}

// Selected returns the selected members in insertion order.
func (l *Layer) Selected() []element.Element {
	var out []element.Element
	for _, id := range l.order {
		if e := l.elements[id]; e.Selected() {
			out = append(out, e)
		}
	}
	return out
}

// HitTest returns the topmost member hit at p.
func (l *Layer) HitTest(p geom.Vec3, tol float64) (element.Element, bool) {
	for i := len(l.order) - 1; i >= 0; i-- {
		if e := l.elements[l.order[i]]; e.HitTest(p, tol) {
			return e, true
		}
	}
	return nil, false
}
