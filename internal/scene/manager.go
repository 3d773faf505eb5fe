package scene

import (
	"fmt"
	"slices"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/logging"
)

// BackgroundLayerName is the name of the layer every manager starts with.
const BackgroundLayerName = "Background"

// Listener receives layer manager events. Nil fields are skipped.
type Listener struct {
	LayerAdded         func(*Layer)
	LayerRemoved       func(*Layer)
	LayerReordered     func()
	ActiveLayerChanged func(*Layer)
	LayersChanged      func()

	// LayerChanged fires when a layer's properties or members change.
	LayerChanged func(*Layer)
}

// Manager keeps the ordered layer list. List order is render order: the
// last layer is drawn on top.
type Manager struct {
	layers        []*Layer
	active        *Layer
	indexCapacity int
	listener      Listener
}

// NewManager creates a manager holding a single active Background layer.
func NewManager() *Manager {
	m := &Manager{}
	m.AddLayer(BackgroundLayerName)
	return m
}

// SetListener replaces the event callbacks.
func (m *Manager) SetListener(l Listener) { m.listener = l }

// SetIndexCapacity sets the octree node capacity for all current and
// future layers.
func (m *Manager) SetIndexCapacity(n int) {
	m.indexCapacity = n
	for _, l := range m.layers {
		l.SetIndexCapacity(n)
	}
}

// Layers returns the layers in render order.
func (m *Manager) Layers() []*Layer { return slices.Clone(m.layers) }

// Count returns the number of layers.
func (m *Manager) Count() int { return len(m.layers) }

// ActiveLayer returns the layer new elements go to.
func (m *Manager) ActiveLayer() *Layer { return m.active }

// LayerByID looks a layer up by its id.
func (m *Manager) LayerByID(id string) (*Layer, bool) {
	for _, l := range m.layers {
		if l.id == id {
			return l, true
		}
	}
	return nil, false
}

// IndexOf returns the render position of l or -1.
func (m *Manager) IndexOf(l *Layer) int {
	return slices.Index(m.layers, l)
}

// AddLayer appends a new layer. An empty name becomes "Layer {n}" and a
// taken name gets a " (n)" suffix.
func (m *Manager) AddLayer(name string) *Layer {
	if name == "" {
		name = fmt.Sprintf("Layer %d", len(m.layers)+1)
	}
	l := NewLayer(m.uniqueName(name))
	m.attach(l)
	m.layers = append(m.layers, l)
	if m.active == nil {
		m.active = l
		m.emitActive()
	}
	if m.listener.LayerAdded != nil {
		m.listener.LayerAdded(l)
	}
	m.emitChanged()
	return l
}

func (m *Manager) uniqueName(name string) string {
	taken := func(n string) bool {
		return slices.ContainsFunc(m.layers, func(l *Layer) bool { return l.name == n })
	}
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		if c := fmt.Sprintf("%s (%d)", name, i); !taken(c) {
			return c
		}
	}
}

func (m *Manager) attach(l *Layer) {
	if m.indexCapacity > 0 {
		l.SetIndexCapacity(m.indexCapacity)
	}
	l.onChange = func(l *Layer) {
		if m.listener.LayerChanged != nil {
			m.listener.LayerChanged(l)
		}
	}
}

// RemoveLayer removes l. The last remaining layer cannot be removed.
func (m *Manager) RemoveLayer(l *Layer) bool {
	i := m.IndexOf(l)
	if i < 0 || len(m.layers) <= 1 {
		return false
	}
	m.layers = slices.Delete(m.layers, i, i+1)
	l.onChange = nil
	if m.active == l {
		m.active = m.firstUnlocked()
		m.emitActive()
	}
	if m.listener.LayerRemoved != nil {
		m.listener.LayerRemoved(l)
	}
	m.emitChanged()
	return true
}

func (m *Manager) firstUnlocked() *Layer {
	for _, l := range m.layers {
		if !l.locked {
			return l
		}
	}
	if len(m.layers) > 0 {
		return m.layers[0]
	}
	return nil
}

// RemoveAllLayers drops every layer and starts over with a fresh
// Background layer.
func (m *Manager) RemoveAllLayers() {
	for _, l := range m.layers {
		l.onChange = nil
		if m.listener.LayerRemoved != nil {
			m.listener.LayerRemoved(l)
		}
	}
	m.layers = nil
	m.active = nil
	m.AddLayer(BackgroundLayerName)
}

// SetActiveLayer makes l the target for new elements. Locked layers and
// foreign layers are refused.
func (m *Manager) SetActiveLayer(l *Layer) bool {
	if l == nil || l.locked || m.IndexOf(l) < 0 {
		return false
	}
	if m.active != l {
		m.active = l
		m.emitActive()
	}
	return true
}

// MoveLayer moves l to render position idx.
func (m *Manager) MoveLayer(l *Layer, idx int) bool {
	from := m.IndexOf(l)
	if from < 0 || idx < 0 || idx >= len(m.layers) || idx == from {
		return false
	}
	m.layers = slices.Delete(m.layers, from, from+1)
	m.layers = slices.Insert(m.layers, idx, l)
	if m.listener.LayerReordered != nil {
		m.listener.LayerReordered()
	}
	m.emitChanged()
	return true
}

// BringToFront draws l above every other layer.
func (m *Manager) BringToFront(l *Layer) bool { return m.MoveLayer(l, len(m.layers)-1) }

// SendToBack draws l below every other layer.
func (m *Manager) SendToBack(l *Layer) bool { return m.MoveLayer(l, 0) }

// MoveUp moves l one step toward the top.
func (m *Manager) MoveUp(l *Layer) bool { return m.MoveLayer(l, m.IndexOf(l)+1) }

// MoveDown moves l one step toward the bottom.
func (m *Manager) MoveDown(l *Layer) bool {
	i := m.IndexOf(l)
	if i < 0 {
		return false
	}
	return m.MoveLayer(l, i-1)
}

func (m *Manager) emitActive() {
	if m.listener.ActiveLayerChanged != nil {
		m.listener.ActiveLayerChanged(m.active)
	}
}

func (m *Manager) emitChanged() {
	if m.listener.LayersChanged != nil {
		m.listener.LayersChanged()
	}
}

// AllElements returns the members of every layer in render order.
func (m *Manager) AllElements() []element.Element {
	var out []element.Element
	for _, l := range m.layers {
		out = append(out, l.Elements()...)
	}
	return out
}

// VisibleElements returns the members of visible layers in render order.
func (m *Manager) VisibleElements() []element.Element {
	var out []element.Element
	for _, l := range m.layers {
		if l.visible {
			out = append(out, l.Elements()...)
		}
	}
	return out
}

// VisibleBounds unions the bounds of all visible layers.
func (m *Manager) VisibleBounds() geom.Box3 {
	b := geom.EmptyBox3()
	for _, l := range m.layers {
		if l.visible {
			b = b.Union(l.bounds)
		}
	}
	return b
}

// QueryVisibleElements returns the members of visible layers whose bounds
// intersect region, in render order and without duplicates.
func (m *Manager) QueryVisibleElements(region geom.Box3) []element.Element {
	seen := make(map[element.ID]struct{})
	var out []element.Element
	for _, l := range m.layers {
		if !l.visible {
			continue
		}
		for _, e := range l.QueryElementsInFrustum(region) {
			if _, ok := seen[e.ID()]; ok {
				continue
			}
			seen[e.ID()] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// FindElementAtPoint returns the first element hit at p, scanning visible
// layers from the top.
func (m *Manager) FindElementAtPoint(p geom.Vec3, tol float64) (element.Element, *Layer, bool) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if !l.visible {
			continue
		}
		if e, ok := l.HitTest(p, tol); ok {
			return e, l, true
		}
	}
	return nil, nil, false
}

// LayerOf returns the layer holding the element.
func (m *Manager) LayerOf(id element.ID) (*Layer, bool) {
	for _, l := range m.layers {
		if l.Contains(id) {
			return l, true
		}
	}
	return nil, false
}

// AddElementsToActiveLayer adds elems to the active layer in one batch and
// returns how many were accepted.
func (m *Manager) AddElementsToActiveLayer(elems ...element.Element) int {
	l := m.active
	if l == nil {
		return 0
	}
	n := 0
	l.Batch(func() {
		for _, e := range elems {
			if l.AddElement(e, false) {
				n++
			}
		}
		if n > 0 {
			l.pending = true
		}
	})
	return n
}

// MoveElementsToLayer moves elems from their current layers into target.
// Elements on locked layers stay where they are.
func (m *Manager) MoveElementsToLayer(elems []element.Element, target *Layer) int {
	if target == nil || target.locked || m.IndexOf(target) < 0 {
		return 0
	}
	n := 0
	target.Batch(func() {
		for _, e := range elems {
			src, ok := m.LayerOf(e.ID())
			if !ok || src == target {
				continue
			}
			if !src.RemoveElement(e) {
				logging.Logger().Debug("element not moved", "element", e.ID(), "layer", src.name)
				continue
			}
			if target.AddElement(e, false) {
				n++
			}
		}
		if n > 0 {
			target.pending = true
		}
	})
	return n
}

// UpdateAllLayersBounds rebuilds the aggregate bounds of every layer.
func (m *Manager) UpdateAllLayersBounds() {
	for _, l := range m.layers {
		l.RebuildBounds()
	}
}

// ClearSelection deselects every element.
func (m *Manager) ClearSelection() {
	for _, l := range m.layers {
		l.SelectAll(false)
	}
}

// SelectedElements returns the selected elements of all layers.
func (m *Manager) SelectedElements() []element.Element {
	var out []element.Element
	for _, l := range m.layers {
		out = append(out, l.Selected()...)
	}
	return out
}
