package scene

import (
	"slices"

	"github.com/inamate/vectorscene/internal/geom"
)

// LayerState is the saved form of a layer's properties. Elements are not
// part of it.
type LayerState struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Visible bool       `json:"visible"`
	Locked  bool       `json:"locked"`
	Order   int        `json:"order"`
	Color   geom.Color `json:"color"`
}

// SaveLayerState snapshots every layer in render order.
func (m *Manager) SaveLayerState() []LayerState {
	out := make([]LayerState, len(m.layers))
	for i, l := range m.layers {
		out[i] = LayerState{
			ID:      l.id,
			Name:    l.name,
			Visible: l.visible,
			Locked:  l.locked,
			Order:   i,
			Color:   l.color,
		}
	}
	return out
}

// RestoreLayerState reapplies a snapshot. Layers are matched by id; layers
// missing from the snapshot are removed and survivors are put back in the
// saved order. Snapshot entries without a matching layer are skipped.
func (m *Manager) RestoreLayerState(states []LayerState) {
	byID := make(map[string]LayerState, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}

	var kept []*Layer
	for _, l := range m.layers {
		s, ok := byID[l.id]
		if !ok {
			l.onChange = nil
			if m.listener.LayerRemoved != nil {
				m.listener.LayerRemoved(l)
			}
			continue
		}
		l.name, l.visible, l.locked, l.color = s.Name, s.Visible, s.Locked, s.Color
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		// never leave the manager empty
		m.layers = nil
		m.active = nil
		m.AddLayer(BackgroundLayerName)
		return
	}

	slices.SortStableFunc(kept, func(a, b *Layer) int {
		return byID[a.id].Order - byID[b.id].Order
	})
	m.layers = kept

	if m.active == nil || m.IndexOf(m.active) < 0 || m.active.locked {
		m.active = m.firstUnlocked()
		m.emitActive()
	}
	if m.listener.LayerReordered != nil {
		m.listener.LayerReordered()
	}
	m.emitChanged()
}

// RestoreLayers puts previously removed layers back and then applies the
// snapshot. It is used to undo layer removal, where the removed layer
// objects are still held by the caller.
func (m *Manager) RestoreLayers(states []LayerState, layers []*Layer) {
	for _, l := range layers {
		if m.IndexOf(l) >= 0 {
			continue
		}
		m.attach(l)
		m.layers = append(m.layers, l)
		if m.listener.LayerAdded != nil {
			m.listener.LayerAdded(l)
		}
	}
	m.RestoreLayerState(states)
}
