package session

import (
	"encoding/json"

	"github.com/inamate/vectorscene/internal/element"
	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/render"
	"github.com/inamate/vectorscene/internal/view"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// View
	TypeViewPan      = "view.pan"
	TypeViewZoom     = "view.zoom"
	TypeViewExtents  = "view.extents"
	TypeViewPrevious = "view.previous"
	TypeViewRotate   = "view.rotate"
	TypeViewResize   = "view.resize"

	// Pointer input
	TypeToolSet     = "tool.set"
	TypeToolStyle   = "tool.style"
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"

	// Edits
	TypeElementAdd      = "element.add"
	TypeSelectionSet    = "selection.set"
	TypeSelectionDelete = "selection.delete"
	TypeSelectionStyle  = "selection.style"
	TypeSelectionMove   = "selection.move"
	TypeHistoryUndo     = "history.undo"
	TypeHistoryRedo     = "history.redo"

	// Layers
	TypeLayerAdd      = "layer.add"
	TypeLayerRemove   = "layer.remove"
	TypeLayerActivate = "layer.activate"
	TypeLayerUpdate   = "layer.update"
	TypeLayerMove     = "layer.move"

	// Replies
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeLayers  = "layers"
	TypeHistory = "history"
	TypeError   = "error"
)

type PanPayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ZoomPayload zooms around (X, Y). A zero Factor steps in, or out when Out
// is set, and records the view for view.previous.
type ZoomPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Factor float64 `json:"factor,omitempty"`
	Out    bool    `json:"out,omitempty"`
}

// RotatePayload holds the view rotation in radians.
type RotatePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ToolPayload struct {
	Tool engine.Tool `json:"tool"`
}

type SelectionPayload struct {
	IDs []element.ID `json:"ids"`
}

// MovePayload is a world-space translation.
type MovePayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DZ float64 `json:"dz"`
}

// LayerPayload addresses a layer by ID. Nil fields are left unchanged by
// layer.update.
type LayerPayload struct {
	ID      string  `json:"id,omitempty"`
	Name    *string `json:"name,omitempty"`
	Index   int     `json:"index,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
	Locked  *bool   `json:"locked,omitempty"`
	Color   *string `json:"color,omitempty"`
}

func (p LayerPayload) update() engine.LayerUpdate {
	u := engine.LayerUpdate{Name: p.Name, Visible: p.Visible, Locked: p.Locked}
	if p.Color != nil {
		c := geom.ParseColor(*p.Color, geom.Black)
		u.Color = &c
	}
	return u
}

type (
	StylePayload   = engine.StyleParams
	ElementPayload = engine.ElementParams
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
}

// FramePayload is the reply to every handled message.
type FramePayload struct {
	Commands  []render.DrawCommand `json:"commands"`
	View      view.State           `json:"view"`
	Selection []element.ID         `json:"selection"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}
