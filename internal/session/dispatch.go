package session

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/geom"
)

func decode[T any](msg *Message) (T, error) {
	var v T
	if len(msg.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return v, nil
}

// dispatch applies msg to e and reports whether layers or history may
// have changed.
func dispatch(e *engine.Engine, msg *Message) (bool, error) {
	switch msg.Type {
	case TypeViewPan:
		p, err := decode[PanPayload](msg)
		if err != nil {
			return false, err
		}
		e.Pan(p.DX, p.DY)

	case TypeViewZoom:
		p, err := decode[ZoomPayload](msg)
		if err != nil {
			return false, err
		}
		switch {
		case p.Factor > 0:
			e.ZoomAt(p.X, p.Y, p.Factor)
		case p.Out:
			e.ZoomOut(p.X, p.Y)
		default:
			e.ZoomIn(p.X, p.Y)
		}

	case TypeViewExtents:
		e.ZoomExtents()

	case TypeViewPrevious:
		e.ZoomPrevious()

	case TypeViewRotate:
		p, err := decode[RotatePayload](msg)
		if err != nil {
			return false, err
		}
		e.SetRotation(geom.V3(p.X, p.Y, p.Z))

	case TypeViewResize:
		p, err := decode[ResizePayload](msg)
		if err != nil {
			return false, err
		}
		if p.Width <= 0 || p.Height <= 0 {
			return false, fmt.Errorf("invalid viewport %gx%g", p.Width, p.Height)
		}
		e.SetViewport(p.Width, p.Height)

	case TypeToolSet:
		p, err := decode[ToolPayload](msg)
		if err != nil {
			return false, err
		}
		return false, e.SetTool(p.Tool)

	case TypeToolStyle:
		p, err := decode[*StylePayload](msg)
		if err != nil {
			return false, err
		}
		e.SetDrawStyle(p.Style())

	case TypePointerDown, TypePointerMove, TypePointerUp:
		p, err := decode[engine.Pointer](msg)
		if err != nil {
			return false, err
		}
		switch msg.Type {
		case TypePointerDown:
			e.PointerDown(p)
		case TypePointerMove:
			e.PointerMove(p)
		default:
			e.PointerUp(p)
			return true, nil
		}

	case TypeElementAdd:
		p, err := decode[ElementPayload](msg)
		if err != nil {
			return false, err
		}
		el, err := p.Build()
		if err != nil {
			return false, fmt.Errorf("build %s: %w", p.Kind, err)
		}
		return true, e.AddElement(el)

	case TypeSelectionSet:
		p, err := decode[SelectionPayload](msg)
		if err != nil {
			return false, err
		}
		e.SetSelection(p.IDs)

	case TypeSelectionDelete:
		e.RemoveSelected()
		return true, nil

	case TypeSelectionStyle:
		p, err := decode[*StylePayload](msg)
		if err != nil {
			return false, err
		}
		e.SetStyle(p.Style())
		return true, nil

	case TypeSelectionMove:
		p, err := decode[MovePayload](msg)
		if err != nil {
			return false, err
		}
		e.MoveSelected(geom.V3(p.DX, p.DY, p.DZ))
		return true, nil

	case TypeHistoryUndo:
		e.Undo()
		return true, nil

	case TypeHistoryRedo:
		e.Redo()
		return true, nil

	case TypeLayerAdd, TypeLayerRemove, TypeLayerActivate, TypeLayerUpdate, TypeLayerMove:
		p, err := decode[LayerPayload](msg)
		if err != nil {
			return false, err
		}
		return true, layerOp(e, msg.Type, p)

	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return false, nil
}

func layerOp(e *engine.Engine, typ string, p LayerPayload) error {
	switch typ {
	case TypeLayerAdd:
		name := ""
		if p.Name != nil {
			name = *p.Name
		}
		e.AddLayer(name)
		return nil
	case TypeLayerRemove:
		return e.RemoveLayer(p.ID)
	case TypeLayerActivate:
		return e.SetActiveLayer(p.ID)
	case TypeLayerUpdate:
		return e.UpdateLayer(p.ID, p.update())
	default:
		return e.MoveLayer(p.ID, p.Index)
	}
}

// state builds the replies describing e. Layers and history are included
// when full is set.
func state(e *engine.Engine, seq int64, full bool) []*Message {
	out := []*Message{reply(TypeFrame, seq, FramePayload{
		Commands:  e.Render(),
		View:      e.ViewState(),
		Selection: e.Selection(),
	})}
	if full {
		out = append(out,
			reply(TypeLayers, seq, e.Layers()),
			reply(TypeHistory, seq, e.History()),
		)
	}
	return out
}

func reply(typ string, seq int64, v any) *Message {
	payload, err := json.Marshal(v)
	if err != nil {
		payload, _ = json.Marshal(ErrorPayload{Reason: err.Error()})
		typ = TypeError
	}
	return &Message{Type: typ, Seq: seq, Payload: payload}
}
