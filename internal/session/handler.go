package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/vectorscene/internal/engine"
)

type Handler struct {
	manager        *Manager
	originPatterns []string
}

func NewHandler(manager *Manager, originPatterns []string) *Handler {
	return &Handler{manager: manager, originPatterns: originPatterns}
}

// Lookup resolves the {id} route variable, writing the error response when
// the session does not exist.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, err := h.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return nil, false
	}
	return s, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": s.ID})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Remove(mux.Vars(r)["id"]) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Layers(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Lookup(w, r)
	if !ok {
		return
	}

	var layers engine.LayersState
	err := s.Do(r.Context(), func(e *engine.Engine) error {
		layers = e.Layers()
		return nil
	})
	if err != nil {
		slog.Error("read layers", "session", s.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, layers)
}

// WebSocket handles GET /ws/session/{id}.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Lookup(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(s, conn)
	ctx := r.Context()
	if err := client.Join(ctx); err != nil {
		slog.Warn("join session", "session", s.ID, "error", err)
		s.removeClient(client)
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
