// Package export serves rendered frames, SVG export and file imports for
// running sessions over HTTP.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/session"
)

type Handler struct {
	sessions       *session.Handler
	maxUploadBytes int64
}

func NewHandler(sessions *session.Handler, maxUploadBytes int64) *Handler {
	return &Handler{sessions: sessions, maxUploadBytes: maxUploadBytes}
}

// FramePNG handles GET /sessions/{id}/frame.png.
func (h *Handler) FramePNG(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, "image/png", "", func(e *engine.Engine, buf *bytes.Buffer) error {
		return e.RenderPNG(buf)
	})
}

// SVG handles GET /sessions/{id}/export.svg. With ?relative=true the
// coordinates are screen pixels of the current view.
func (h *Handler) SVG(w http.ResponseWriter, r *http.Request) {
	relative, _ := strconv.ParseBool(r.URL.Query().Get("relative"))
	h.write(w, r, "image/svg+xml", `attachment; filename="drawing.svg"`, func(e *engine.Engine, buf *bytes.Buffer) error {
		return e.ExportSVG(buf, relative)
	})
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, contentType, disposition string, fn func(*engine.Engine, *bytes.Buffer) error) {
	s, ok := h.sessions.Lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := s.Do(r.Context(), func(e *engine.Engine) error {
		return fn(e, &buf)
	})
	if err != nil {
		slog.Error("export failed", "session", s.ID, "type", contentType, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

type importResponse struct {
	Layers   int `json:"layers"`
	Elements int `json:"elements"`
	Skipped  int `json:"skipped"`
}

// ImportSVG handles POST /sessions/{id}/import/svg (multipart "file").
func (h *Handler) ImportSVG(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, func(e *engine.Engine, f io.Reader) (importResponse, error) {
		res, err := e.ImportSVG(f)
		return importResponse{Layers: len(res.Layers), Elements: res.Elements, Skipped: res.Skipped}, err
	})
}

// ImportFlat handles POST /sessions/{id}/import/flat (multipart "file").
func (h *Handler) ImportFlat(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, func(e *engine.Engine, f io.Reader) (importResponse, error) {
		n, err := e.ImportFlat(f)
		return importResponse{Layers: 1, Elements: n}, err
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, fn func(*engine.Engine, io.Reader) (importResponse, error)) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s, ok := h.sessions.Lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("file too large (max %d bytes)", h.maxUploadBytes), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var resp importResponse
	err = s.Do(r.Context(), func(e *engine.Engine) error {
		var err error
		resp, err = fn(e, file)
		return err
	})
	if err != nil {
		slog.Warn("import failed", "session", s.ID, "file", header.Filename, "error", err)
		http.Error(w, fmt.Sprintf("import failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	if err := s.Refresh(r.Context()); err != nil {
		slog.Warn("refresh after import", "session", s.ID, "error", err)
	}

	slog.Info("import complete", "session", s.ID, "file", header.Filename, "elements", resp.Elements)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
