package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/geom"
	"github.com/inamate/vectorscene/internal/typeid"
)

func testOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Viewport.Width, opts.Viewport.Height = 400, 300
	return opts
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := newSession(typeid.NewSessionID(), testOptions())
	go s.Run()
	t.Cleanup(s.Close)
	return s
}

func message(t *testing.T, typ string, seq int64, payload any) *Message {
	t.Helper()
	msg := &Message{Type: typ, Seq: seq}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		msg.Payload = data
	}
	return msg
}

func types(msgs []*Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func TestDoRunsOnSessionLoop(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	var count int
	err := s.Do(ctx, func(e *engine.Engine) error {
		count = e.LayerManager().Count()
		return nil
	})
	if err != nil || count != 1 {
		t.Errorf("Do() = %v, layer count %d, want nil and 1", err, count)
	}

	want := errors.New("boom")
	if err := s.Do(ctx, func(*engine.Engine) error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	err := s.Do(ctx, func(*engine.Engine) error { panic("bad") })
	if err == nil {
		t.Fatal("Do() after panic = nil, want error")
	}
	if err := s.Do(ctx, func(*engine.Engine) error { return nil }); err != nil {
		t.Errorf("Do() after recovered panic = %v, want nil", err)
	}
}

func TestDoAfterClose(t *testing.T) {
	s := newTestSession(t)
	s.Close()
	s.Close()

	err := s.Do(context.Background(), func(*engine.Engine) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Do() = %v, want ErrClosed", err)
	}
}

func TestDoHonoursContext(t *testing.T) {
	s := newSession(typeid.NewSessionID(), testOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.Do(ctx, func(*engine.Engine) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() without loop = %v, want DeadlineExceeded", err)
	}
}

func TestHandle(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	add := ElementPayload{Kind: "line", End: geom.V3(10, 10, 0)}
	tests := []struct {
		name string
		msg  *Message
		want []string
	}{
		{"pan", message(t, TypeViewPan, 1, PanPayload{DX: 5}), []string{TypeFrame}},
		{"zoom", message(t, TypeViewZoom, 2, ZoomPayload{X: 200, Y: 150}), []string{TypeFrame}},
		{"add", message(t, TypeElementAdd, 3, add), []string{TypeFrame, TypeLayers, TypeHistory}},
		{"undo", message(t, TypeHistoryUndo, 4, nil), []string{TypeFrame, TypeLayers, TypeHistory}},
		{"add layer", message(t, TypeLayerAdd, 5, LayerPayload{Name: ptr("Top")}), []string{TypeFrame, TypeLayers, TypeHistory}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Handle(ctx, tt.msg)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if strings.Join(types(got), ",") != strings.Join(tt.want, ",") {
				t.Errorf("Handle() = %v, want %v", types(got), tt.want)
			}
			for _, m := range got {
				if m.Seq != tt.msg.Seq {
					t.Errorf("reply %s seq = %d, want %d", m.Type, m.Seq, tt.msg.Seq)
				}
			}
		})
	}

	var layers engine.LayersState
	s.Do(ctx, func(e *engine.Engine) error {
		layers = e.Layers()
		return nil
	})
	if len(layers.Layers) != 2 || layers.Layers[1].Name != "Top" {
		t.Errorf("layers after layer.add = %+v", layers.Layers)
	}
}

func TestHandleRejects(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if _, err := s.Handle(ctx, &Message{Type: "bogus"}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Handle(bogus) = %v, want ErrUnknownMessage", err)
	}
	if _, err := s.Handle(ctx, &Message{Type: TypeViewPan, Payload: json.RawMessage(`{"dx":`)}); err == nil {
		t.Error("Handle(malformed payload) = nil, want error")
	}
	if _, err := s.Handle(ctx, message(t, TypeElementAdd, 0, ElementPayload{Kind: "spline"})); err == nil {
		t.Error("Handle(unknown kind) = nil, want error")
	}
	if _, err := s.Handle(ctx, message(t, TypeViewResize, 0, ResizePayload{Width: 0, Height: 10})); err == nil {
		t.Error("Handle(zero viewport) = nil, want error")
	}
	if _, err := s.Handle(ctx, message(t, TypeLayerRemove, 0, LayerPayload{ID: "missing"})); !errors.Is(err, engine.ErrLayerNotFound) {
		t.Errorf("Handle(remove missing layer) = %v, want ErrLayerNotFound", err)
	}
}

func TestManager(t *testing.T) {
	m := NewManager(testOptions())
	defer m.Stop()

	s := m.Create()
	if got, err := m.Get(s.ID); err != nil || got != s {
		t.Errorf("Get(%q) = %v, %v", s.ID, got, err)
	}
	if _, err := m.Get("not-an-id"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get(malformed) = %v, want validation error", err)
	}
	if _, err := m.Get(typeid.NewSessionID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) = %v, want ErrNotFound", err)
	}
	if _, err := m.Get(typeid.NewElementID()); err == nil {
		t.Error("Get(element id) = nil error")
	}

	if !m.Remove(s.ID) || m.Remove(s.ID) {
		t.Error("Remove() should succeed once")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
	if err := s.Do(context.Background(), func(*engine.Engine) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() on removed session = %v, want ErrClosed", err)
	}
}

func newTestServer(t *testing.T) (*Manager, *httptest.Server) {
	t.Helper()
	m := NewManager(testOptions())
	h := NewHandler(m, nil)

	r := mux.NewRouter()
	r.HandleFunc("/sessions", h.Create).Methods("POST")
	r.HandleFunc("/sessions/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/layers", h.Layers).Methods("GET")
	r.HandleFunc("/ws/session/{id}", h.WebSocket)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		m.Stop()
	})
	return m, srv
}

func TestHandlerCreateAndLayers(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /sessions status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	resp, err = http.Get(srv.URL + "/sessions/" + created["id"] + "/layers")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var layers engine.LayersState
	if err := json.NewDecoder(resp.Body).Decode(&layers); err != nil {
		t.Fatal(err)
	}
	if len(layers.Layers) != 1 || layers.Active != layers.Layers[0].ID {
		t.Errorf("GET layers = %+v", layers)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/sessions/" + typeid.NewSessionID() + "/layers", http.StatusNotFound},
		{"/sessions/garbage/layers", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) *Message {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return &msg
}

func TestWebSocketRoundTrip(t *testing.T) {
	m, srv := newTestServer(t)
	s := m.Create()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session/" + s.ID
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	welcome := readMessage(t, ctx, conn)
	if welcome.Type != TypeWelcome {
		t.Fatalf("first message = %s, want %s", welcome.Type, TypeWelcome)
	}
	var w WelcomePayload
	json.Unmarshal(welcome.Payload, &w)
	if w.SessionID != s.ID || w.ClientID == "" {
		t.Errorf("welcome = %+v", w)
	}
	for _, want := range []string{TypeFrame, TypeLayers, TypeHistory} {
		if got := readMessage(t, ctx, conn); got.Type != want {
			t.Fatalf("initial state message = %s, want %s", got.Type, want)
		}
	}

	req := message(t, TypeElementAdd, 7, ElementPayload{Kind: "line", End: geom.V3(20, 0, 0)})
	data, _ := json.Marshal(req)
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatal(err)
	}

	frame := readMessage(t, ctx, conn)
	if frame.Type != TypeFrame || frame.Seq != 7 {
		t.Fatalf("reply = %s seq %d, want frame seq 7", frame.Type, frame.Seq)
	}
	var fp FramePayload
	if err := json.Unmarshal(frame.Payload, &fp); err != nil {
		t.Fatal(err)
	}
	drawn := false
	for _, c := range fp.Commands {
		if c.ElementID != "" {
			drawn = true
		}
	}
	if !drawn {
		t.Error("frame after element.add has no element commands")
	}

	bad, _ := json.Marshal(&Message{Type: "bogus", Seq: 8})
	conn.Write(ctx, websocket.MessageText, bad)
	for {
		got := readMessage(t, ctx, conn)
		if got.Type == TypeError {
			if got.Seq != 8 {
				t.Errorf("error seq = %d, want 8", got.Seq)
			}
			break
		}
	}
	if s.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", s.ClientCount())
	}
}

func ptr[T any](v T) *T { return &v }
