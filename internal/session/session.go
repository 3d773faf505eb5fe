// Package session runs editing engines for remote hosts. Each session owns
// one engine on its own goroutine; websocket clients and HTTP handlers reach
// it only through Do.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/inamate/vectorscene/internal/engine"
)

var (
	ErrClosed         = errors.New("session closed")
	ErrNotFound       = errors.New("session not found")
	ErrUnknownMessage = errors.New("unknown message type")
)

type request struct {
	fn    func(*engine.Engine) error
	reply chan error
}

type Session struct {
	ID      string
	Created time.Time

	eng       *engine.Engine
	requests  chan request
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.RWMutex
	clients map[string]*Client // clientID -> client
}

func newSession(id string, opts engine.Options) *Session {
	return &Session{
		ID:       id,
		Created:  time.Now(),
		eng:      engine.New(opts),
		requests: make(chan request),
		done:     make(chan struct{}),
		clients:  make(map[string]*Client),
	}
}

// Run serves requests until Close is called.
func (s *Session) Run() {
	for {
		select {
		case req := <-s.requests:
			req.reply <- s.call(req.fn)
		case <-s.done:
			return
		}
	}
}

func (s *Session) call(fn func(*engine.Engine) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in session", "session", s.ID, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("session %s: internal error", s.ID)
		}
	}()
	return fn(s.eng)
}

// Do runs fn on the session goroutine and waits for it to finish.
func (s *Session) Do(ctx context.Context, fn func(*engine.Engine) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop and disconnects every client.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		for id, c := range s.clients {
			close(c.send)
			delete(s.clients, id)
		}
		s.mu.Unlock()
	})
}

// Handle applies one client message and returns the replies every client
// should see: a frame, plus layers and history after edits.
func (s *Session) Handle(ctx context.Context, msg *Message) ([]*Message, error) {
	var out []*Message
	err := s.Do(ctx, func(e *engine.Engine) error {
		edited, err := dispatch(e, msg)
		if err != nil {
			return err
		}
		out = state(e, msg.Seq, edited)
		return nil
	})
	return out, err
}

// Refresh sends the full state to every client, for changes made through
// Do outside a websocket message.
func (s *Session) Refresh(ctx context.Context) error {
	var out []*Message
	err := s.Do(ctx, func(e *engine.Engine) error {
		out = state(e, 0, true)
		return nil
	})
	if err != nil {
		return err
	}
	for _, m := range out {
		s.broadcast(m, "")
	}
	return nil
}

func (s *Session) addClient(c *Client) {
	s.mu.Lock()
	s.clients[c.ClientID] = c
	s.mu.Unlock()
	slog.Info("client joined", "client", c.ClientID, "session", s.ID)
}

func (s *Session) removeClient(c *Client) {
	s.mu.Lock()
	if _, ok := s.clients[c.ClientID]; ok {
		delete(s.clients, c.ClientID)
		close(c.send)
	}
	s.mu.Unlock()
	slog.Info("client left", "client", c.ClientID, "session", s.ID)
}

// ClientCount returns the number of connected clients.
func (s *Session) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Session) broadcast(msg *Message, excludeClientID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	// send channels are only closed under the write lock
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.ClientID != excludeClientID {
			c.enqueue(data)
		}
	}
}
