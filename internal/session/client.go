package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/vectorscene/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

type Client struct {
	session  *Session
	conn     *websocket.Conn
	send     chan []byte
	ClientID string
}

func NewClient(s *Session, conn *websocket.Conn) *Client {
	return &Client{
		session:  s,
		conn:     conn,
		send:     make(chan []byte, 256),
		ClientID: uuid.New().String(),
	}
}

// Join registers the client and sends the welcome and the current state.
func (c *Client) Join(ctx context.Context) error {
	c.session.addClient(c)
	c.Send(reply(TypeWelcome, 0, WelcomePayload{SessionID: c.session.ID, ClientID: c.ClientID}))

	var out []*Message
	err := c.session.Do(ctx, func(e *engine.Engine) error {
		out = state(e, 0, true)
		return nil
	})
	for _, m := range out {
		c.Send(m)
	}
	return err
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.session.removeClient(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			continue
		}
		msg.SessionID = c.session.ID
		msg.ClientID = c.ClientID

		replies, err := c.session.Handle(ctx, &msg)
		if err != nil {
			slog.Debug("message rejected", "type", msg.Type, "error", err, "client", c.ClientID)
			c.Send(reply(TypeError, msg.Seq, ErrorPayload{Reason: err.Error()}))
			if err == ErrClosed {
				return
			}
			continue
		}
		for _, r := range replies {
			c.session.broadcast(r, "")
		}
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for this client only.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	c.session.mu.RLock()
	defer c.session.mu.RUnlock()
	if _, ok := c.session.clients[c.ClientID]; ok {
		c.enqueue(data)
	}
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID)
	}
}
