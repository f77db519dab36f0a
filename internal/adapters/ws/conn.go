// Package ws adapts websocket transports into room sessions: the
// connect/authenticate/authorize handshake, the read/write pumps and
// inbound command dispatch.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/auxroom/server/internal/config"
	"github.com/auxroom/server/internal/core"
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	WriteControl(mt int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Conn is a session's transport endpoint. Outbound frames go through a
// buffered channel drained by WritePump; TrySend never blocks.
type Conn struct {
	conn   WSConn
	cfg    config.WebSocket
	send   chan core.Frame
	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func NewConn(conn WSConn, cfg config.WebSocket) *Conn {
	return &Conn{
		conn: conn,
		cfg:  cfg,
		send: make(chan core.Frame, cfg.SendBuffer),
	}
}

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrBackpressure
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *Conn) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}

// CloseWith sends a close frame carrying a machine-readable code
// (handshake rejections) before tearing the connection down.
func (c *Conn) CloseWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteWait))
	c.Close()
}

// WritePump drains the send buffer to the network and keeps the
// connection alive with pings.
func (c *Conn) WritePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(c.cfg.WriteWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}

// ReadPump reads inbound frames and hands them to handle. It owns the
// read side: on exit the connection is closed, which also stops the
// write pump.
func (c *Conn) ReadPump(ctx context.Context, handle func([]byte)) {
	defer c.Close()

	c.conn.SetReadLimit(c.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			handle(data)
		}
	}
}
