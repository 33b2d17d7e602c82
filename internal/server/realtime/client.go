package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
	sendBufferSize = 32
)

// Client is one connected push channel.
type Client struct {
	handler   *Handler
	conn      *websocket.Conn
	logger    *slog.Logger
	send      chan api.Message
	sessionID string
	userID    string
	role      models.Role
}

// trySend queues a frame, dropping the connection if the client cannot keep
// up. A stalled consumer must not block the broadcast path.
func (c *Client) trySend(msg api.Message) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("client send buffer full, closing",
			"session_id", c.sessionID,
			"user_id", c.userID)
		_ = c.conn.Close()
	}
}

// readPump consumes inbound frames until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.handler.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected channel close",
					"session_id", c.sessionID,
					"user_id", c.userID,
					"error", err)
			}
			return
		}

		var msg api.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed frame ignored", "session_id", c.sessionID, "error", err)
			continue
		}

		switch msg.Type {
		case api.MessagePing:
			c.trySend(api.Message{Type: api.MessagePong})
		case api.MessageLayoutUpdate:
			c.handler.handleLayoutUpdate(c, msg.Payload)
		default:
			c.logger.Debug("unhandled frame type", "type", msg.Type)
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
