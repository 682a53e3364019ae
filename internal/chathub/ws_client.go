package chathub

import (
	"cinematch/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192 // inbound frame cap; message bodies top out at 2000 runes
)

// WebSocketClient implements the Client interface on a gorilla/websocket
// connection.
type WebSocketClient struct {
	userID string
	Conn   *websocket.Conn
	Hub    *Manager
	Send   chan models.Event
}

func NewWebSocketClient(hub *Manager, userID string, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		userID: userID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.Event, 256),
	}
}

func (c *WebSocketClient) UserID() string { return c.userID }

// Deliver enqueues the event for the write pump. A full buffer means the
// client is too slow to keep up; the event is dropped rather than blocking
// the caller.
func (c *WebSocketClient) Deliver(ev models.Event) error {
	select {
	case c.Send <- ev:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. The read pump
// stops on its own once the connection is closed.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var frame models.InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("error decoding frame from client %s: %v", c.userID, err)
			continue
		}

		c.Hub.HandleInbound(context.Background(), c.userID, frame)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub; close the socket.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("error encoding event for client %s: %v", c.userID, err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
