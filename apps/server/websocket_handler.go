package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/novachat/nova-chat/pkg/chat"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the REST surface; the room is open
	},
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub *Hub
	svc *chat.Service

	conn *websocket.Conn

	// Buffered channel of outbound event payloads.
	send chan []byte

	// Opaque session identifier.
	id string
}

// inboundFrame is a client-to-server push event. Type selects which fields
// matter: sendMessage carries the message fields, deleteMessage carries id.
type inboundFrame struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Message   string `json:"message"`
	ID        int64  `json:"id"`
}

// readPump pumps events from the websocket connection into the service.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read", "session", c.id, "error", err)
			}
			break
		}
		c.handleFrame(raw)
	}
}

// handleFrame dispatches one inbound event. The push channel surfaces no
// errors back to the client: invalid or failed events are logged and dropped.
func (c *Client) handleFrame(raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.hub.log.Warn("invalid frame", "session", c.id, "error", err)
		return
	}

	ctx := context.Background()

	switch frame.Type {
	case "sendMessage":
		_, err := c.svc.Send(ctx, chat.SendRequest{
			Username:  frame.Username,
			AvatarURL: frame.AvatarURL,
			Message:   frame.Message,
		})
		if err != nil {
			if errors.Is(err, chat.ErrValidation) {
				c.hub.log.Warn("rejected sendMessage", "session", c.id, "error", err)
				return
			}
			c.hub.log.Error("sendMessage failed", "session", c.id, "error", err)
		}
	case "deleteMessage":
		// Removal failure is silently a no-op; only a successful removal
		// broadcasts messageDeleted.
		if _, err := c.svc.Delete(ctx, frame.ID); err != nil {
			c.hub.log.Error("deleteMessage failed", "session", c.id, "id", frame.ID, "error", err)
		}
	default:
		c.hub.log.Warn("unknown frame type", "session", c.id, "type", frame.Type)
	}
}

// writePump pumps events from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveWs upgrades the request and registers the new session with the hub.
func serveWs(hub *Hub, svc *chat.Service, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade", "error", err)
		return
	}

	client := &Client{
		hub:  hub,
		svc:  svc,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.NewString(),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
