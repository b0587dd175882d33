package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sleepingqueens/queens-server-go/internal/game"
	"github.com/sleepingqueens/queens-server-go/internal/room"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Message types pushed to WebSocket clients.
const (
	MessageState  = "state"
	MessageClosed = "closed"
)

// WSMessage is the envelope of every frame the hub sends.
type WSMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// StateSource returns the current projection of a room.
type StateSource func(roomID string) (game.View, error)

// Client is one WebSocket subscriber of a room.
type Client struct {
	id     string
	roomID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub pushes room state to subscribed clients. All client bookkeeping happens
// on the Run goroutine.
type Hub struct {
	source   StateSource
	logger   *zap.Logger
	upgrader websocket.Upgrader

	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	refresh    chan string
	done       chan struct{}
}

// NewHub creates a hub that reads room state from source. checkOrigin may be
// nil to accept every origin.
func NewHub(source StateSource, checkOrigin func(*http.Request) bool, logger *zap.Logger) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		source:     source,
		logger:     logger,
		upgrader:   websocket.Upgrader{CheckOrigin: checkOrigin},
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		refresh:    make(chan string, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and state refreshes until ctx is cancelled,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			if h.clients[client.roomID] == nil {
				h.clients[client.roomID] = make(map[*Client]bool)
			}
			h.clients[client.roomID][client] = true
			if h.logger != nil {
				h.logger.Debug("websocket client registered",
					zap.String("client_id", client.id),
					zap.String("room_id", client.roomID),
				)
			}
			h.push(client.roomID, client)

		case client := <-h.unregister:
			h.drop(client)

		case roomID := <-h.refresh:
			h.push(roomID, nil)
		}
	}
}

// Refresh schedules a push of the room's current state to its subscribers.
func (h *Hub) Refresh(roomID string) {
	select {
	case h.refresh <- roomID:
	case <-h.done:
	}
}

// HandleNotification refreshes the room a game notification belongs to.
func (h *Hub) HandleNotification(n game.Notification) {
	h.Refresh(n.GameID)
}

// push sends the room state to only, or to every subscriber when only is nil.
// Subscribers of a room that no longer exists are told so and dropped.
func (h *Hub) push(roomID string, only *Client) {
	clients := h.clients[roomID]
	if len(clients) == 0 {
		return
	}

	msg := WSMessage{Type: MessageState, RoomID: roomID}
	view, err := h.source(roomID)
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		msg.Type = MessageClosed
	case err != nil:
		if h.logger != nil {
			h.logger.Warn("failed to load room state", zap.String("room_id", roomID), zap.Error(err))
		}
		return
	default:
		msg.Data = view
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to encode room state", zap.String("room_id", roomID), zap.Error(err))
		}
		return
	}

	for client := range clients {
		if only != nil && client != only {
			continue
		}
		select {
		case client.send <- payload:
			if msg.Type == MessageClosed {
				h.drop(client)
			}
		default:
			// Slow consumer.
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	clients, ok := h.clients[client.roomID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.roomID)
	}
	close(client.send)

	if h.logger != nil {
		h.logger.Debug("websocket client unregistered",
			zap.String("client_id", client.id),
			zap.String("room_id", client.roomID),
		)
	}
}

// ServeWS upgrades the request and subscribes the connection to the room
// named by the "room" query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	roomID := r.URL.Query().Get("room")
	if _, err := h.source(roomID); err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		if h.logger != nil {
			h.logger.Debug("websocket upgrade failed", zap.Error(err))
		}
		return nil
	}

	client := &Client{
		id:     uuid.NewString(),
		roomID: roomID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump(h)
	return nil
}

// readPump only watches for the connection closing; moves go through the
// HTTP API.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
