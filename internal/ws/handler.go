package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/middleware"
	"github.com/playmatatu/pegfall/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	commandTimeout = 3 * time.Second
)

// Origins are checked by middleware.WebSocketCORSCheck before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one WebSocket connection watching a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// Hub maintains the set of active clients grouped by session.
type Hub struct {
	rooms      map[string]map[*Client]bool // sessionID -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.SugaredLogger
}

var _ session.Broadcaster = (*Hub)(nil)

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.sessionID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[c.sessionID] = room
			}
			room[c] = true
			size := len(room)
			h.mu.Unlock()
			h.log.Debugw("client connected", "session_id", c.sessionID, "room_size", size)
		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.sessionID]; ok && room[c] {
				delete(room, c)
				close(c.send)
				if len(room) == 0 {
					delete(h.rooms, c.sessionID)
				}
			}
			h.mu.Unlock()
			h.log.Debugw("client disconnected", "session_id", c.sessionID)
		}
	}
}

// Broadcast sends a message to every client of a session. Clients with a
// full buffer miss the message.
func (h *Hub) Broadcast(sessionID string, msg session.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorw("marshal message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		h.deliver(c, data)
	}
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(msg session.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorw("marshal message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, room := range h.rooms {
		for c := range room {
			h.deliver(c, data)
		}
	}
}

func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.log.Debugw("client send buffer full, dropping message", "session_id", c.sessionID)
	}
}

// RoomSize is the number of clients watching a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// HandleWebSocket streams a session's notifications and frames and accepts
// commands. It runs behind middleware.RequireSessionToken.
func HandleWebSocket(hub *Hub, m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(middleware.SessionIDKey)
		r, err := m.Get(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warnw("upgrade failed", "session_id", sessionID, "error", err)
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			sessionID: sessionID,
			send:      make(chan []byte, 256),
		}
		if data, err := json.Marshal(session.Message{Type: session.MsgFrame, Data: r.Snapshot()}); err == nil {
			client.send <- data
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(m)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Debugw("write failed", "session_id", c.sessionID, "error", err)
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

// readPump turns incoming frames into session commands.
func (c *Client) readPump(m *session.Manager) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Infow("unexpected close", "session_id", c.sessionID, "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var cmd session.Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.sendError("malformed command")
			continue
		}
		if err := cmd.Validate(); err != nil {
			c.sendError(err.Error())
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		res, err := m.Submit(ctx, c.sessionID, cmd)
		cancel()
		switch {
		case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionEnded):
			c.sendError("session ended")
			return
		case err != nil:
			c.sendError(err.Error())
			continue
		}
		c.sendJSON(commandResult{Type: "command_result", Command: cmd.Type, Result: res})
	}
}

type commandResult struct {
	Type    string              `json:"type"`
	Command session.CommandType `json:"command"`
	Result  session.Result      `json:"result"`
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.hub.rooms[c.sessionID][c] {
		c.hub.deliver(c, data)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]string{
		"type":    "error",
		"message": message,
	})
}
