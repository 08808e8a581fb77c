package clients

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cockpityara/internal/domain/project"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

// WSEvent is a real-time event pushed to connected UIs
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventUnifiedList = "unified_list"
	EventSyncState   = "sync_state"
	EventActiveDoc   = "active_doc"
)

// connection represents a single WebSocket client (one browser tab)
type connection struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub manages all active WebSocket connections and pushes snapshot events.
// A single operator may keep several tabs open; every tab gets every event.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]bool
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[*connection]bool),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c] {
		delete(h.connections, c)
		close(c.send)
	}
}

// BroadcastList pushes a fresh unified list snapshot to every tab
func (h *Hub) BroadcastList(list []project.Project, state SyncState) {
	h.broadcast(&WSEvent{
		Type: EventUnifiedList,
		Payload: map[string]interface{}{
			"clients":    list,
			"sync_state": state,
			"stats":      computeStats(list),
		},
	})
}

// BroadcastDoc pushes a fresh copy of the active remote document
func (h *Hub) BroadcastDoc(rec *project.Project) {
	h.broadcast(&WSEvent{Type: EventActiveDoc, Payload: rec})
}

// BroadcastState announces a sync-state resolution
func (h *Hub) BroadcastState(state SyncState) {
	h.broadcast(&WSEvent{Type: EventSyncState, Payload: map[string]interface{}{"sync_state": state}})
}

func (h *Hub) broadcast(event *WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			// client too slow, drop the frame
		}
	}
}

// ServeWS registers a new connection and starts read/write pumps
func (h *Hub) ServeWS(conn *websocket.Conn) {
	c := &connection{
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c) // blocks until disconnect
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming frames are only pings/keepalive; the API surface is HTTP
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
