// Package events fans saved-list changes out to the owning user's open
// websocket connections.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pathfinder/pkg/logger"
)

const writeTimeout = 2 * time.Second

type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]*client // by user id
	log     *logger.Logger
}

// client serializes writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	ws  *websocket.Conn
	wmu sync.Mutex
}

func (c *client) write(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

type Stats struct {
	Users       int `json:"users"`
	Connections int `json:"connections"`
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]*client),
		log:     log,
	}
}

func (h *Hub) Add(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[*websocket.Conn]*client)
		h.clients[userID] = conns
	}
	conns[ws] = &client{ws: ws}
}

func (h *Hub) Remove(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	h.removeLocked(userID, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) removeLocked(userID string, ws *websocket.Conn) {
	conns := h.clients[userID]
	delete(conns, ws)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// Publish writes ev to every connection of ev.UserID. Writes happen outside
// the hub lock, so a slow client only delays its own user's events.
// Connections that fail the write are dropped.
func (h *Hub) Publish(ev SavedEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("encode event failed", "type", ev.Type, "error", err)
		return
	}

	targets := h.snapshot(ev.UserID)
	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("dropping websocket client", "user_id", ev.UserID, "error", err)
			h.Remove(ev.UserID, c.ws)
		}
	}
}

func (h *Hub) snapshot(userID string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[userID]
	out := make([]*client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Stats{Users: len(h.clients)}
	for _, conns := range h.clients {
		s.Connections += len(conns)
	}
	return s
}

// CloseAll disconnects every client, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.clients {
		for ws := range conns {
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(writeTimeout))
			_ = ws.Close()
		}
		delete(h.clients, userID)
	}
}
