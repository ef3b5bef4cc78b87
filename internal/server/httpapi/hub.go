// Package httpapi exposes the REST and websocket surface of the server:
// cookie-session auth endpoints, profile mutations, location search, and the
// event relay that keeps multiple tabs of the same user in sync.
package httpapi

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/matchpoint-app/matchpoint/internal/logging"
	"github.com/matchpoint-app/matchpoint/internal/server/models"
)

// Event is one message on the auth broadcast channel. Type is EventLogin or
// EventLogout; User is present only for logins.
type Event struct {
	Type string       `json:"type"`
	User *models.User `json:"user,omitempty"`
}

const (
	EventLogin  = "LOGIN"
	EventLogout = "LOGOUT"
)

// Hub relays auth events between the connected tabs of a single user.
// Delivery is best-effort and unordered beyond per-connection FIFO; a tab
// that misses an event converges on the next identity probe.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[*websocket.Conn]struct{}
	logger logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// Register adds a tab's connection to the user's broadcast group.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister removes a connection. Safe to call for unknown connections.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Broadcast sends ev to every connection of userID except sender (which may
// be nil for server-initiated events). Write failures only evict the broken
// connection; they never fail the broadcast.
func (h *Hub) Broadcast(ctx context.Context, userID string, ev Event, sender *websocket.Conn) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns[userID]))
	for conn := range h.conns[userID] {
		if conn != sender {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn(ctx, "dropping broken event connection", "user_id", userID, "err", err)
			h.Unregister(userID, conn)
			_ = conn.Close()
		}
	}
}
