// Package realtime implements the WebSocket push channel of the authority.
// Each session has a set of connected clients; accepted layout writes and
// presence changes are fanned out to all of them.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/medigrid/layoutsync/pkg/api"
)

// Hub tracks connected clients per session and broadcasts frames to them.
type Hub struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[c.sessionID] == nil {
		h.sessions[c.sessionID] = make(map[*Client]struct{})
	}
	h.sessions[c.sessionID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.sessions[c.sessionID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.sessions, c.sessionID)
		}
	}
}

// ConnectionCount returns the number of open channels for a session.
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// BroadcastLayout fans an accepted layout version out to every client of the
// session as a layout.updated frame.
func (h *Hub) BroadcastLayout(sessionID string, payload api.LayoutPayload) {
	msg, err := api.NewMessage(api.MessageLayoutUpdated, payload)
	if err != nil {
		h.logger.Error("failed to build layout frame", "error", err)
		return
	}
	h.broadcast(sessionID, msg)
}

// BroadcastPresence fans the current participant count out to every client of
// the session.
func (h *Hub) BroadcastPresence(sessionID string, participants int) {
	msg, err := api.NewMessage(api.MessagePresenceUpdated, api.PresencePayload{Participants: participants})
	if err != nil {
		h.logger.Error("failed to build presence frame", "error", err)
		return
	}
	h.broadcast(sessionID, msg)
}

func (h *Hub) broadcast(sessionID string, msg api.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.sessions[sessionID] {
		c.trySend(msg)
	}
}
