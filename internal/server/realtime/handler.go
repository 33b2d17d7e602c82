package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/internal/server/storage"
	"github.com/medigrid/layoutsync/internal/server/token"
	"github.com/medigrid/layoutsync/pkg/api"
)

// SessionTokenValidator checks push channel tokens.
type SessionTokenValidator interface {
	ValidateSessionToken(tokenString, sessionID string) (*token.SessionClaims, error)
}

// Handler upgrades push channel requests and owns the per-connection
// lifecycle: snapshot on connect, presence broadcasts and inbound optimistic
// writes.
type Handler struct {
	logger       *slog.Logger
	hub          *Hub
	layouts      storage.LayoutStorage
	participants storage.ParticipantStorage
	tokens       SessionTokenValidator
	upgrader     websocket.Upgrader
}

// NewHandler creates a push channel handler.
func NewHandler(logger *slog.Logger, hub *Hub, layouts storage.LayoutStorage, participants storage.ParticipantStorage, tokens SessionTokenValidator) *Handler {
	return &Handler{
		logger:       logger,
		hub:          hub,
		layouts:      layouts,
		participants: participants,
		tokens:       tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser origins are not a trust boundary here; the session
			// token in the query string is.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /v1/sessions/{id}/ws.
// The session-scoped token from the join response must be passed in the
// token query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	claims, err := h.tokens.ValidateSessionToken(r.URL.Query().Get("token"), sessionID)
	if err != nil {
		h.logger.Warn("push channel token rejected",
			"session_id", sessionID,
			"error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_WS_TOKEN","message":"missing or invalid channel token"}}`))
		return
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		role = models.RoleViewer
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := &Client{
		handler:   h,
		conn:      conn,
		logger:    h.logger,
		send:      make(chan api.Message, sendBufferSize),
		sessionID: sessionID,
		userID:    claims.Subject,
		role:      role,
	}

	h.hub.register(client)

	go client.writePump()
	go client.readPump()

	h.sendSnapshot(r.Context(), client)
	h.broadcastPresence(r.Context(), sessionID)

	h.logger.Info("push channel opened",
		"session_id", sessionID,
		"user_id", claims.Subject)
}

// sendSnapshot pushes the authoritative layout state to a newly connected
// client.
func (h *Handler) sendSnapshot(ctx context.Context, c *Client) {
	head, err := h.layouts.GetLayout(ctx, c.sessionID)
	if err != nil {
		h.logger.Error("failed to load snapshot", "session_id", c.sessionID, "error", err)
		return
	}

	var layout api.Layout
	if err := json.Unmarshal(head.Layout, &layout); err != nil {
		h.logger.Error("failed to unmarshal stored layout", "session_id", c.sessionID, "error", err)
		return
	}

	msg, err := api.NewMessage(api.MessageLayoutSnapshot, api.LayoutPayload{
		Layout:    layout,
		Version:   head.Version,
		UpdatedBy: head.UpdatedBy,
	})
	if err != nil {
		h.logger.Error("failed to build snapshot frame", "error", err)
		return
	}
	c.trySend(msg)
}

// handleLayoutUpdate applies an optimistic write received over the channel.
// On a stale base version the client alone receives a layout.conflict frame
// carrying the authoritative state.
func (h *Handler) handleLayoutUpdate(c *Client, payload json.RawMessage) {
	ctx := context.Background()

	if !c.role.CanEditLayout() {
		c.trySend(errorFrame(api.CodeForbidden, "role cannot publish layout changes"))
		return
	}

	var update api.LayoutUpdatePayload
	if err := json.Unmarshal(payload, &update); err != nil {
		c.trySend(errorFrame(api.CodeValidationError, "malformed layout.update payload"))
		return
	}

	encoded, err := json.Marshal(update.Layout)
	if err != nil {
		h.logger.Error("failed to marshal layout", "error", err)
		return
	}

	head, err := h.layouts.AppendLayout(ctx, c.sessionID, update.BaseVersion, encoded, c.userID)
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			h.sendConflict(ctx, c)
			return
		}
		h.logger.Error("failed to append layout",
			"session_id", c.sessionID,
			"error", err)
		c.trySend(errorFrame(api.CodeValidationError, "internal server error"))
		return
	}

	h.hub.BroadcastLayout(c.sessionID, api.LayoutPayload{
		Layout:    update.Layout,
		Version:   head.Version,
		UpdatedBy: c.userID,
	})
}

func (h *Handler) sendConflict(ctx context.Context, c *Client) {
	head, err := h.layouts.GetLayout(ctx, c.sessionID)
	if err != nil {
		h.logger.Error("failed to load conflict state", "session_id", c.sessionID, "error", err)
		return
	}

	var layout api.Layout
	if err := json.Unmarshal(head.Layout, &layout); err != nil {
		h.logger.Error("failed to unmarshal stored layout", "session_id", c.sessionID, "error", err)
		return
	}

	msg, err := api.NewMessage(api.MessageLayoutConflict, api.ConflictPayload{
		Layout:  layout,
		Version: head.Version,
		Code:    api.CodeLayoutVersionConflict,
	})
	if err != nil {
		h.logger.Error("failed to build conflict frame", "error", err)
		return
	}
	c.trySend(msg)
}

func (h *Handler) disconnect(c *Client) {
	h.hub.unregister(c)
	h.broadcastPresence(context.Background(), c.sessionID)
	h.logger.Info("push channel closed",
		"session_id", c.sessionID,
		"user_id", c.userID)
}

func (h *Handler) broadcastPresence(ctx context.Context, sessionID string) {
	count, err := h.participants.CountParticipants(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to count participants", "session_id", sessionID, "error", err)
		return
	}
	h.hub.BroadcastPresence(sessionID, count)
}

func errorFrame(code, message string) api.Message {
	msg, err := api.NewMessage(api.MessageError, api.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return api.Message{Type: api.MessageError}
	}
	return msg
}
