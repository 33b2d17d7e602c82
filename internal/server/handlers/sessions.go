package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/internal/server/storage"
	"github.com/medigrid/layoutsync/internal/validation"
	"github.com/medigrid/layoutsync/pkg/api"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SessionTokenMinter issues push channel tokens scoped to one session.
type SessionTokenMinter interface {
	MintSessionToken(userID, role, sessionID string) (string, error)
}

// StatusBroadcaster pushes presence changes to connected clients.
type StatusBroadcaster interface {
	BroadcastPresence(sessionID string, participants int)
}

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	logger       *slog.Logger
	sessions     storage.SessionStorage
	participants storage.ParticipantStorage
	tokens       SessionTokenMinter
	broadcaster  StatusBroadcaster
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(logger *slog.Logger, sessions storage.SessionStorage, participants storage.ParticipantStorage, tokens SessionTokenMinter, broadcaster StatusBroadcaster) *SessionsHandler {
	return &SessionsHandler{
		logger:       logger,
		sessions:     sessions,
		participants: participants,
		tokens:       tokens,
		broadcaster:  broadcaster,
	}
}

// Create handles POST /v1/sessions
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := GetPrincipal(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "missing identity")
		return
	}
	if !principal.Role.CanEditLayout() {
		writeError(w, r, http.StatusForbidden, api.CodeForbidden, "role cannot create sessions")
		return
	}

	var req api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create session request", slog.Any("error", err))
		writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "invalid request body")
		return
	}

	if err := validation.ValidateTitle(req.Title); err != nil {
		writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = "PRIVATE"
	}

	now := time.Now().UTC()
	session := &storage.Session{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Status:     "DRAFT",
		Visibility: visibility,
		CreatedBy:  principal.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	seed, err := json.Marshal(models.DefaultLayout())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal seed layout", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	if err := h.sessions.CreateSession(ctx, session, seed); err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "session created",
		slog.String("session_id", session.ID),
		slog.String("created_by", principal.UserID))

	writeJSON(w, http.StatusCreated, itemFromSession(session))
}

// List handles GET /v1/sessions
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "invalid limit parameter")
			return
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		limit = parsed
	}

	sessions, nextCursor, err := h.sessions.ListSessions(ctx, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			writeError(w, r, http.StatusBadRequest, api.CodeInvalidCursor, "cursor could not be decoded")
			return
		}
		h.logger.ErrorContext(ctx, "failed to list sessions", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	items := make([]api.SessionItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, itemFromSession(session))
	}

	writeJSON(w, http.StatusOK, api.ListSessionsResponse{
		Items:      items,
		NextCursor: nextCursor,
	})
}

// Get handles GET /v1/sessions/{id}
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.sessions.GetSession(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, r, http.StatusNotFound, api.CodeSessionNotFound, "session not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get session", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, itemFromSession(session))
}

// Start handles POST /v1/sessions/{id}/start
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, "ACTIVE")
}

// Pause handles POST /v1/sessions/{id}/pause
func (h *SessionsHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, "PAUSED")
}

// End handles POST /v1/sessions/{id}/end
func (h *SessionsHandler) End(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, "ENDED")
}

func (h *SessionsHandler) updateStatus(w http.ResponseWriter, r *http.Request, status string) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	principal, ok := GetPrincipal(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "missing identity")
		return
	}
	if !principal.Role.CanEditLayout() {
		writeError(w, r, http.StatusForbidden, api.CodeForbidden, "role cannot control the session lifecycle")
		return
	}

	if err := h.sessions.UpdateSessionStatus(ctx, sessionID, status); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, r, http.StatusNotFound, api.CodeSessionNotFound, "session not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update session status", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "session status updated",
		slog.String("session_id", sessionID),
		slog.String("status", status),
		slog.String("user_id", principal.UserID))

	session, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reload session", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, itemFromSession(session))
}

// Join handles POST /v1/sessions/{id}/participants:join.
// It registers the caller as a participant and returns the push channel
// endpoint together with a session-scoped token.
func (h *SessionsHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	principal, ok := GetPrincipal(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "missing identity")
		return
	}

	participant := &storage.Participant{
		SessionID: sessionID,
		UserID:    principal.UserID,
		Role:      principal.Role.Wire(),
		JoinedAt:  time.Now().UTC(),
	}
	if err := h.participants.UpsertParticipant(ctx, participant); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, r, http.StatusNotFound, api.CodeSessionNotFound, "session not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to register participant", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	wsToken, err := h.tokens.MintSessionToken(principal.UserID, string(principal.Role), sessionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint session token", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	if count, err := h.participants.CountParticipants(ctx, sessionID); err == nil && h.broadcaster != nil {
		h.broadcaster.BroadcastPresence(sessionID, count)
	}

	h.logger.InfoContext(ctx, "participant joined",
		slog.String("session_id", sessionID),
		slog.String("user_id", principal.UserID),
		slog.String("role", participant.Role))

	writeJSON(w, http.StatusOK, api.JoinSessionResponse{
		SessionID: sessionID,
		Role:      participant.Role,
		Realtime: api.RealtimeInfo{
			WSURL: wsURL(r, sessionID),
			Token: wsToken,
		},
	})
}

func wsURL(r *http.Request, sessionID string) string {
	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	return scheme + "://" + r.Host + "/v1/sessions/" + sessionID + "/ws"
}

func itemFromSession(session *storage.Session) api.SessionItem {
	return api.SessionItem{
		ID:         session.ID,
		Title:      session.Title,
		Status:     session.Status,
		Visibility: session.Visibility,
		CreatedBy:  session.CreatedBy,
		CreatedAt:  session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  session.UpdatedAt.Format(time.RFC3339),
	}
}
