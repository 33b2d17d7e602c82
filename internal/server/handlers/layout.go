package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/medigrid/layoutsync/internal/server/storage"
	"github.com/medigrid/layoutsync/internal/validation"
	"github.com/medigrid/layoutsync/pkg/api"
)

// LayoutBroadcaster pushes accepted layout versions to connected clients.
type LayoutBroadcaster interface {
	BroadcastLayout(sessionID string, payload api.LayoutPayload)
}

// LayoutHandler serves the versioned session layout.
type LayoutHandler struct {
	logger      *slog.Logger
	layouts     storage.LayoutStorage
	broadcaster LayoutBroadcaster
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(logger *slog.Logger, layouts storage.LayoutStorage, broadcaster LayoutBroadcaster) *LayoutHandler {
	return &LayoutHandler{
		logger:      logger,
		layouts:     layouts,
		broadcaster: broadcaster,
	}
}

// Get handles GET /v1/sessions/{id}/layout
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	head, err := h.layouts.GetLayout(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, r, http.StatusNotFound, api.CodeSessionNotFound, "session not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get layout", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	var layout api.Layout
	if err := json.Unmarshal(head.Layout, &layout); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal stored layout", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, api.LayoutResponse{
		Layout:  layout,
		Version: head.Version,
	})
}

// Publish handles POST /v1/sessions/{id}/layout.
// The write is optimistic: baseVersion must equal the current head or the
// request is rejected with LAYOUT_VERSION_CONFLICT.
func (h *LayoutHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	principal, ok := GetPrincipal(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "missing identity")
		return
	}
	if !principal.Role.CanEditLayout() {
		writeError(w, r, http.StatusForbidden, api.CodeForbidden, "role cannot publish layout changes")
		return
	}

	var req api.PublishLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode publish request", slog.Any("error", err))
		writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "invalid request body")
		return
	}

	if err := validateLayout(req.Layout); err != nil {
		writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	encoded, err := json.Marshal(req.Layout)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal layout", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	head, err := h.layouts.AppendLayout(ctx, sessionID, req.BaseVersion, encoded, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrVersionConflict):
			h.logger.WarnContext(ctx, "layout version conflict",
				slog.String("session_id", sessionID),
				slog.Int64("base_version", req.BaseVersion))
			writeError(w, r, http.StatusConflict, api.CodeLayoutVersionConflict, "base version is stale")
			return
		case errors.Is(err, storage.ErrSessionNotFound):
			writeError(w, r, http.StatusNotFound, api.CodeSessionNotFound, "session not found")
			return
		default:
			h.logger.ErrorContext(ctx, "failed to append layout", slog.Any("error", err))
			writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
			return
		}
	}

	h.logger.InfoContext(ctx, "layout published",
		slog.String("session_id", sessionID),
		slog.Int64("version", head.Version),
		slog.String("updated_by", principal.UserID))

	if h.broadcaster != nil {
		h.broadcaster.BroadcastLayout(sessionID, api.LayoutPayload{
			Layout:    req.Layout,
			Version:   head.Version,
			UpdatedBy: principal.UserID,
		})
	}

	writeJSON(w, http.StatusOK, api.PublishLayoutResponse{Version: head.Version})
}

// validateLayout checks every panel's source identifier.
func validateLayout(layout api.Layout) error {
	for _, panel := range layout.Panels {
		if panel.StreamID == nil {
			continue
		}
		if err := validation.ValidateSourceID(*panel.StreamID); err != nil {
			return err
		}
	}
	return nil
}
