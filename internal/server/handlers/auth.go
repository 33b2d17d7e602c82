package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

// TokenMinter issues bearer tokens.
type TokenMinter interface {
	Mint(userID, role string) (string, time.Time, error)
}

// AuthHandler mints dev bearer tokens.
type AuthHandler struct {
	logger *slog.Logger
	tokens TokenMinter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, tokens TokenMinter) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		tokens: tokens,
	}
}

// MintToken handles POST /v1/auth/token.
// The endpoint is unauthenticated and rate limited; it exists so clients can
// obtain an identity without a separate identity provider.
func (h *AuthHandler) MintToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode token request", slog.Any("error", err))
		writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "invalid request body")
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "unknown role")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	signed, expiresAt, err := h.tokens.Mint(userID, string(role))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint token", slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, api.CodeValidationError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "token minted",
		slog.String("user_id", userID),
		slog.String("role", string(role)))

	writeJSON(w, http.StatusOK, api.TokenResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
	})
}
