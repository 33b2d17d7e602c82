package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/internal/server/handlers"
	"github.com/medigrid/layoutsync/internal/server/token"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// AuthMiddleware resolves the caller's identity. It accepts a Bearer token
// minted by /v1/auth/token, or falls back to the X-Dev-User-Id and
// X-Dev-Role headers for local development. Requests with neither are
// rejected with 401.
func AuthMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := resolvePrincipal(logger, validator, r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"missing or invalid credentials"}}`))
				return
			}

			logger.Debug("request authenticated",
				"user_id", principal.UserID,
				"role", string(principal.Role))

			ctx := handlers.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolvePrincipal(logger *slog.Logger, validator TokenValidator, r *http.Request) (handlers.Principal, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			logger.Warn("Invalid Authorization header format")
			return handlers.Principal{}, false
		}

		claims, err := validator.Validate(parts[1])
		if err != nil {
			logger.Warn("Invalid access token", "error", err)
			return handlers.Principal{}, false
		}

		role, ok := models.ParseRole(claims.Role)
		if !ok {
			logger.Warn("Token carries unknown role", "role", claims.Role)
			return handlers.Principal{}, false
		}

		return handlers.Principal{UserID: claims.Subject, Role: role}, true
	}

	// Dev header fallback: an identity without a token. The role header is
	// optional and defaults to viewer.
	if userID := r.Header.Get("X-Dev-User-Id"); userID != "" {
		role := models.RoleViewer
		if rawRole := r.Header.Get("X-Dev-Role"); rawRole != "" {
			parsed, ok := models.ParseRole(rawRole)
			if !ok {
				logger.Warn("Unknown dev role header", "role", rawRole)
				return handlers.Principal{}, false
			}
			role = parsed
		}
		return handlers.Principal{UserID: userID, Role: role}, true
	}

	return handlers.Principal{}, false
}
