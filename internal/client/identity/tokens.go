// Package identity holds the client's auth state as explicit, explicitly
// scoped objects: a per-role bearer-token cache with documented expiry and a
// bbolt-backed store of stable per-role user ids. Nothing here is ambient
// module state.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

// refreshBuffer is how long before expiry a cached token is considered
// stale and re-minted.
const refreshBuffer = 60 * time.Second

// TokenSource mints and caches one bearer token for a fixed identity. When
// token minting is unavailable it degrades to dev identity headers rather
// than failing hard.
type TokenSource struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	userID     string
	role       models.Role

	mu      sync.Mutex
	token   string
	expires time.Time

	now func() time.Time
}

// NewTokenSource creates a token source for the dev auth endpoint at
// baseURL.
func NewTokenSource(baseURL, userID string, role models.Role, logger *slog.Logger) *TokenSource {
	return &TokenSource{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		role:       role,
		now:        time.Now,
	}
}

// UserID returns the identity's user id.
func (t *TokenSource) UserID() string {
	return t.userID
}

// Role returns the identity's role.
func (t *TokenSource) Role() models.Role {
	return t.role
}

// Apply sets auth headers on req: a bearer token when one can be minted,
// dev identity headers otherwise. It never returns an error; auth
// degradation is by design.
func (t *TokenSource) Apply(ctx context.Context, req *http.Request) {
	token, err := t.ensureToken(ctx)
	if err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	if err != nil {
		t.logger.Debug("token mint unavailable, using dev headers", "error", err)
	}
	req.Header.Set(api.HeaderDevUserID, t.userID)
	req.Header.Set(api.HeaderDevRole, t.role.Wire())
}

// ensureToken returns the cached token while it remains valid with a 60s
// buffer, minting a fresh one otherwise.
func (t *TokenSource) ensureToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.expires.After(t.now().Add(refreshBuffer)) {
		return t.token, nil
	}

	body, err := json.Marshal(api.TokenRequest{UserID: t.userID, Role: t.role.Wire()})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	t.token = tokenResp.Token
	t.expires = tokenResp.ExpiresAt
	return t.token, nil
}
