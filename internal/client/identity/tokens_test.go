package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func TestApplyMintsAndCachesToken(t *testing.T) {
	var mints int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/token", r.URL.Path)
		var req api.TokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.UserID)
		assert.Equal(t, "SURGEON", req.Role)

		mints++
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			Token:     "token-abc",
			ExpiresAt: time.Now().Add(15 * time.Minute),
		})
	}))
	defer srv.Close()

	tokens := NewTokenSource(srv.URL, "user-1", models.RoleSurgeon, testLogger())

	req1, _ := http.NewRequest(http.MethodGet, "http://example/v1/sessions", nil)
	tokens.Apply(context.Background(), req1)
	assert.Equal(t, "Bearer token-abc", req1.Header.Get("Authorization"))

	// Second call reuses the cached token.
	req2, _ := http.NewRequest(http.MethodGet, "http://example/v1/sessions", nil)
	tokens.Apply(context.Background(), req2)
	assert.Equal(t, "Bearer token-abc", req2.Header.Get("Authorization"))
	assert.Equal(t, 1, mints)
}

func TestApplyRemintsNearExpiry(t *testing.T) {
	var mints int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mints++
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			Token:     "token-fresh",
			ExpiresAt: time.Now().Add(15 * time.Minute),
		})
	}))
	defer srv.Close()

	tokens := NewTokenSource(srv.URL, "user-1", models.RoleSurgeon, testLogger())

	req, _ := http.NewRequest(http.MethodGet, "http://example/", nil)
	tokens.Apply(context.Background(), req)
	require.Equal(t, 1, mints)

	// Advance the clock to within the refresh buffer of expiry.
	tokens.now = func() time.Time {
		return time.Now().Add(15*time.Minute - 30*time.Second)
	}
	tokens.Apply(context.Background(), req)
	assert.Equal(t, 2, mints)
}

func TestApplyFallsBackToDevHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tokens := NewTokenSource(srv.URL, "viewer-7", models.RoleViewer, testLogger())

	req, _ := http.NewRequest(http.MethodGet, "http://example/", nil)
	tokens.Apply(context.Background(), req)

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "viewer-7", req.Header.Get(api.HeaderDevUserID))
	assert.Equal(t, "OBSERVER", req.Header.Get(api.HeaderDevRole))
}
