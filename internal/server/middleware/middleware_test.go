package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/internal/server/handlers"
	"github.com/medigrid/layoutsync/internal/server/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func authedHandler(t *testing.T, got *handlers.Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := handlers.GetPrincipal(r.Context())
		require.True(t, ok)
		*got = principal
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	tokens := token.NewService("test-secret", time.Minute, time.Minute)
	signed, _, err := tokens.Mint("user-1", "SURGEON")
	require.NoError(t, err)

	var got handlers.Principal
	mw := AuthMiddleware(testLogger(), tokens)(authedHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, models.RoleSurgeon, got.Role)
}

func TestAuthMiddlewareDevHeaders(t *testing.T) {
	tokens := token.NewService("test-secret", time.Minute, time.Minute)

	var got handlers.Principal
	mw := AuthMiddleware(testLogger(), tokens)(authedHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	req.Header.Set("X-Dev-User-Id", "dev-7")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "dev-7", got.UserID)
	// The role header is optional and defaults to viewer.
	assert.Equal(t, models.RoleViewer, got.Role)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	tokens := token.NewService("test-secret", time.Minute, time.Minute)
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})
	mw := AuthMiddleware(testLogger(), tokens)(next)

	cases := map[string]func(*http.Request){
		"no credentials": func(*http.Request) {},
		"malformed authorization": func(r *http.Request) {
			r.Header.Set("Authorization", "token abc")
		},
		"invalid token": func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		},
		"unknown dev role": func(r *http.Request) {
			r.Header.Set("X-Dev-User-Id", "dev-7")
			r.Header.Set("X-Dev-Role", "WIZARD")
		},
	}
	for name, decorate := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
			decorate(req)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, testLogger())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
	assert.False(t, rl.Allow("10.0.0.1"))

	// Buckets are per client.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimitMiddleware(1, time.Minute, testLogger())(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestLoggingMiddlewareAssignsRequestID(t *testing.T) {
	var inCtx string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = handlers.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	mw := LoggingMiddleware(testLogger())(next)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))

	header := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, header)
	assert.Equal(t, header, inCtx)
}

func TestRecoveryMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	mw := RecoveryMiddleware(testLogger())(next)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
