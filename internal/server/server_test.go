package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigrid/layoutsync/internal/config"
	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.ServerConfig{
		Addr:       ":0",
		DBPath:     ":memory:",
		JWTSecret:  "test-secret",
		TokenTTL:   "15m",
		WSTokenTTL: "5m",
	}
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))

	srv, err := New(context.Background(), cfg, "test", logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts
}

// doJSON performs a request with dev identity headers and decodes the
// response body into out when it is non-nil.
func doJSON(t *testing.T, ts *httptest.Server, method, path string, role string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.HeaderDevUserID, strings.ToLower(role)+"-1")
	req.Header.Set(api.HeaderDevRole, role)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createSession(t *testing.T, ts *httptest.Server, title string) api.SessionItem {
	t.Helper()
	var item api.SessionItem
	resp := doJSON(t, ts, http.MethodPost, "/v1/sessions", "SURGEON", api.CreateSessionRequest{Title: title}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return item
}

func decodeError(t *testing.T, resp *http.Response) api.ErrorResponse {
	t.Helper()
	var envelope api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/v1/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, api.CodeUnauthorized, decodeError(t, resp).Error.Code)
}

func TestMintedBearerTokenAuthenticates(t *testing.T) {
	ts := newTestServer(t)

	var tokenResp api.TokenResponse
	resp := doJSON(t, ts, http.MethodPost, "/v1/auth/token", "SURGEON",
		api.TokenRequest{UserID: "surgeon-9", Role: "SURGEON"}, &tokenResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, tokenResp.Token)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/sessions",
		strings.NewReader(`{"title":"bearer case"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenResp.Token)

	created, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	var item api.SessionItem
	require.NoError(t, json.NewDecoder(created.Body).Decode(&item))
	assert.Equal(t, "surgeon-9", item.CreatedBy)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/v1/sessions", "SURGEON", api.CreateSessionRequest{Title: ""}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, api.CodeValidationError, decodeError(t, resp).Error.Code)

	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions", "OBSERVER", api.CreateSessionRequest{Title: "nope"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, api.CodeForbidden, decodeError(t, resp).Error.Code)
}

func TestListSessionsPaginated(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		createSession(t, ts, fmt.Sprintf("case %d", i))
	}

	var page api.ListSessionsResponse
	resp := doJSON(t, ts, http.MethodGet, "/v1/sessions?limit=2", "OBSERVER", nil, &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	var rest api.ListSessionsResponse
	resp = doJSON(t, ts, http.MethodGet, "/v1/sessions?limit=2&cursor="+page.NextCursor, "OBSERVER", nil, &rest)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	resp = doJSON(t, ts, http.MethodGet, "/v1/sessions?cursor=garbage!!", "OBSERVER", nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, api.CodeInvalidCursor, decodeError(t, resp).Error.Code)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "lifecycle case")

	var started api.SessionItem
	resp := doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/start", "SURGEON", nil, &started)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ACTIVE", started.Status)

	var paused api.SessionItem
	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/pause", "SURGEON", nil, &paused)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PAUSED", paused.Status)

	var ended api.SessionItem
	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/end", "SURGEON", nil, &ended)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ENDED", ended.Status)

	// Lifecycle control is editor-only.
	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/start", "OBSERVER", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/absent/start", "SURGEON", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, api.CodeSessionNotFound, decodeError(t, resp).Error.Code)
}

func layoutWith(slot int, sourceID string) api.Layout {
	return models.EmptyGrid().Assign(slot, sourceID).ToLayout()
}

func TestPublishLayoutOptimisticConcurrency(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "concurrency case")

	// Fresh sessions start at version 0 with an empty grid.
	var head api.LayoutResponse
	resp := doJSON(t, ts, http.MethodGet, "/v1/sessions/"+item.ID+"/layout", "OBSERVER", nil, &head)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), head.Version)

	var published api.PublishLayoutResponse
	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/layout", "SURGEON",
		api.PublishLayoutRequest{Layout: layoutWith(0, "endoscope.mp4"), BaseVersion: 0}, &published)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), published.Version)

	// A write against the stale base is rejected, not merged.
	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/layout", "SURGEON",
		api.PublishLayoutRequest{Layout: layoutWith(0, "overview.mp4"), BaseVersion: 0}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, api.CodeLayoutVersionConflict, decodeError(t, resp).Error.Code)

	// The head still carries the accepted write.
	resp = doJSON(t, ts, http.MethodGet, "/v1/sessions/"+item.ID+"/layout", "OBSERVER", nil, &head)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), head.Version)
	assert.Equal(t, "endoscope.mp4", models.GridFromLayout(head.Layout)[0])

	// Viewers cannot publish.
	resp = doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/layout", "OBSERVER",
		api.PublishLayoutRequest{Layout: layoutWith(1, "vitals.stream"), BaseVersion: 1}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublishLayoutValidatesSources(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "validation case")

	resp := doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/layout", "SURGEON",
		api.PublishLayoutRequest{Layout: layoutWith(0, "../etc/passwd"), BaseVersion: 0}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, api.CodeValidationError, decodeError(t, resp).Error.Code)
}

func joinSession(t *testing.T, ts *httptest.Server, sessionID, role string) api.JoinSessionResponse {
	t.Helper()
	var joined api.JoinSessionResponse
	resp := doJSON(t, ts, http.MethodPost, "/v1/sessions/"+sessionID+"/participants:join", role, nil, &joined)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return joined
}

func dialWS(t *testing.T, joined api.JoinSessionResponse) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(joined.Realtime.WSURL+"?token="+joined.Realtime.Token, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn, wantType string) api.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg api.Message
		require.NoError(t, conn.ReadJSON(&msg))
		// Presence frames interleave with layout frames; skip what the
		// caller is not waiting for.
		if msg.Type == wantType {
			return msg
		}
		require.Equal(t, api.MessagePresenceUpdated, msg.Type)
	}
}

func TestJoinAndRealtimeChannel(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "realtime case")

	joined := joinSession(t, ts, item.ID, "SURGEON")
	assert.Equal(t, item.ID, joined.SessionID)
	assert.Equal(t, "SURGEON", joined.Role)
	require.NotEmpty(t, joined.Realtime.Token)
	require.True(t, strings.HasPrefix(joined.Realtime.WSURL, "ws://"), joined.Realtime.WSURL)

	editorConn := dialWS(t, joined)

	// Connect delivers the authoritative snapshot first.
	snapshot := readMessage(t, editorConn, api.MessageLayoutSnapshot)
	var snapPayload api.LayoutPayload
	require.NoError(t, json.Unmarshal(snapshot.Payload, &snapPayload))
	assert.Equal(t, int64(0), snapPayload.Version)

	viewerConn := dialWS(t, joinSession(t, ts, item.ID, "OBSERVER"))
	readMessage(t, viewerConn, api.MessageLayoutSnapshot)

	// A REST publish is broadcast to connected clients.
	resp := doJSON(t, ts, http.MethodPost, "/v1/sessions/"+item.ID+"/layout", "SURGEON",
		api.PublishLayoutRequest{Layout: layoutWith(0, "endoscope.mp4"), BaseVersion: 0}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := readMessage(t, viewerConn, api.MessageLayoutUpdated)
	var updatePayload api.LayoutPayload
	require.NoError(t, json.Unmarshal(updated.Payload, &updatePayload))
	assert.Equal(t, int64(1), updatePayload.Version)
	assert.Equal(t, "endoscope.mp4", models.GridFromLayout(updatePayload.Layout)[0])
}

func TestRealtimeOptimisticWriteAndConflict(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "ws write case")

	editorConn := dialWS(t, joinSession(t, ts, item.ID, "SURGEON"))
	readMessage(t, editorConn, api.MessageLayoutSnapshot)

	// An in-band optimistic write advances the version and echoes back.
	msg, err := api.NewMessage(api.MessageLayoutUpdate, api.LayoutUpdatePayload{
		Layout:      layoutWith(1, "vitals.stream"),
		BaseVersion: 0,
	})
	require.NoError(t, err)
	require.NoError(t, editorConn.WriteJSON(msg))

	updated := readMessage(t, editorConn, api.MessageLayoutUpdated)
	var updatePayload api.LayoutPayload
	require.NoError(t, json.Unmarshal(updated.Payload, &updatePayload))
	assert.Equal(t, int64(1), updatePayload.Version)

	// A stale in-band write gets a conflict frame carrying the resolved
	// state instead of an error disconnect.
	msg, err = api.NewMessage(api.MessageLayoutUpdate, api.LayoutUpdatePayload{
		Layout:      layoutWith(2, "late.mp4"),
		BaseVersion: 0,
	})
	require.NoError(t, err)
	require.NoError(t, editorConn.WriteJSON(msg))

	conflict := readMessage(t, editorConn, api.MessageLayoutConflict)
	var conflictPayload api.ConflictPayload
	require.NoError(t, json.Unmarshal(conflict.Payload, &conflictPayload))
	assert.Equal(t, api.CodeLayoutVersionConflict, conflictPayload.Code)
	assert.Equal(t, int64(1), conflictPayload.Version)
	assert.Equal(t, "vitals.stream", models.GridFromLayout(conflictPayload.Layout)[1])
}

func TestRealtimeViewerWriteForbidden(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "viewer ws case")

	viewerConn := dialWS(t, joinSession(t, ts, item.ID, "OBSERVER"))
	readMessage(t, viewerConn, api.MessageLayoutSnapshot)

	msg, err := api.NewMessage(api.MessageLayoutUpdate, api.LayoutUpdatePayload{
		Layout:      layoutWith(0, "sneaky.mp4"),
		BaseVersion: 0,
	})
	require.NoError(t, err)
	require.NoError(t, viewerConn.WriteJSON(msg))

	frame := readMessage(t, viewerConn, api.MessageError)
	var errPayload api.ErrorPayload
	require.NoError(t, json.Unmarshal(frame.Payload, &errPayload))
	assert.Equal(t, api.CodeForbidden, errPayload.Code)
}

func TestRealtimeRejectsBadToken(t *testing.T) {
	ts := newTestServer(t)
	item := createSession(t, ts, "token case")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + item.ID + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, api.CodeInvalidWSToken, decodeError(t, resp).Error.Code)

	// A token for another session is rejected too.
	other := createSession(t, ts, "other case")
	joined := joinSession(t, ts, other.ID, "SURGEON")
	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token="+joined.Realtime.Token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req-42")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-42", resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "req-42", decodeError(t, resp).Error.RequestID)
}
