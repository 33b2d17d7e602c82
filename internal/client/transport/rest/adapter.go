package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/pkg/api"
)

// Adapter implements transport.Adapter and transport.Authority over the
// REST authority and its WebSocket push channel.
type Adapter struct {
	client *Client
	logger *slog.Logger

	mu       sync.Mutex
	channels map[string]*channel
}

// NewAdapter creates a REST transport adapter.
func NewAdapter(client *Client, logger *slog.Logger) *Adapter {
	return &Adapter{
		client:   client,
		logger:   logger,
		channels: make(map[string]*channel),
	}
}

var (
	_ transport.Adapter   = (*Adapter)(nil)
	_ transport.Authority = (*Adapter)(nil)
)

// Authority

// CreateSession creates a new draft session.
func (a *Adapter) CreateSession(ctx context.Context, title string) (api.SessionItem, error) {
	var item api.SessionItem
	req := api.CreateSessionRequest{Title: title, Visibility: "PRIVATE"}
	if err := a.client.doRequest(ctx, http.MethodPost, "/v1/sessions", req, &item); err != nil {
		return api.SessionItem{}, fmt.Errorf("create session request failed: %w", err)
	}
	return item, nil
}

// ListSessions fetches the sessions visible to the caller.
func (a *Adapter) ListSessions(ctx context.Context) ([]api.SessionItem, error) {
	var resp api.ListSessionsResponse
	if err := a.client.doRequest(ctx, http.MethodGet, "/v1/sessions?limit=50", nil, &resp); err != nil {
		return nil, fmt.Errorf("list sessions request failed: %w", err)
	}
	return resp.Items, nil
}

// StartSession starts a session.
func (a *Adapter) StartSession(ctx context.Context, sessionID string) error {
	return a.lifecycle(ctx, sessionID, "start")
}

// PauseSession pauses a session.
func (a *Adapter) PauseSession(ctx context.Context, sessionID string) error {
	return a.lifecycle(ctx, sessionID, "pause")
}

// EndSession ends a session.
func (a *Adapter) EndSession(ctx context.Context, sessionID string) error {
	return a.lifecycle(ctx, sessionID, "end")
}

func (a *Adapter) lifecycle(ctx context.Context, sessionID, action string) error {
	path := fmt.Sprintf("/v1/sessions/%s/%s", url.PathEscape(sessionID), action)
	if err := a.client.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("%s session request failed: %w", action, err)
	}
	return nil
}

// Adapter

// JoinSession registers the participant and opens the push channel the
// authority hands back.
func (a *Adapter) JoinSession(ctx context.Context, sessionID string, _ transport.Identity) (transport.Handle, error) {
	path := fmt.Sprintf("/v1/sessions/%s/participants:join", url.PathEscape(sessionID))
	var joinResp api.JoinSessionResponse
	if err := a.client.doRequest(ctx, http.MethodPost, path, nil, &joinResp); err != nil {
		return nil, fmt.Errorf("join session request failed: %w", err)
	}

	wsURL := toWebSocketURL(joinResp.Realtime.WSURL)
	if wsURL == "" || joinResp.Realtime.Token == "" {
		return nil, fmt.Errorf("join response carries no realtime endpoint: %w", transport.ErrConnectivity)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"?token="+url.QueryEscape(joinResp.Realtime.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w: %w", transport.ErrConnectivity, err)
	}

	ch := &channel{
		sessionID: sessionID,
		conn:      conn,
		done:      make(chan struct{}),
		logger:    a.logger,
	}
	a.mu.Lock()
	if prev := a.channels[sessionID]; prev != nil {
		_ = prev.Close()
	}
	a.channels[sessionID] = ch
	a.mu.Unlock()

	go ch.readLoop()
	go a.evictOnClose(sessionID, ch)
	return ch, nil
}

// evictOnClose removes the channel's registry entry once it is done, unless
// a rejoin has already replaced it.
func (a *Adapter) evictOnClose(sessionID string, ch *channel) {
	<-ch.Done()
	a.mu.Lock()
	if a.channels[sessionID] == ch {
		delete(a.channels, sessionID)
	}
	a.mu.Unlock()
}

// FetchSnapshot reads the current authoritative layout.
func (a *Adapter) FetchSnapshot(ctx context.Context, sessionID string) (transport.Snapshot, error) {
	path := fmt.Sprintf("/v1/sessions/%s/layout", url.PathEscape(sessionID))
	var resp api.LayoutResponse
	if err := a.client.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return transport.Snapshot{}, fmt.Errorf("layout fetch failed: %w", err)
	}
	return transport.Snapshot{Version: resp.Version, Layout: resp.Layout}, nil
}

// SubscribeUpdates attaches callbacks to the open channel for sessionID.
func (a *Adapter) SubscribeUpdates(sessionID string, onUpdate transport.UpdateFunc, onPresence transport.PresenceFunc) (transport.Unsubscribe, error) {
	a.mu.Lock()
	ch := a.channels[sessionID]
	a.mu.Unlock()
	if ch == nil {
		return nil, fmt.Errorf("no open channel for session %s: %w", sessionID, transport.ErrConnectivity)
	}
	ch.setCallbacks(onUpdate, onPresence)
	return func() { ch.setCallbacks(nil, nil) }, nil
}

// Publish attempts an optimistic layout write over HTTP.
func (a *Adapter) Publish(ctx context.Context, sessionID string, baseVersion int64, layout api.Layout) (int64, error) {
	path := fmt.Sprintf("/v1/sessions/%s/layout", url.PathEscape(sessionID))
	req := api.PublishLayoutRequest{BaseVersion: baseVersion, Layout: layout}
	var resp api.PublishLayoutResponse
	if err := a.client.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return 0, fmt.Errorf("layout publish failed: %w", err)
	}
	return resp.Version, nil
}

// toWebSocketURL rewrites an http(s) URL to its ws(s) form.
func toWebSocketURL(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "https"):
		return "wss" + raw[len("https"):]
	case strings.HasPrefix(lower, "http"):
		return "ws" + raw[len("http"):]
	default:
		return raw
	}
}
