package rest

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/pkg/api"
)

// channel is one open WebSocket push channel. A single read loop dispatches
// frames, so callbacks are invoked sequentially and versions arrive in the
// order the server broadcast them.
type channel struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	done      chan struct{}
	sessionID string
	closeOnce sync.Once

	mu         sync.Mutex
	onUpdate   transport.UpdateFunc
	onPresence transport.PresenceFunc
}

// SessionID implements transport.Handle.
func (ch *channel) SessionID() string {
	return ch.sessionID
}

// Done implements transport.Handle.
func (ch *channel) Done() <-chan struct{} {
	return ch.done
}

// Close implements transport.Handle. Idempotent.
func (ch *channel) Close() error {
	var err error
	ch.closeOnce.Do(func() {
		err = ch.conn.Close()
		close(ch.done)
	})
	return err
}

func (ch *channel) setCallbacks(onUpdate transport.UpdateFunc, onPresence transport.PresenceFunc) {
	ch.mu.Lock()
	ch.onUpdate = onUpdate
	ch.onPresence = onPresence
	ch.mu.Unlock()
}

func (ch *channel) callbacks() (transport.UpdateFunc, transport.PresenceFunc) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.onUpdate, ch.onPresence
}

func (ch *channel) readLoop() {
	defer func() {
		_ = ch.Close()
	}()
	for {
		_, data, err := ch.conn.ReadMessage()
		if err != nil {
			select {
			case <-ch.done:
				// deliberate close, not a drop
			default:
				ch.logger.Debug("push channel read failed",
					"session_id", ch.sessionID,
					"error", err)
			}
			return
		}
		ch.dispatch(data)
	}
}

// dispatch decodes one frame. Malformed frames are ignored.
func (ch *channel) dispatch(data []byte) {
	var msg api.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	onUpdate, onPresence := ch.callbacks()

	switch msg.Type {
	case api.MessageLayoutSnapshot, api.MessageLayoutUpdated, api.MessageLayoutConflict:
		if onUpdate == nil {
			return
		}
		var payload api.LayoutPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		kind := transport.UpdateRemote
		switch msg.Type {
		case api.MessageLayoutSnapshot:
			kind = transport.UpdateSnapshot
		case api.MessageLayoutConflict:
			kind = transport.UpdateConflict
		}
		onUpdate(transport.Snapshot{Version: payload.Version, Layout: payload.Layout}, kind)
	case api.MessagePresenceUpdated:
		if onPresence == nil {
			return
		}
		var payload api.PresencePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		onPresence(payload.Participants)
	}
}
