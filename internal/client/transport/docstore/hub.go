package docstore

import (
	"sync"

	"github.com/medigrid/layoutsync/internal/client/transport"
)

// subscriber holds the callbacks of one subscription.
type subscriber struct {
	onUpdate   transport.UpdateFunc
	onPresence transport.PresenceFunc
}

// hub fans document changes out to in-process subscribers. Notifications for
// a session are serialized under the hub mutex so every subscriber observes
// versions in non-decreasing order.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[int]*subscriber
	next int
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]*subscriber)}
}

func (h *hub) subscribe(sessionID string, sub *subscriber) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]*subscriber)
	}
	id := h.next
	h.next++
	h.subs[sessionID][id] = sub
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[sessionID], id)
	}
}

func (h *hub) notifyLayout(sessionID string, snap transport.Snapshot, kind transport.UpdateKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[sessionID] {
		if sub.onUpdate != nil {
			sub.onUpdate(snap, kind)
		}
	}
}

func (h *hub) notifyPresence(sessionID string, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[sessionID] {
		if sub.onPresence != nil {
			sub.onPresence(count)
		}
	}
}
