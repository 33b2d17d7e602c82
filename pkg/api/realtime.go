package api

import "encoding/json"

// Push channel message types. The server broadcasts snapshot/updated/
// conflict/presence messages; clients may send layout.update and ping.
const (
	MessageLayoutSnapshot  = "layout.snapshot"
	MessageLayoutUpdated   = "layout.updated"
	MessageLayoutConflict  = "layout.conflict"
	MessageLayoutUpdate    = "layout.update"
	MessagePresenceUpdated = "presence.updated"
	MessageError           = "error"
	MessagePing            = "ping"
	MessagePong            = "pong"
)

// Message is the envelope for every frame on the push channel.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LayoutPayload carries a layout version on snapshot/updated messages.
type LayoutPayload struct {
	Layout    Layout `json:"layout"`
	UpdatedBy string `json:"updatedBy,omitempty"`
	Version   int64  `json:"version"`
}

// ConflictPayload carries the authority's resolved state after a rejected
// optimistic write. It must be applied unconditionally.
type ConflictPayload struct {
	Layout  Layout `json:"layout"`
	Code    string `json:"code"`
	Version int64  `json:"version"`
}

// LayoutUpdatePayload is an inbound optimistic write over the push channel.
type LayoutUpdatePayload struct {
	Layout      Layout `json:"layout"`
	BaseVersion int64  `json:"baseVersion"`
}

// PresencePayload carries the current participant count.
type PresencePayload struct {
	Participants int `json:"participants"`
}

// ErrorPayload is an error frame on the push channel.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// NewMessage marshals payload into a Message envelope.
func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}
