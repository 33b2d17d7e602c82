// Package transport defines the capability interface the sync core uses to
// talk to a session authority. Two interchangeable variants exist: the
// REST+WebSocket adapter and the bbolt document-store adapter. Callers depend
// only on these interfaces; variant-specific contract weaknesses (the
// docstore publish has no version precondition) are documented on the
// implementations, not hidden behind the abstraction.
package transport

import (
	"context"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

//go:generate moq -out transport_mock.go . Adapter Authority

// Snapshot is a point-in-time authoritative layout state.
type Snapshot struct {
	Layout  api.Layout
	Version int64
}

// Identity describes the local participant to the backend.
type Identity struct {
	UserID string
	Role   models.Role
}

// UpdateKind tells the receiver how a pushed layout state arose.
type UpdateKind int

const (
	// UpdateRemote is an ordinary layout change pushed by the authority.
	UpdateRemote UpdateKind = iota
	// UpdateSnapshot is the full state sent when a channel (re)opens.
	UpdateSnapshot
	// UpdateConflict is the authority's resolved state after it rejected an
	// optimistic write. Receivers must apply it unconditionally.
	UpdateConflict
)

// UpdateFunc receives pushed layout states.
type UpdateFunc func(snap Snapshot, kind UpdateKind)

// PresenceFunc receives the current participant count.
type PresenceFunc func(count int)

// Unsubscribe releases a subscription. Safe to call more than once.
type Unsubscribe func()

// Handle represents an open session channel.
type Handle interface {
	// SessionID identifies the session this channel belongs to.
	SessionID() string

	// Done is closed when the channel drops, whether by transport failure
	// or by Close. Backends with no failure mode (local document stores)
	// close it only on Close.
	Done() <-chan struct{}

	// Close releases the channel and all of its subscriptions. Idempotent.
	Close() error
}

// Adapter is the push/pull surface of a session backend.
//
// Ordering contract: updates delivered to a single subscriber are
// monotonically non-decreasing in version, and rapid successive writes may be
// coalesced into the latest state (at-least-once-latest, not
// exactly-once-all). Callbacks are invoked sequentially from one goroutine
// per session and must not block.
type Adapter interface {
	// JoinSession performs the backend handshake (participant registration
	// plus channel open) and returns the open channel.
	JoinSession(ctx context.Context, sessionID string, identity Identity) (Handle, error)

	// FetchSnapshot is a one-shot read of the current authoritative state.
	FetchSnapshot(ctx context.Context, sessionID string) (Snapshot, error)

	// SubscribeUpdates registers callbacks for layout pushes and presence
	// changes on an open channel.
	SubscribeUpdates(sessionID string, onUpdate UpdateFunc, onPresence PresenceFunc) (Unsubscribe, error)

	// Publish attempts an optimistic write and returns the assigned version.
	// Fails with ErrVersionConflict when baseVersion is stale.
	Publish(ctx context.Context, sessionID string, baseVersion int64, layout api.Layout) (int64, error)
}

// Authority is the session lifecycle surface of a backend.
type Authority interface {
	CreateSession(ctx context.Context, title string) (api.SessionItem, error)
	ListSessions(ctx context.Context) ([]api.SessionItem, error)
	StartSession(ctx context.Context, sessionID string) error
	PauseSession(ctx context.Context, sessionID string) error
	EndSession(ctx context.Context, sessionID string) error
}
