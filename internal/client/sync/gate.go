package sync

import "github.com/medigrid/layoutsync/internal/client/transport"

// presenterGate decides whether a remote layout push reaches the reconciler.
// It only has an effect for the read-only (viewer) capability: in follow mode
// every push applies immediately; in manual mode the latest push is buffered
// (last-write-wins, never a queue) until the user syncs or re-enables follow.
type presenterGate struct {
	pending *transport.Snapshot
	follow  bool
}

func newPresenterGate() *presenterGate {
	return &presenterGate{follow: true}
}

// Offer presents a remote update to the gate. It returns true when the
// update should be applied now; otherwise the update replaces any previously
// buffered one.
func (g *presenterGate) Offer(snap transport.Snapshot) bool {
	if g.follow {
		g.pending = nil
		return true
	}
	g.pending = &snap
	return false
}

// SetFollow switches mode. Turning follow on returns the buffered update,
// if any, which the caller must apply; the buffer is cleared either way.
func (g *presenterGate) SetFollow(on bool) *transport.Snapshot {
	g.follow = on
	if !on {
		return nil
	}
	pending := g.pending
	g.pending = nil
	return pending
}

// TakePending removes and returns the buffered update without changing mode.
func (g *presenterGate) TakePending() *transport.Snapshot {
	pending := g.pending
	g.pending = nil
	return pending
}

// DropStale clears the buffered update unless it supersedes the given
// version. Called after a snapshot apply so that a buffer captured before
// the snapshot cannot roll the layout back later.
func (g *presenterGate) DropStale(version int64) {
	if g.pending != nil && g.pending.Version <= version {
		g.pending = nil
	}
}

// Reset restores the defaults: follow on, nothing buffered. Used on
// capability elevation and on session activation.
func (g *presenterGate) Reset() {
	g.follow = true
	g.pending = nil
}

// HasPending reports whether an update is buffered.
func (g *presenterGate) HasPending() bool {
	return g.pending != nil
}

// Following reports the current mode.
func (g *presenterGate) Following() bool {
	return g.follow
}
