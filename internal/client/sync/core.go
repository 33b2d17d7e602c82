// Package sync is the realtime synchronization core: it owns the layout
// reconciler, serializes outgoing publishes, supervises the push channel
// with exponential backoff, and gates remote pushes for read-only
// participants.
//
// All mutable state is confined to one run-loop goroutine; public methods
// post closures onto that loop, and every asynchronous continuation carries
// the epoch of the session activation it belongs to. Continuations from a
// stale epoch are dropped at the top, so a late network response from a
// deactivated session can never corrupt the newly active one. There is no
// mid-flight cancellation of a publish or fetch; disposal only suppresses
// the effects of stale responses.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/medigrid/layoutsync/internal/client/layout"
	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/models"
	gosync "sync"
)

// Status is the read-only projection handed to the rendering layer.
type Status struct {
	Grid              models.Grid
	SessionID         string
	Connection        models.ConnectionState
	SyncError         string
	Role              models.Role
	Version           int64
	ReconnectAttempts int
	Participants      int
	CanUndo           bool
	FollowPresenter   bool
	PendingPresenter  bool
}

// Options configure a Core. All fields are optional.
type Options struct {
	// OnNotice receives transient user-visible notifications. Invoked from
	// the run loop; must not block.
	OnNotice func(Notice)
	// OnStatus receives a fresh projection after every observable change.
	// Invoked from the run loop; must not block.
	OnStatus func(Status)
	Logger   *slog.Logger
}

// Core drives synchronization for at most one active session at a time.
type Core struct {
	adapter  transport.Adapter
	logger   *slog.Logger
	onNotice func(Notice)
	onStatus func(Status)

	events chan func()
	quit   chan struct{}
	once   gosync.Once

	// after schedules fn on the run loop after d. Replaced in tests.
	after func(d time.Duration, fn func())

	// Everything below is owned by the run loop.
	epoch        int
	sessionID    string
	identity     transport.Identity
	state        *layout.State
	gate         *presenterGate
	conn         models.ConnectionState
	syncError    string
	attempts     int
	participants int
	handle       transport.Handle
	unsub        transport.Unsubscribe
	queue        []publishTask
	inFlight     bool
}

// NewCore creates a core for the given participant identity and starts its
// run loop. Callers must Close it when done.
func NewCore(adapter transport.Adapter, identity transport.Identity, opts Options) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Core{
		adapter:  adapter,
		logger:   logger,
		onNotice: opts.OnNotice,
		onStatus: opts.OnStatus,
		events:   make(chan func(), 128),
		quit:     make(chan struct{}),
		identity: identity,
		state:    layout.NewState(),
		gate:     newPresenterGate(),
		conn:     models.ConnOffline,
	}
	c.after = func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() { c.post(fn) })
	}
	go c.run()
	return c
}

// Close deactivates any active session and stops the run loop.
func (c *Core) Close() {
	c.call(c.deactivate)
	c.once.Do(func() { close(c.quit) })
}

// Activate switches the core to the given session: it tears down the
// previous channel, resets local state and starts connecting.
func (c *Core) Activate(sessionID string) {
	c.call(func() { c.activate(sessionID) })
}

// Deactivate drops the active session and returns to offline. This is the
// sole cancellation path for in-flight reconnect timers and subscriptions.
func (c *Core) Deactivate() {
	c.call(c.deactivate)
}

// Edit applies a local layout mutation and schedules a publish. A mutator
// returning a structurally identical grid records nothing and publishes
// nothing.
func (c *Core) Edit(mutate func(models.Grid) models.Grid) error {
	var err error
	c.call(func() {
		switch {
		case !c.identity.Role.CanEditLayout():
			err = ErrReadOnly
		case c.sessionID == "":
			err = ErrNoActiveSession
		default:
			prev, next, changed := c.state.ApplyLocal(mutate)
			if !changed {
				return
			}
			c.enqueuePublish(prev, next)
			c.emitStatus()
		}
	})
	return err
}

// Undo reverts the most recent local edit and republishes it. No-op when
// the history is empty.
func (c *Core) Undo() error {
	var err error
	c.call(func() {
		switch {
		case !c.identity.Role.CanEditLayout():
			err = ErrReadOnly
		case c.sessionID == "":
			err = ErrNoActiveSession
		default:
			prev, next, ok := c.state.Undo()
			if !ok {
				return
			}
			c.enqueuePublish(prev, next)
			c.emitStatus()
		}
	})
	return err
}

// SetFollow switches presenter-follow mode for a read-only participant.
// Re-enabling follow applies any buffered update immediately.
func (c *Core) SetFollow(on bool) {
	c.call(func() {
		if c.identity.Role.CanEditLayout() {
			return
		}
		if pending := c.gate.SetFollow(on); pending != nil {
			c.state.ApplyRemote(pending.Version, pending.Layout)
			c.notice(NoticeSuccess, "Synced to presenter layout")
		}
		c.emitStatus()
	})
}

// SyncNow applies the buffered presenter update without changing mode.
func (c *Core) SyncNow() {
	c.call(func() {
		if pending := c.gate.TakePending(); pending != nil {
			c.state.ApplyRemote(pending.Version, pending.Layout)
			c.notice(NoticeSuccess, "Synced latest presenter layout")
		}
		c.emitStatus()
	})
}

// SetRole changes the local participant's capability. Elevation out of the
// viewer role resets the presenter gate: a controller is the source of
// truth, not a follower.
func (c *Core) SetRole(role models.Role) {
	c.call(func() {
		c.identity.Role = role
		if role.CanEditLayout() {
			c.gate.Reset()
		}
		c.emitStatus()
	})
}

// Status returns a snapshot of the observable state.
func (c *Core) Status() Status {
	var st Status
	c.call(func() { st = c.status() })
	return st
}

// run loop plumbing

func (c *Core) run() {
	for {
		select {
		case fn := <-c.events:
			fn()
		case <-c.quit:
			return
		}
	}
}

func (c *Core) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.quit:
	}
}

func (c *Core) call(fn func()) {
	done := make(chan struct{})
	c.post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-c.quit:
	}
}

// session activation

func (c *Core) activate(sessionID string) {
	c.deactivate()
	c.epoch++
	c.sessionID = sessionID
	c.connect(c.epoch)
}

func (c *Core) deactivate() {
	c.epoch++
	c.sessionID = ""
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	if c.handle != nil {
		h := c.handle
		c.handle = nil
		go func() { _ = h.Close() }()
	}
	c.queue = nil
	c.inFlight = false
	c.attempts = 0
	c.participants = 0
	c.syncError = ""
	c.conn = models.ConnOffline
	c.state = layout.NewState()
	c.gate.Reset()
	c.emitStatus()
}

// connection supervision

func (c *Core) connect(epoch int) {
	if epoch != c.epoch || c.sessionID == "" {
		return
	}
	if c.attempts > 0 {
		c.conn = models.ConnReconnecting
	} else {
		c.conn = models.ConnConnecting
	}
	c.emitStatus()

	sessionID := c.sessionID
	identity := c.identity
	go func() {
		ctx := context.Background()
		handle, err := c.adapter.JoinSession(ctx, sessionID, identity)
		var snap transport.Snapshot
		if err == nil {
			snap, err = c.adapter.FetchSnapshot(ctx, sessionID)
		}
		c.post(func() { c.finishConnect(epoch, handle, snap, err) })
	}()
}

func (c *Core) finishConnect(epoch int, handle transport.Handle, snap transport.Snapshot, err error) {
	if epoch != c.epoch {
		if handle != nil {
			go func() { _ = handle.Close() }()
		}
		return
	}
	if err != nil {
		if handle != nil {
			go func() { _ = handle.Close() }()
		}
		c.logger.Warn("session connect failed",
			"session_id", c.sessionID,
			"attempt", c.attempts,
			"error", err)
		if errors.Is(err, transport.ErrNotFound) {
			c.notice(NoticeError, "Session no longer exists")
			c.deactivate()
			// The session ended remotely, not by local choice; no retry.
			c.conn = models.ConnDisconnected
			c.emitStatus()
			return
		}
		if c.attempts == 0 {
			c.notice(NoticeError, "Realtime sync unavailable")
		}
		c.syncError = err.Error()
		c.scheduleReconnect(epoch)
		return
	}

	reconnected := c.attempts > 0
	// A reconnect always refetches the full snapshot: the push subscription
	// alone does not guarantee delivery of updates missed during an outage.
	c.state.ApplyRemote(snap.Version, snap.Layout)
	c.gate.DropStale(snap.Version)
	unsub, err := c.adapter.SubscribeUpdates(c.sessionID, c.updateFunc(epoch), c.presenceFunc(epoch))
	if err != nil {
		go func() { _ = handle.Close() }()
		c.logger.Warn("subscribe failed", "session_id", c.sessionID, "error", err)
		c.scheduleReconnect(epoch)
		return
	}
	c.handle = handle
	c.unsub = unsub
	c.attempts = 0
	c.conn = models.ConnConnected
	c.syncError = ""
	if reconnected {
		c.notice(NoticeSuccess, "Realtime reconnected")
	}
	c.logger.Info("session channel connected", "session_id", c.sessionID, "version", snap.Version)
	go c.watchDrop(epoch, handle)
	c.emitStatus()
}

func (c *Core) watchDrop(epoch int, h transport.Handle) {
	<-h.Done()
	c.post(func() {
		if epoch != c.epoch {
			return
		}
		if c.unsub != nil {
			c.unsub()
			c.unsub = nil
		}
		c.handle = nil
		c.logger.Warn("session channel dropped", "session_id", c.sessionID)
		c.scheduleReconnect(epoch)
	})
}

func (c *Core) scheduleReconnect(epoch int) {
	if epoch != c.epoch {
		return
	}
	c.attempts++
	c.conn = models.ConnReconnecting
	delay := backoffDelay(c.attempts)
	c.logger.Info("scheduling reconnect",
		"session_id", c.sessionID,
		"attempt", c.attempts,
		"delay", delay)
	c.after(delay, func() { c.connect(epoch) })
	c.emitStatus()
}

// remote pushes

func (c *Core) updateFunc(epoch int) transport.UpdateFunc {
	return func(snap transport.Snapshot, kind transport.UpdateKind) {
		c.post(func() {
			if epoch != c.epoch {
				return
			}
			switch kind {
			case transport.UpdateConflict:
				// The authority's resolved state; applied unconditionally.
				c.state.ApplyRemote(snap.Version, snap.Layout)
				c.gate.TakePending()
				c.syncError = "Layout conflict resolved with latest server version."
				c.notice(NoticeWarning, "Layout conflict resolved to latest version")
			case transport.UpdateRemote:
				if !c.identity.Role.CanEditLayout() && !c.gate.Offer(snap) {
					// Buffered for manual sync; the indicator rides Status.
					c.emitStatus()
					return
				}
				c.state.ApplyRemote(snap.Version, snap.Layout)
				c.syncError = ""
			default: // transport.UpdateSnapshot
				c.state.ApplyRemote(snap.Version, snap.Layout)
				c.gate.DropStale(snap.Version)
				c.syncError = ""
			}
			c.emitStatus()
		})
	}
}

func (c *Core) presenceFunc(epoch int) transport.PresenceFunc {
	return func(count int) {
		c.post(func() {
			if epoch != c.epoch {
				return
			}
			c.participants = count
			c.emitStatus()
		})
	}
}

// observers

func (c *Core) status() Status {
	return Status{
		Grid:              c.state.Grid(),
		SessionID:         c.sessionID,
		Connection:        c.conn,
		SyncError:         c.syncError,
		Role:              c.identity.Role,
		Version:           c.state.Version(),
		ReconnectAttempts: c.attempts,
		Participants:      c.participants,
		CanUndo:           c.state.CanUndo(),
		FollowPresenter:   c.gate.Following(),
		PendingPresenter:  c.gate.HasPending(),
	}
}

func (c *Core) emitStatus() {
	if c.onStatus != nil {
		c.onStatus(c.status())
	}
}

func (c *Core) notice(kind NoticeKind, message string) {
	if c.onNotice != nil {
		c.onNotice(Notice{Kind: kind, Message: message})
	}
}
