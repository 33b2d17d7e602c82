package sync

import (
	"context"
	"errors"

	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/models"
)

// publishTask is one queued optimistic write. The epoch pins the task to the
// session activation that created it.
type publishTask struct {
	prev  models.Grid
	next  models.Grid
	epoch int
}

// enqueuePublish appends a task to the strict FIFO chain. At most one
// publish is in flight per session; tasks never race and never reorder.
func (c *Core) enqueuePublish(prev, next models.Grid) {
	c.queue = append(c.queue, publishTask{prev: prev, next: next, epoch: c.epoch})
	c.maybePublish()
}

func (c *Core) maybePublish() {
	if c.inFlight {
		return
	}
	for len(c.queue) > 0 {
		task := c.queue[0]
		c.queue = c.queue[1:]
		if task.epoch != c.epoch {
			continue
		}
		c.inFlight = true
		// Base version is read at execution time, not enqueue time: when the
		// user edits faster than the network responds, a chain of edits
		// collapses onto whatever version the previous publish confirmed.
		base := c.state.Version()
		sessionID := c.sessionID
		go func() {
			version, err := c.adapter.Publish(context.Background(), sessionID, base, task.next.ToLayout())
			c.post(func() { c.finishPublish(task, version, err) })
		}()
		return
	}
}

func (c *Core) finishPublish(task publishTask, version int64, err error) {
	if task.epoch != c.epoch {
		return
	}
	if err == nil {
		c.state.ConfirmVersion(version)
		c.syncError = ""
		c.publishDone()
		return
	}
	if errors.Is(err, transport.ErrVersionConflict) {
		// Refetch and surrender the local edit; the chain stays blocked
		// until resolution completes so ordering holds.
		sessionID := c.sessionID
		go func() {
			snap, ferr := c.adapter.FetchSnapshot(context.Background(), sessionID)
			c.post(func() { c.finishConflictResolve(task, snap, ferr) })
		}()
		return
	}
	c.rollback(task, err)
	c.publishDone()
}

func (c *Core) finishConflictResolve(task publishTask, snap transport.Snapshot, err error) {
	if task.epoch != c.epoch {
		return
	}
	if err != nil {
		c.rollback(task, err)
	} else {
		c.state.ApplyRemote(snap.Version, snap.Layout)
		c.gate.TakePending()
		c.syncError = "Layout conflict resolved with latest server version."
		c.notice(NoticeWarning, "Layout conflict resolved with server state")
	}
	c.publishDone()
}

// rollback restores the visible layout after a failed publish. The version
// is left untouched; a failed publish never retries automatically; the next
// edit or the next reconnect-triggered resync is the implicit retry path.
func (c *Core) rollback(task publishTask, err error) {
	c.logger.Warn("layout publish failed",
		"session_id", c.sessionID,
		"error", err)
	c.state.Rollback(task.prev)
	c.syncError = err.Error()
	c.notice(NoticeError, "Layout sync failed")
}

func (c *Core) publishDone() {
	c.inFlight = false
	c.emitStatus()
	c.maybePublish()
}
