// Package layout owns the optimistic local view of the shared layout
// document: the current grid, the authority version it was last confirmed
// against, and a bounded undo history.
package layout

import (
	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

// HistoryLimit bounds the undo stack; the oldest entry is dropped beyond it.
const HistoryLimit = 20

// State is the reconciler. It is confined to the sync core's run loop and is
// not safe for concurrent use.
type State struct {
	grid    models.Grid
	history []models.Grid
	version int64
}

// NewState returns a reconciler seeded with an empty grid at version 0.
func NewState() *State {
	return &State{grid: models.EmptyGrid()}
}

// Grid returns a copy of the current grid.
func (s *State) Grid() models.Grid {
	return s.grid.Clone()
}

// Version returns the last confirmed authority version.
func (s *State) Version() int64 {
	return s.version
}

// CanUndo reports whether an undo entry exists.
func (s *State) CanUndo() bool {
	return len(s.history) > 0
}

// ApplyRemote unconditionally overwrites the local state with the
// authority's version and layout. Remote truth always wins: the undo history
// is cleared, there is no client-side merge of remote against local edits.
func (s *State) ApplyRemote(version int64, remote api.Layout) {
	s.version = version
	s.grid = models.GridFromLayout(remote)
	s.history = nil
}

// ApplyLocal computes the next grid from the mutator. When the result
// structurally differs from the current grid, the current grid is pushed
// onto the bounded history and replaced. The version does not move here;
// it only advances on a confirmed publish or a remote update.
//
// Returns the previous and next snapshots so the caller can schedule a
// publish, and whether anything changed. A mutator returning an identical
// grid records no history and must trigger no publish.
func (s *State) ApplyLocal(mutate func(models.Grid) models.Grid) (prev, next models.Grid, changed bool) {
	prev = s.grid.Clone()
	next = mutate(s.grid.Clone())
	if next.Equal(prev) {
		return prev, next, false
	}
	s.pushHistory(prev)
	s.grid = next.Clone()
	return prev, next, true
}

// Undo pops the most recent history entry and makes it the current grid,
// without re-pushing onto history. The popped grid is a local edit from the
// publish path's point of view. No-op when the history is empty.
func (s *State) Undo() (prev, next models.Grid, ok bool) {
	if len(s.history) == 0 {
		return nil, nil, false
	}
	prev = s.grid.Clone()
	next = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.grid = next.Clone()
	return prev, next, true
}

// ConfirmVersion records the version the authority assigned to an accepted
// publish.
func (s *State) ConfirmVersion(version int64) {
	s.version = version
}

// Rollback restores the visible grid after a failed publish. Version and
// history are left untouched.
func (s *State) Rollback(grid models.Grid) {
	s.grid = grid.Clone()
}

func (s *State) pushHistory(grid models.Grid) {
	if len(s.history) >= HistoryLimit {
		s.history = s.history[1:]
	}
	s.history = append(s.history, grid)
}
