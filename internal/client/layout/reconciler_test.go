package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigrid/layoutsync/internal/models"
)

func TestApplyLocalRecordsHistory(t *testing.T) {
	s := NewState()

	prev, next, changed := s.ApplyLocal(func(g models.Grid) models.Grid {
		return g.Assign(0, "endoscope.mp4")
	})
	require.True(t, changed)
	assert.Equal(t, "", prev[0])
	assert.Equal(t, "endoscope.mp4", next[0])
	assert.True(t, s.CanUndo())
	assert.Equal(t, "endoscope.mp4", s.Grid()[0])

	// The version only moves on confirmation, never on a local edit.
	assert.Equal(t, int64(0), s.Version())
}

func TestApplyLocalIdenticalGridIsNoop(t *testing.T) {
	s := NewState()

	_, _, changed := s.ApplyLocal(func(g models.Grid) models.Grid {
		return g.Clear(2)
	})
	assert.False(t, changed)
	assert.False(t, s.CanUndo())
}

func TestUndoPopsWithoutRepush(t *testing.T) {
	s := NewState()
	s.ApplyLocal(func(g models.Grid) models.Grid { return g.Assign(0, "a") })
	s.ApplyLocal(func(g models.Grid) models.Grid { return g.Assign(1, "b") })

	prev, next, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, "b", prev[1])
	assert.Equal(t, "", next[1])
	assert.Equal(t, "a", next[0])

	_, _, ok = s.Undo()
	require.True(t, ok)
	assert.False(t, s.CanUndo())

	_, _, ok = s.Undo()
	assert.False(t, ok)
}

func TestHistoryIsBounded(t *testing.T) {
	s := NewState()
	for i := 0; i < HistoryLimit+5; i++ {
		src := fmt.Sprintf("src-%d", i)
		s.ApplyLocal(func(g models.Grid) models.Grid { return g.Assign(0, src) })
	}

	undone := 0
	for {
		if _, _, ok := s.Undo(); !ok {
			break
		}
		undone++
	}
	assert.Equal(t, HistoryLimit, undone)
}

func TestApplyRemoteClearsHistory(t *testing.T) {
	s := NewState()
	s.ApplyLocal(func(g models.Grid) models.Grid { return g.Assign(0, "local") })
	require.True(t, s.CanUndo())

	remote := models.EmptyGrid().Assign(1, "remote")
	s.ApplyRemote(7, remote.ToLayout())

	assert.Equal(t, int64(7), s.Version())
	assert.Equal(t, "remote", s.Grid()[1])
	assert.Equal(t, "", s.Grid()[0])
	assert.False(t, s.CanUndo())
}

func TestConfirmAndRollback(t *testing.T) {
	s := NewState()
	prev, _, changed := s.ApplyLocal(func(g models.Grid) models.Grid { return g.Assign(0, "x") })
	require.True(t, changed)

	s.ConfirmVersion(3)
	assert.Equal(t, int64(3), s.Version())

	// Rollback restores the grid but leaves version and history alone.
	s.Rollback(prev)
	assert.Equal(t, "", s.Grid()[0])
	assert.Equal(t, int64(3), s.Version())
	assert.True(t, s.CanUndo())
}
