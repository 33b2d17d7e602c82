package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/models"
)

func snapAt(version int64, slot int, source string) transport.Snapshot {
	return transport.Snapshot{
		Layout:  models.EmptyGrid().Assign(slot, source).ToLayout(),
		Version: version,
	}
}

func TestGateFollowsByDefault(t *testing.T) {
	g := newPresenterGate()
	assert.True(t, g.Following())
	assert.True(t, g.Offer(snapAt(1, 0, "a")))
	assert.False(t, g.HasPending())
}

func TestGateBuffersLatestOnly(t *testing.T) {
	g := newPresenterGate()
	g.SetFollow(false)

	assert.False(t, g.Offer(snapAt(3, 0, "a")))
	assert.False(t, g.Offer(snapAt(4, 1, "b")))
	assert.True(t, g.HasPending())

	// Only the newest buffered update survives.
	pending := g.TakePending()
	require.NotNil(t, pending)
	assert.Equal(t, int64(4), pending.Version)
	assert.False(t, g.HasPending())
}

func TestGateSetFollowReturnsPending(t *testing.T) {
	g := newPresenterGate()
	g.SetFollow(false)
	g.Offer(snapAt(5, 0, "a"))

	pending := g.SetFollow(true)
	require.NotNil(t, pending)
	assert.Equal(t, int64(5), pending.Version)
	assert.True(t, g.Following())
	assert.False(t, g.HasPending())
}

func TestGateDropStale(t *testing.T) {
	g := newPresenterGate()
	g.SetFollow(false)
	g.Offer(snapAt(3, 0, "a"))

	// A snapshot at or above the buffered version supersedes it.
	g.DropStale(5)
	assert.False(t, g.HasPending())

	// A buffer newer than the snapshot survives.
	g.Offer(snapAt(7, 1, "b"))
	g.DropStale(5)
	require.True(t, g.HasPending())
	assert.Equal(t, int64(7), g.TakePending().Version)
}

func TestGateReset(t *testing.T) {
	g := newPresenterGate()
	g.SetFollow(false)
	g.Offer(snapAt(2, 0, "a"))

	g.Reset()
	assert.True(t, g.Following())
	assert.False(t, g.HasPending())
	assert.Nil(t, g.TakePending())
}
