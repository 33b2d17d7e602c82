package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/session"
	"github.com/medigrid/layoutsync/internal/client/sync"
	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

// capturingIO collects everything a command prints.
func capturingIO(out *strings.Builder) *iocli.IOMock {
	return &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			fmt.Fprintln(out, a...)
		},
		PrintfFunc: func(format string, a ...any) {
			fmt.Fprintf(out, format, a...)
		},
		ReadInputFunc: func(string) (string, error) {
			return "quit", nil
		},
		WriteFunc: func(p []byte) (int, error) {
			return out.WriteString(string(p))
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

type noopActivator struct{}

func (noopActivator) Activate(string) {}
func (noopActivator) Deactivate()     {}

func TestRunCreate(t *testing.T) {
	authority := &transport.AuthorityMock{
		CreateSessionFunc: func(_ context.Context, title string) (api.SessionItem, error) {
			return api.SessionItem{ID: "s1", Title: title, Status: "DRAFT"}, nil
		},
	}
	control := session.NewController(authority, noopActivator{}, models.RoleSurgeon, testLogger())

	var out strings.Builder
	err := RunCreate(context.Background(), []string{"OR", "3", "afternoon"}, capturingIO(&out), control)
	require.NoError(t, err)

	// Multi-word titles are joined before validation.
	require.Len(t, authority.CreateSessionCalls(), 1)
	assert.Equal(t, "OR 3 afternoon", authority.CreateSessionCalls()[0].Title)
	assert.Contains(t, out.String(), "Created session s1")
}

func TestRunCreateRequiresTitle(t *testing.T) {
	var out strings.Builder
	err := RunCreate(context.Background(), nil, capturingIO(&out), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing title")
}

func TestRunList(t *testing.T) {
	authority := &transport.AuthorityMock{
		ListSessionsFunc: func(context.Context) ([]api.SessionItem, error) {
			return []api.SessionItem{
				{ID: "s1", Title: "Morning case", Status: "ACTIVE"},
				{ID: "s2", Title: "Afternoon case", Status: "DRAFT"},
			}, nil
		},
	}
	control := session.NewController(authority, noopActivator{}, models.RoleViewer, testLogger())

	var out strings.Builder
	require.NoError(t, RunList(context.Background(), capturingIO(&out), control))

	assert.Contains(t, out.String(), "Found 2 session(s)")
	assert.Contains(t, out.String(), "Morning case")
	assert.Contains(t, out.String(), "running")
}

func TestRunListEmpty(t *testing.T) {
	authority := &transport.AuthorityMock{
		ListSessionsFunc: func(context.Context) ([]api.SessionItem, error) { return nil, nil },
	}
	control := session.NewController(authority, noopActivator{}, models.RoleViewer, testLogger())

	var out strings.Builder
	require.NoError(t, RunList(context.Background(), capturingIO(&out), control))
	assert.Contains(t, out.String(), "No sessions found")
}

func TestLifecycleCommands(t *testing.T) {
	authority := &transport.AuthorityMock{
		StartSessionFunc: func(context.Context, string) error { return nil },
		PauseSessionFunc: func(context.Context, string) error { return nil },
		EndSessionFunc:   func(context.Context, string) error { return nil },
	}

	var out strings.Builder
	io := capturingIO(&out)
	ctx := context.Background()

	require.NoError(t, RunStart(ctx, []string{"s1"}, io, authority))
	require.NoError(t, RunPause(ctx, []string{"s1"}, io, authority))
	require.NoError(t, RunStop(ctx, []string{"s1"}, io, authority))

	assert.Contains(t, out.String(), "Session s1 started")
	assert.Contains(t, out.String(), "Session s1 paused")
	assert.Contains(t, out.String(), "Session s1 stopped")

	require.Error(t, RunStart(ctx, nil, io, authority))
}

func connectedCore(t *testing.T, role models.Role) *sync.Core {
	t.Helper()
	adapter := &transport.AdapterMock{
		JoinSessionFunc: func(_ context.Context, sessionID string, _ transport.Identity) (transport.Handle, error) {
			return nopHandle{sessionID: sessionID, done: make(chan struct{})}, nil
		},
		FetchSnapshotFunc: func(context.Context, string) (transport.Snapshot, error) {
			return transport.Snapshot{Layout: models.DefaultLayout(), Version: 0}, nil
		},
		SubscribeUpdatesFunc: func(string, transport.UpdateFunc, transport.PresenceFunc) (transport.Unsubscribe, error) {
			return func() {}, nil
		},
		PublishFunc: func(_ context.Context, _ string, baseVersion int64, _ api.Layout) (int64, error) {
			return baseVersion + 1, nil
		},
	}
	core := sync.NewCore(adapter, transport.Identity{UserID: "u1", Role: role}, sync.Options{Logger: testLogger()})
	t.Cleanup(core.Close)
	core.Activate("s1")
	require.Eventually(t, func() bool {
		return core.Status().Connection == models.ConnConnected
	}, 2*time.Second, 5*time.Millisecond)
	return core
}

type nopHandle struct {
	sessionID string
	done      chan struct{}
}

func (h nopHandle) SessionID() string     { return h.sessionID }
func (h nopHandle) Done() <-chan struct{} { return h.done }
func (h nopHandle) Close() error          { return nil }

func TestConsolePlaceAndClear(t *testing.T) {
	core := connectedCore(t, models.RoleSurgeon)
	var out strings.Builder
	io := capturingIO(&out)

	require.NoError(t, runConsoleCommand(io, core, "place", []string{"0", "endoscope.mp4"}))
	require.Eventually(t, func() bool {
		return core.Status().Version == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "endoscope.mp4", core.Status().Grid[0])

	require.NoError(t, runConsoleCommand(io, core, "clear", []string{"0"}))
	assert.Equal(t, "", core.Status().Grid[0])

	assert.Contains(t, out.String(), "[0] endoscope.mp4")
}

func TestConsolePreset(t *testing.T) {
	core := connectedCore(t, models.RoleSurgeon)
	var out strings.Builder
	io := capturingIO(&out)

	require.NoError(t, runConsoleCommand(io, core, "preset", []string{"teaching"}))
	require.Eventually(t, func() bool {
		return core.Status().Version == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, models.Grid{"endoscope.mp4", "vital_signs.mp4", "ptz.mp4", ""}, core.Status().Grid)
	assert.Contains(t, out.String(), "Layout preset applied: teaching")

	require.Error(t, runConsoleCommand(io, core, "preset", []string{"mosaic"}))
	require.Error(t, runConsoleCommand(io, core, "preset", nil))

	viewer := connectedCore(t, models.RoleViewer)
	require.Error(t, runConsoleCommand(io, viewer, "preset", []string{"quad"}))
}

func TestConsoleRejectsBadInput(t *testing.T) {
	core := connectedCore(t, models.RoleSurgeon)
	var out strings.Builder
	io := capturingIO(&out)

	require.Error(t, runConsoleCommand(io, core, "place", []string{"9", "x"}))
	require.Error(t, runConsoleCommand(io, core, "place", []string{"0", "../bad"}))
	require.Error(t, runConsoleCommand(io, core, "swap", []string{"0"}))
	require.Error(t, runConsoleCommand(io, core, "teleport", nil))
}

func TestConsoleViewerFollow(t *testing.T) {
	core := connectedCore(t, models.RoleViewer)
	var out strings.Builder
	io := capturingIO(&out)

	require.Error(t, runConsoleCommand(io, core, "place", []string{"0", "x"}))

	require.NoError(t, runConsoleCommand(io, core, "follow", []string{"off"}))
	assert.False(t, core.Status().FollowPresenter)

	require.NoError(t, runConsoleCommand(io, core, "follow", []string{"on"}))
	assert.True(t, core.Status().FollowPresenter)

	require.Error(t, runConsoleCommand(io, core, "follow", []string{"maybe"}))
}

func TestPrinterNoticePrefixes(t *testing.T) {
	var out strings.Builder
	p := NewPrinter(capturingIO(&out))

	p.Notice(sync.Notice{Kind: sync.NoticeSuccess, Message: "Realtime reconnected"})
	p.Notice(sync.Notice{Kind: sync.NoticeError, Message: "Layout sync failed"})

	assert.Contains(t, out.String(), "[ok] Realtime reconnected")
	assert.Contains(t, out.String(), "[err] Layout sync failed")
}

func TestPrinterStatusOnlyOnTransition(t *testing.T) {
	var out strings.Builder
	p := NewPrinter(capturingIO(&out))

	st := sync.Status{Connection: models.ConnConnected}
	p.Status(st)
	p.Status(st)
	p.Status(sync.Status{Connection: models.ConnReconnecting})

	assert.Equal(t, 1, strings.Count(out.String(), "connection: connected"))
	assert.Equal(t, 1, strings.Count(out.String(), "connection: reconnecting"))
}
