package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

var errSessionMissing = errors.New("session doc missing")

// Adapter serves sessions out of a local bbolt document store. It implements
// both the channel and lifecycle surfaces, so a client configured with the
// docstore backend needs no server at all.
type Adapter struct {
	store  *Store
	hub    *hub
	logger *slog.Logger

	mu      sync.Mutex
	handles map[string]*handle
}

var (
	_ transport.Adapter   = (*Adapter)(nil)
	_ transport.Authority = (*Adapter)(nil)
)

// NewAdapter builds an adapter over an open store.
func NewAdapter(store *Store, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:   store,
		hub:     newHub(),
		logger:  logger,
		handles: make(map[string]*handle),
	}
}

// CreateSession writes a draft session document and seeds its layout document
// at version zero.
func (a *Adapter) CreateSession(_ context.Context, title string) (api.SessionItem, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	doc := sessionDoc{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    "DRAFT",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.putSession(doc); err != nil {
		return api.SessionItem{}, fmt.Errorf("failed to create session: %w", err)
	}
	if err := a.store.putLayout(doc.ID, layoutDoc{Version: 0, Layout: models.DefaultLayout(), UpdatedAt: now}); err != nil {
		return api.SessionItem{}, fmt.Errorf("failed to seed layout: %w", err)
	}
	a.logger.Info("session created", "session_id", doc.ID, "title", title)
	return itemFromDoc(doc), nil
}

// ListSessions returns all stored sessions, newest first.
func (a *Adapter) ListSessions(_ context.Context) ([]api.SessionItem, error) {
	docs, err := a.store.listSessions()
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt > docs[j].CreatedAt })
	items := make([]api.SessionItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, itemFromDoc(doc))
	}
	return items, nil
}

// StartSession moves a session to ACTIVE.
func (a *Adapter) StartSession(ctx context.Context, sessionID string) error {
	return a.setStatus(ctx, sessionID, "ACTIVE")
}

// PauseSession moves a session to PAUSED.
func (a *Adapter) PauseSession(ctx context.Context, sessionID string) error {
	return a.setStatus(ctx, sessionID, "PAUSED")
}

// EndSession moves a session to ENDED.
func (a *Adapter) EndSession(ctx context.Context, sessionID string) error {
	return a.setStatus(ctx, sessionID, "ENDED")
}

func (a *Adapter) setStatus(_ context.Context, sessionID, status string) error {
	doc, err := a.store.getSession(sessionID)
	if err != nil {
		if errors.Is(err, errSessionMissing) {
			return transport.ErrNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := a.store.putSession(doc); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// JoinSession registers the participant and opens a local channel. The
// returned handle's Done channel closes only on Close; a local store has no
// transport failure mode.
func (a *Adapter) JoinSession(_ context.Context, sessionID string, identity transport.Identity) (transport.Handle, error) {
	if _, err := a.store.getSession(sessionID); err != nil {
		if errors.Is(err, errSessionMissing) {
			return nil, transport.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	// Close any prior channel before registering, so a rejoin by the same
	// user does not have its fresh registration removed by the old handle's
	// leave.
	a.mu.Lock()
	prev := a.handles[sessionID]
	delete(a.handles, sessionID)
	a.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}

	doc := participantDoc{
		Role:     identity.Role.Wire(),
		JoinedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.store.putParticipant(sessionID, identity.UserID, doc); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	h := &handle{sessionID: sessionID, done: make(chan struct{})}
	h.onClose = func() {
		a.leave(sessionID, identity.UserID)
	}

	a.mu.Lock()
	a.handles[sessionID] = h
	a.mu.Unlock()

	a.broadcastPresence(sessionID)
	a.logger.Info("session joined", "session_id", sessionID, "user_id", identity.UserID)
	return h, nil
}

func (a *Adapter) leave(sessionID, userID string) {
	if err := a.store.deleteParticipant(sessionID, userID); err != nil {
		a.logger.Warn("failed to remove participant", "session_id", sessionID, "error", err)
		return
	}
	a.broadcastPresence(sessionID)
}

// FetchSnapshot reads the current layout document.
func (a *Adapter) FetchSnapshot(_ context.Context, sessionID string) (transport.Snapshot, error) {
	if _, err := a.store.getSession(sessionID); err != nil {
		if errors.Is(err, errSessionMissing) {
			return transport.Snapshot{}, transport.ErrNotFound
		}
		return transport.Snapshot{}, fmt.Errorf("failed to load session: %w", err)
	}
	doc, err := a.store.getLayout(sessionID)
	if err != nil {
		return transport.Snapshot{}, err
	}
	return transport.Snapshot{Layout: doc.Layout, Version: doc.Version}, nil
}

// SubscribeUpdates attaches callbacks to the session's local channel and
// immediately delivers the current presence count, matching snapshot-style
// subscription semantics.
func (a *Adapter) SubscribeUpdates(sessionID string, onUpdate transport.UpdateFunc, onPresence transport.PresenceFunc) (transport.Unsubscribe, error) {
	a.mu.Lock()
	h := a.handles[sessionID]
	a.mu.Unlock()
	if h == nil {
		return nil, fmt.Errorf("no open channel for session %s", sessionID)
	}
	unsub := a.hub.subscribe(sessionID, &subscriber{onUpdate: onUpdate, onPresence: onPresence})
	if onPresence != nil {
		if count, err := a.store.countParticipants(sessionID); err == nil {
			onPresence(count)
		}
	}
	return transport.Unsubscribe(unsub), nil
}

// Publish writes the layout document last-writer-wins. There is no version
// precondition: the write always lands with version baseVersion+1, so it
// never returns ErrVersionConflict.
func (a *Adapter) Publish(_ context.Context, sessionID string, baseVersion int64, layout api.Layout) (int64, error) {
	if _, err := a.store.getSession(sessionID); err != nil {
		if errors.Is(err, errSessionMissing) {
			return 0, transport.ErrNotFound
		}
		return 0, fmt.Errorf("failed to load session: %w", err)
	}
	doc := layoutDoc{
		Layout:    layout,
		Version:   baseVersion + 1,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.store.putLayout(sessionID, doc); err != nil {
		return 0, fmt.Errorf("failed to publish layout: %w", err)
	}
	a.hub.notifyLayout(sessionID, transport.Snapshot{Layout: doc.Layout, Version: doc.Version}, transport.UpdateRemote)
	return doc.Version, nil
}

func (a *Adapter) broadcastPresence(sessionID string) {
	count, err := a.store.countParticipants(sessionID)
	if err != nil {
		a.logger.Warn("failed to count participants", "session_id", sessionID, "error", err)
		return
	}
	a.hub.notifyPresence(sessionID, count)
}

func itemFromDoc(doc sessionDoc) api.SessionItem {
	return api.SessionItem{
		ID:        doc.ID,
		Title:     doc.Title,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// handle is a local channel. Done closes only when Close is called.
type handle struct {
	sessionID string
	done      chan struct{}
	onClose   func()
	closeOnce sync.Once
}

func (h *handle) SessionID() string { return h.sessionID }

func (h *handle) Done() <-chan struct{} { return h.done }

func (h *handle) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		if h.onClose != nil {
			h.onClose()
		}
	})
	return nil
}
