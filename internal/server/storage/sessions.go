// Package storage defines the server-side persistence interfaces and their
// row types. The sqlite subpackage is the production implementation.
package storage

import (
	"context"
	"time"
)

// Session is one stored session row. Status holds the authority vocabulary
// (DRAFT, ACTIVE, PAUSED, ENDED).
type Session struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	Title      string
	Status     string
	Visibility string
	CreatedBy  string
}

// LayoutVersion is one row of a session's append-only layout log. Layout is
// the JSON-encoded panel arrangement.
type LayoutVersion struct {
	UpdatedAt time.Time
	SessionID string
	UpdatedBy string
	Layout    []byte
	Version   int64
}

// Participant is one session membership row.
type Participant struct {
	JoinedAt  time.Time
	SessionID string
	UserID    string
	Role      string
}

// SessionStorage persists session lifecycle state.
type SessionStorage interface {
	// CreateSession inserts a new session and seeds its layout log at
	// version zero.
	CreateSession(ctx context.Context, session *Session, seedLayout []byte) error

	// GetSession returns a session by ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// ListSessions returns up to limit sessions newest-first, starting after
	// the opaque cursor. An empty cursor starts from the newest session. The
	// returned cursor is empty when no further page exists.
	// Returns ErrInvalidCursor if the cursor cannot be decoded.
	ListSessions(ctx context.Context, limit int, cursor string) ([]*Session, string, error)

	// UpdateSessionStatus moves a session to a new lifecycle status.
	// Returns ErrSessionNotFound if the session does not exist.
	UpdateSessionStatus(ctx context.Context, sessionID, status string) error
}

// LayoutStorage persists the versioned layout log.
type LayoutStorage interface {
	// GetLayout returns the latest layout version of a session.
	// Returns ErrSessionNotFound if the session does not exist.
	GetLayout(ctx context.Context, sessionID string) (*LayoutVersion, error)

	// AppendLayout appends a new layout version if baseVersion matches the
	// current head. Returns ErrVersionConflict when baseVersion is stale and
	// ErrSessionNotFound when the session does not exist.
	AppendLayout(ctx context.Context, sessionID string, baseVersion int64, layout []byte, updatedBy string) (*LayoutVersion, error)
}

// ParticipantStorage persists session membership.
type ParticipantStorage interface {
	// UpsertParticipant registers or refreshes a participant.
	// Returns ErrSessionNotFound if the session does not exist.
	UpsertParticipant(ctx context.Context, participant *Participant) error

	// RemoveParticipant deletes a membership row. Removing a participant
	// that never joined is not an error.
	RemoveParticipant(ctx context.Context, sessionID, userID string) error

	// CountParticipants returns the number of registered participants.
	CountParticipants(ctx context.Context, sessionID string) (int, error)
}
