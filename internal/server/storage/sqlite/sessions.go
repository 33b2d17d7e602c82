package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medigrid/layoutsync/internal/server/storage"
)

// CreateSession inserts a new session and seeds the layout log at version 0
// in one transaction.
func (s *Storage) CreateSession(ctx context.Context, session *storage.Session, seedLayout []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, status, visibility, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.Title,
		session.Status,
		session.Visibility,
		session.CreatedBy,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_layouts (session_id, version, layout, updated_by, updated_at)
		VALUES (?, 0, ?, ?, ?)
	`,
		session.ID,
		string(seedLayout),
		session.CreatedBy,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to seed layout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (s *Storage) GetSession(ctx context.Context, sessionID string) (*storage.Session, error) {
	query := `
		SELECT id, title, status, visibility, created_by, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	session := &storage.Session{}
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.Title,
		&session.Status,
		&session.Visibility,
		&session.CreatedBy,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// ListSessions returns sessions newest-first with keyset pagination. The
// cursor encodes the (created_at, id) pair of the last row of the previous
// page.
func (s *Storage) ListSessions(ctx context.Context, limit int, cursor string) ([]*storage.Session, string, error) {
	query := `
		SELECT id, title, status, visibility, created_by, created_at, updated_at
		FROM sessions
	`
	args := []any{}

	if cursor != "" {
		afterTime, afterID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		query += ` WHERE (created_at < ?) OR (created_at = ? AND id < ?)`
		args = append(args, afterTime, afterTime, afterID)
	}

	// Fetch one extra row to know whether a next page exists.
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*storage.Session
	for rows.Next() {
		session := &storage.Session{}
		if err := rows.Scan(
			&session.ID,
			&session.Title,
			&session.Status,
			&session.Visibility,
			&session.CreatedBy,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, "", fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate sessions: %w", err)
	}

	nextCursor := ""
	if len(sessions) > limit {
		sessions = sessions[:limit]
		last := sessions[len(sessions)-1]
		nextCursor = encodeCursor(last.CreatedAt, last.ID)
	}

	return sessions, nextCursor, nil
}

// UpdateSessionStatus moves a session to a new lifecycle status
func (s *Storage) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrSessionNotFound
	}
	return nil
}

func encodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", storage.ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", storage.ErrInvalidCursor
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", storage.ErrInvalidCursor
	}
	return ts, parts[1], nil
}
