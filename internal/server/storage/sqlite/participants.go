package sqlite

import (
	"context"
	"fmt"

	"github.com/medigrid/layoutsync/internal/server/storage"
)

// UpsertParticipant registers or refreshes a session membership row
func (s *Storage) UpsertParticipant(ctx context.Context, participant *storage.Participant) error {
	if _, err := s.GetSession(ctx, participant.SessionID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_participants (session_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, user_id) DO UPDATE SET role = excluded.role, joined_at = excluded.joined_at
	`,
		participant.SessionID,
		participant.UserID,
		participant.Role,
		participant.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// RemoveParticipant deletes a membership row
func (s *Storage) RemoveParticipant(ctx context.Context, sessionID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM session_participants WHERE session_id = ? AND user_id = ?
	`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

// CountParticipants returns the number of registered participants
func (s *Storage) CountParticipants(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM session_participants WHERE session_id = ?
	`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}
