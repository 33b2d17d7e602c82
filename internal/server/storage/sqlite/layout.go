package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medigrid/layoutsync/internal/server/storage"
)

// GetLayout returns the head of a session's layout log
func (s *Storage) GetLayout(ctx context.Context, sessionID string) (*storage.LayoutVersion, error) {
	query := `
		SELECT session_id, version, layout, updated_by, updated_at
		FROM session_layouts
		WHERE session_id = ?
		ORDER BY version DESC
		LIMIT 1
	`

	lv := &storage.LayoutVersion{}
	var layout string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&lv.SessionID,
		&lv.Version,
		&layout,
		&lv.UpdatedBy,
		&lv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A session always has a version-0 row, so no rows means no session.
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}

	lv.Layout = []byte(layout)
	return lv, nil
}

// AppendLayout appends the next layout version when baseVersion matches the
// current head. The check and the insert run in one transaction; with the
// single-connection pool this serializes concurrent writers.
func (s *Storage) AppendLayout(ctx context.Context, sessionID string, baseVersion int64, layout []byte, updatedBy string) (*storage.LayoutVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var head int64
	err = tx.QueryRowContext(ctx, `
		SELECT version FROM session_layouts
		WHERE session_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, sessionID).Scan(&head)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read layout head: %w", err)
	}

	if head != baseVersion {
		return nil, storage.ErrVersionConflict
	}

	lv := &storage.LayoutVersion{
		SessionID: sessionID,
		Version:   head + 1,
		Layout:    layout,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_layouts (session_id, version, layout, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		lv.SessionID,
		lv.Version,
		string(lv.Layout),
		lv.UpdatedBy,
		lv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert layout version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit layout version: %w", err)
	}
	return lv, nil
}
