package storage

import "errors"

// Common storage errors
var (
	// ErrSessionNotFound indicates that the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrVersionConflict indicates that an optimistic layout write carried a
	// stale base version
	ErrVersionConflict = errors.New("layout version conflict")

	// ErrInvalidCursor indicates that a pagination cursor could not be decoded
	ErrInvalidCursor = errors.New("invalid cursor")
)
