package sync

import "errors"

var (
	// ErrReadOnly indicates the local role cannot edit the layout.
	ErrReadOnly = errors.New("read-only role cannot edit layout")

	// ErrNoActiveSession indicates no session is currently activated.
	ErrNoActiveSession = errors.New("no active session")
)
