package transport

import "errors"

// Transport error taxonomy. Implementations wrap these sentinels so callers
// classify failures with errors.Is regardless of backend.
var (
	// ErrConnectivity indicates the backend is unreachable. Non-fatal;
	// triggers reconnection backoff.
	ErrConnectivity = errors.New("transport unreachable")

	// ErrVersionConflict indicates an optimistic write was rejected because
	// its base version is stale. Resolved by refetch-and-overwrite.
	ErrVersionConflict = errors.New("layout version conflict")

	// ErrNotFound indicates the session no longer exists.
	ErrNotFound = errors.New("session not found")

	// ErrAuth indicates the token or identity was rejected.
	ErrAuth = errors.New("identity rejected")
)
