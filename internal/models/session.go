package models

import "strings"

// SessionStatus is the closed client-side status vocabulary. Backends speak
// several dialects (DRAFT/ACTIVE/ENDED, LIVE, COMPLETED); NormalizeStatus
// folds them into this set.
type SessionStatus string

const (
	StatusIdle    SessionStatus = "idle"
	StatusRunning SessionStatus = "running"
	StatusPaused  SessionStatus = "paused"
	StatusStopped SessionStatus = "stopped"
)

// NormalizeStatus maps a backend status string onto the closed vocabulary.
// Unknown values are lowercased and passed through rather than rejected, to
// stay forward-compatible with statuses this client has never seen.
func NormalizeStatus(raw string) SessionStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LIVE", "ACTIVE", "RUNNING":
		return StatusRunning
	case "PAUSED":
		return StatusPaused
	case "ENDED", "STOPPED", "COMPLETED":
		return StatusStopped
	case "DRAFT", "IDLE", "CREATED", "":
		return StatusIdle
	default:
		return SessionStatus(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// SessionRecord is the client's view of one session.
type SessionRecord struct {
	ID               string
	Title            string
	Status           SessionStatus
	ParticipantCount int
}

// Role is the local participant's capability.
type Role string

const (
	RoleSurgeon Role = "surgeon"
	RoleAdmin   Role = "admin"
	RoleViewer  Role = "viewer"
)

// CanEditLayout reports whether the role may publish layout changes and
// control the session lifecycle.
func (r Role) CanEditLayout() bool {
	return r != RoleViewer
}

// Wire returns the backend form of the role. The authority calls the
// read-only role OBSERVER.
func (r Role) Wire() string {
	if r == RoleViewer {
		return "OBSERVER"
	}
	return strings.ToUpper(string(r))
}

// ParseRole maps a role string in either local or wire form onto a Role.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "surgeon":
		return RoleSurgeon, true
	case "admin":
		return RoleAdmin, true
	case "viewer", "observer":
		return RoleViewer, true
	default:
		return "", false
	}
}

// ConnectionState describes the push channel's health.
type ConnectionState string

const (
	ConnOffline      ConnectionState = "offline"
	ConnConnecting   ConnectionState = "connecting"
	ConnConnected    ConnectionState = "connected"
	ConnReconnecting ConnectionState = "reconnecting"
	ConnDisconnected ConnectionState = "disconnected"
)
