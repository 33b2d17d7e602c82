package api

// SessionItem represents one session as returned by the authority.
// Status is the backend's raw vocabulary (uppercase); clients normalize it.
type SessionItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Visibility string `json:"visibility,omitempty"`
	CreatedBy  string `json:"createdBy,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// CreateSessionRequest creates a new draft session.
type CreateSessionRequest struct {
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
}

// ListSessionsResponse is a cursor-paginated session listing.
type ListSessionsResponse struct {
	Items      []SessionItem `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// RealtimeInfo tells a joining participant where to open the push channel.
// Token is a short-lived credential scoped to a single session.
type RealtimeInfo struct {
	WSURL string `json:"wsUrl"`
	Token string `json:"token"`
}

// JoinSessionResponse is returned by POST /v1/sessions/{id}/participants:join.
type JoinSessionResponse struct {
	SessionID string       `json:"sessionId"`
	Role      string       `json:"role"`
	Realtime  RealtimeInfo `json:"realtime"`
}
