package api

// Panel is one slot of the shared layout. StreamID is nil for an empty slot.
type Panel struct {
	StreamID *string `json:"streamId"`
	ID       string  `json:"id"`
}

// Layout is the shared arrangement of video sources across the display grid.
type Layout struct {
	Panels []Panel `json:"panels"`
}

// LayoutResponse is the authoritative layout snapshot returned by
// GET /v1/sessions/{id}/layout.
type LayoutResponse struct {
	Layout  Layout `json:"layout"`
	Version int64  `json:"version"`
}

// PublishLayoutRequest is an optimistic layout write. BaseVersion must equal
// the authority's current version or the write is rejected with
// LAYOUT_VERSION_CONFLICT.
type PublishLayoutRequest struct {
	Layout      Layout `json:"layout"`
	BaseVersion int64  `json:"baseVersion"`
}

// PublishLayoutResponse carries the version assigned to an accepted write.
type PublishLayoutResponse struct {
	Version int64 `json:"version"`
}
