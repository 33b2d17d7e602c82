package sync

// NoticeKind classifies a user-visible notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, auto-dismissing notification for the UI layer.
// Persistent connectivity state is carried by Status.Connection instead.
type Notice struct {
	Kind    NoticeKind
	Message string
}
