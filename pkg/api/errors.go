package api

// Error codes returned in the error envelope.
const (
	CodeLayoutVersionConflict = "LAYOUT_VERSION_CONFLICT"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeInvalidCursor         = "INVALID_CURSOR"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeInvalidWSToken        = "INVALID_WS_TOKEN"
	CodeRateLimited           = "RATE_LIMITED"
)

// ErrorBody is the inner error object of the envelope.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse is the envelope every non-2xx response carries.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
