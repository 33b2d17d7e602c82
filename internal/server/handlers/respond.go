package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medigrid/layoutsync/pkg/api"
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError sends the error envelope. The request ID set by the logging
// middleware is echoed so clients can correlate failures with server logs.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Error: api.ErrorBody{
			Code:      code,
			Message:   message,
			RequestID: GetRequestID(r.Context()),
		},
	})
}
