package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes used in the APIError envelope.
const (
	CodeBadRequest     = "bad_request"
	CodeInvalidQuery   = "invalid_query"
	CodeNotFound       = "not_found"
	CodeAlreadyRunning = "already_running"
	CodeIngestFailed   = "ingest_failed"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal_error"
	CodeMethod         = "method_not_allowed"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
		Details   any    `json:"details,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteErrorDetails(w, r, status, code, message, nil)
}

// WriteErrorDetails is WriteError with a payload the client can act on,
// e.g. validation failures or a partial run result.
func WriteErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.Details = details
	WriteJSON(w, status, e)
}
