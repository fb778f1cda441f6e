package common

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope of the service's own JSON endpoints.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed call.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as the JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// RespondJSON writes data wrapped in an APIResponse.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	_ = WriteJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// RespondError writes an APIResponse carrying an error.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	_ = WriteJSON(w, status, APIResponse{
		Error: &ErrorInfo{Code: code, Message: message},
	})
}

// ExtractRequestID returns the request id from the usual headers or the
// request context.
func ExtractRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Amzn-Trace-Id"); id != "" {
		return id
	}
	if id, ok := GetRequestID(r.Context()); ok {
		return id
	}
	return ""
}
