package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// APIError is the body of every non-2xx response. Clients show Message.
// swagger:model APIError
type APIError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMessage is the {success, message} body of writes that return no resource.
// swagger:model APIMessage
type APIMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode and
// encodes data as the whole body.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONMessage writes a successful {success: true, message} body.
func WriteJSONMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, APIMessage{Success: true, Message: message})
}

// WriteJSONError writes {success: false, code, message} with statusCode.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, APIError{Success: false, Code: code, Message: message})
}
