package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is the normalized failure of an upstream call. Status is zero when
// no response was received.
type APIError struct {
	Status  int             `json:"status,omitempty"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Err     error           `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	status := StatusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// errorFromResponse builds the APIError for a non-2xx reply. The errors
// field is kept as sent, whatever its shape.
func errorFromResponse(status int, body []byte) *APIError {
	var payload map[string]json.RawMessage
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		var msg string
		if json.Unmarshal(payload["message"], &msg) != nil || msg == "" {
			msg = "An error occurred"
		}
		return &APIError{
			Status:  status,
			Message: msg,
			Errors:  nullToNil(payload["errors"]),
			Data:    nullToNil(payload["data"]),
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return &APIError{Status: status, Message: "Unauthorized access"}
	case http.StatusForbidden:
		return &APIError{Status: status, Message: "Access forbidden"}
	default:
		return &APIError{Status: status, Message: fmt.Sprintf("Request failed with status code %d", status)}
	}
}

func transportError(err error) *APIError {
	msg := err.Error()
	if msg == "" {
		msg = "An unexpected error occurred"
	}
	return &APIError{Message: msg, Err: err}
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
