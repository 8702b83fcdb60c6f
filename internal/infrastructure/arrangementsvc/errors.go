package arrangementsvc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the arrangement API.
type APIError struct {
	Method string
	Path   string
	Status int
	// Message is the user facing text the server sent, if any.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *APIError) StatusCode() int { return e.Status }

func (e *APIError) UserMessage() string { return e.Message }

// NeedsToAuthenticate reports whether a status asks the user to sign in.
func NeedsToAuthenticate(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

const maxMessageLength = 500

// userMessage extracts a message from an error body. The API answers
// either {"userMessage": "..."} or plain text.
func userMessage(contentType string, body []byte) string {
	if strings.HasPrefix(contentType, "application/json") {
		var payload struct {
			UserMessage string `json:"userMessage"`
			Message     string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.UserMessage != "" {
				return payload.UserMessage
			}
			return payload.Message
		}
		return ""
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLength || strings.HasPrefix(msg, "<") {
		return ""
	}
	return msg
}
