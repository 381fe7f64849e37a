package core

import (
	"encoding/json"
	"time"

	"github.com/lirancohen/portal/internal/db"
)

// SendMessageRequest is the body of POST /api/v1/runtime/messages.
// Parameter is optional; when absent the runtime receives an empty string.
type SendMessageRequest struct {
	Object    string          `json:"object"`
	Method    string          `json:"method"`
	Parameter json.RawMessage `json:"parameter,omitempty"`
}

// SendMessageResponse reports whether the runtime accepted a message.
type SendMessageResponse struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// RuntimeStatusResponse is the JSON response of GET /api/v1/runtime/status.
type RuntimeStatusResponse struct {
	Loaded bool     `json:"loaded"`
	Global string   `json:"global"`
	Events []string `json:"events"`
}

// AuthStatusResponse is the JSON response of GET /api/v1/auth/status.
type AuthStatusResponse struct {
	LoggedIn bool `json:"loggedIn"`
}

// EventResponse is the JSON response format for recorded runtime events.
type EventResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// ToEventResponse converts a db.RuntimeEvent to EventResponse. The stored
// payload is already JSON and is passed through as-is.
func ToEventResponse(e *db.RuntimeEvent) EventResponse {
	resp := EventResponse{
		ID:        e.ID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.Payload != "" && json.Valid([]byte(e.Payload)) {
		resp.Payload = json.RawMessage(e.Payload)
	}
	return resp
}
