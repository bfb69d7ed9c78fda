package sse

import "encoding/json"

// Event types written to the client.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"

	// EventTypeNext carries one stream value.
	EventTypeNext = "next"

	// EventTypeError is sent when the stream fails. It is the last event.
	EventTypeError = "error"

	// EventTypeComplete is sent when the stream completes. It is the last event.
	EventTypeComplete = "complete"

	// EventTypeKeepAlive is used for keep-alive comments.
	EventTypeKeepAlive = "keepalive"
)

// Event is one SSE frame.
type Event struct {
	Type string
	Data json.RawMessage
}

// Terminal reports whether no event can follow e.
func (e Event) Terminal() bool {
	return e.Type == EventTypeError || e.Type == EventTypeComplete
}

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	Stream   string            `json:"stream"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
