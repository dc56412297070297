// Package push turns a server-to-client notification channel into notes-changed signals.
//
// A Source yields Signals from one transport (the API's socket.io channel, gocloud pubsub, SQS or
// Redis). A Hub reads one
// Source and fans each Signal out to every subscriber, which re-fetches its notes list. Signals
// carry no diff.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// DefaultEvent is the event name the remote API emits when notes change.
const DefaultEvent = "noteUpdated"

// Signal tells subscribers the notes data changed.
type Signal struct {
	Event string
	At    time.Time
}

// Source yields signals until its context ends or it is closed.
type Source interface {
	Next(ctx context.Context) (Signal, error)
	Close(ctx context.Context) error
}

// Matches reports whether a raw message names event. Accepted shapes: an empty body, the bare
// event name, {"event": name} (or "type"/"name"), and a socket.io style ["name", ...] frame.
// An "event" metadata attribute, when present, decides on its own.
func Matches(event string, body []byte, metadata map[string]string) bool {
	if name, ok := metadata["event"]; ok {
		return name == event
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == event {
		return true
	}
	switch body[0] {
	case '{':
		var env struct {
			Event string `json:"event"`
			Type  string `json:"type"`
			Name  string `json:"name"`
		}
		if json.Unmarshal(body, &env) != nil {
			return false
		}
		return env.Event == event || env.Type == event || env.Name == event
	case '[':
		var frame []json.RawMessage
		if json.Unmarshal(body, &frame) != nil || len(frame) == 0 {
			return false
		}
		var name string
		return json.Unmarshal(frame[0], &name) == nil && name == event
	case '"':
		var name string
		return json.Unmarshal(body, &name) == nil && name == event
	}
	return false
}
