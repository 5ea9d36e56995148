// Package events is the client's live update channel: one lazily opened
// server-sent event stream fanned out to typed subscribers, with a
// heartbeat watchdog and paced delivery of pushed message batches.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/waylis/waycli/internal/chat"
)

// Kind enumerates the event types the server is known to emit. The set
// is closed: frames with any other event name are dropped.
type Kind string

const (
	KindHeartbeat         Kind = "heartbeat"
	KindNewSystemResponse Kind = "newSystemResponse"
)

func parseKind(name string) (Kind, bool) {
	switch Kind(name) {
	case KindHeartbeat, KindNewSystemResponse:
		return Kind(name), true
	default:
		return "", false
	}
}

// Event is a decoded server push. Messages is populated only for
// newSystemResponse.
type Event struct {
	Kind     Kind
	Messages []chat.Message
}

// decodeEvent turns a raw SSE frame into a typed event. A heartbeat
// carries no payload. A newSystemResponse payload is either a single
// message or a batch.
func decodeEvent(kind Kind, data []byte) (Event, error) {
	ev := Event{Kind: kind}
	if kind != KindNewSystemResponse {
		return ev, nil
	}

	var batch []chat.Message
	if err := json.Unmarshal(data, &batch); err == nil {
		ev.Messages = batch
		return ev, nil
	}
	var single chat.Message
	if err := json.Unmarshal(data, &single); err != nil {
		return ev, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	ev.Messages = []chat.Message{single}
	return ev, nil
}
