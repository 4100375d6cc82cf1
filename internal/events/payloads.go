package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

// PadSnapshot is the state carried by pad events.
type PadSnapshot struct {
	First    string `json:"first"`
	Second   string `json:"second"`
	Operator string `json:"operator"`
	Result   string `json:"result"`
	Display  string `json:"display"`
}

type PadCreatedPayload struct {
	Name string `json:"name,omitempty"`
}

func (PadCreatedPayload) EventType() EventType { return EventPadCreated }

type PadClosedPayload struct {
	Reason string `json:"reason,omitempty"`
}

func (PadClosedPayload) EventType() EventType { return EventPadClosed }

// PadKeyPayload reports one key press and the state it produced.
type PadKeyPayload struct {
	Key   string      `json:"key"`
	State PadSnapshot `json:"state"`
}

func (PadKeyPayload) EventType() EventType { return EventPadKey }

// PadEvaluatedPayload reports a completed computation.
type PadEvaluatedPayload struct {
	Left     string `json:"left"`
	Operator string `json:"operator"`
	Right    string `json:"right"`
	Result   string `json:"result"`
}

func (PadEvaluatedPayload) EventType() EventType { return EventPadEvaluated }

type PadClearedPayload struct{}

func (PadClearedPayload) EventType() EventType { return EventPadCleared }

// NewTypedEvent creates an event from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

// NewPadEvent creates an event from a typed payload scoped to a pad.
func NewPadEvent(source EventSource, payload EventPayload, padID string) Event {
	e := NewTypedEvent(source, payload)
	e.PadID = padID
	return e
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// ExtractPayload decodes an event payload back into its typed form.
func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	if e.Type != result.EventType() {
		return result, false
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}
