package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the constructors below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the counseling core.
const (
	TypeSessionCreated   = "SESSION_CREATED"
	TypeGenerationFailed = "GENERATION_FAILED"
)

// NewSessionCreated marks a fresh counseling session for a persona tuple.
func NewSessionCreated(userID, sessionID, personaType, path string) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"user_id":      userID,
			"session_id":   sessionID,
			"persona_type": personaType,
			"path":         path,
		},
		OccurredAt: time.Now(),
	}
}

// NewGenerationFailed records an upstream generation failure.
func NewGenerationFailed(userID, sessionID, kind string) Event {
	return BaseEvent{
		Type: TypeGenerationFailed,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"kind":       kind,
		},
		OccurredAt: time.Now(),
	}
}
