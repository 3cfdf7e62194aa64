package dto

import (
	"time"

	"github.com/google/uuid"
)

type ResolveSessionRequest struct {
	PersonaType string `json:"persona_type" validate:"required,oneof=student professional"`
	Path        string `json:"path"`
}

type ChatMessageDTO struct {
	Id        uuid.UUID  `json:"id"`
	Content   string     `json:"content"`
	Sender    string     `json:"sender"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ResolveSessionResponse carries the current session binding and the
// replayed (or seeded) message log. SessionId is nil in degraded mode:
// the conversation stays usable but nothing is persisted.
type ResolveSessionResponse struct {
	SessionId   *uuid.UUID       `json:"session_id"`
	PersonaType string           `json:"persona_type"`
	Path        string           `json:"path"`
	Messages    []ChatMessageDTO `json:"messages"`
	Replayed    bool             `json:"replayed"`
	Warning     string           `json:"warning,omitempty"`
}

type SessionSummaryResponse struct {
	Id          uuid.UUID  `json:"id"`
	PersonaType string     `json:"persona_type"`
	Path        string     `json:"path"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type SendChatRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id"` // nil while the session is unbound (degraded mode)
	PersonaType   string     `json:"persona_type" validate:"required,oneof=student professional"`
	Path          string     `json:"path"`
	Chat          string     `json:"chat"` // emptiness is judged after trimming, in the service
}

type SendChatResponse struct {
	ChatSessionId *uuid.UUID     `json:"chat_session_id"`
	Sent          ChatMessageDTO `json:"sent"`
	Reply         ChatMessageDTO `json:"reply"`
	Warning       string         `json:"warning,omitempty"`
}

// PersistChatMessagePayload travels over the persistence topic from the
// orchestrator to the background writer.
type PersistChatMessagePayload struct {
	MessageId     uuid.UUID `json:"message_id"`
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Content       string    `json:"content"`
	Sender        string    `json:"sender"`
	CreatedAt     time.Time `json:"created_at"`
}
