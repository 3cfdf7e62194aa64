package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one conversation entry. Content and sender are fixed at
// creation; messages are never updated or deleted by the core.
type ChatMessage struct {
	Id            uuid.UUID
	Content       string
	Sender        string
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
