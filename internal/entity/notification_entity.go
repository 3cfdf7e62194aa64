package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a transient user-facing warning persisted for later
// retrieval (e.g. generation failures, degraded-session warnings).
type Notification struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TypeCode  string
	Message   string
	Metadata  map[string]interface{}
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
