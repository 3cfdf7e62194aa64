package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// ByPersonaTuple narrows sessions to one (persona type, path) pair.
// Empty path and absent path are the same value.
type ByPersonaTuple struct {
	PersonaType string
	Path        string
}

func (s ByPersonaTuple) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("persona_type = ? AND path = ?", s.PersonaType, s.Path)
}

// UnreadOnly narrows notifications to unread ones.
type UnreadOnly struct{}

func (s UnreadOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = ?", false)
}
