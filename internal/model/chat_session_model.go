package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_chat_sessions_tuple,priority:1"` // User ownership for data isolation
	PersonaType string         `gorm:"type:varchar(20);not null;index:idx_chat_sessions_tuple,priority:2"`
	Path        string         `gorm:"type:text;not null;default:'';index:idx_chat_sessions_tuple,priority:3"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
