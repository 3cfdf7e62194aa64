package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is a durable conversation thread scoped to
// (owner, persona type, path). Multiple sessions may exist in storage
// for the same tuple; only the newest is surfaced.
type ChatSession struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	PersonaType string
	Path        string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
