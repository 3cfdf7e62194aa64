package mapper

import (
	"encoding/json"

	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/model"

	"gorm.io/datatypes"
)

type NotificationMapper struct{}

func NewNotificationMapper() *NotificationMapper {
	return &NotificationMapper{}
}

func (m *NotificationMapper) ToEntity(n *model.Notification) *entity.Notification {
	if n == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(n.Metadata) > 0 {
		// Ignore malformed stored metadata rather than failing the read.
		_ = json.Unmarshal(n.Metadata, &metadata)
	}

	return &entity.Notification{
		Id:        n.Id,
		UserId:    n.UserId,
		TypeCode:  n.TypeCode,
		Message:   n.Message,
		Metadata:  metadata,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func (m *NotificationMapper) ToModel(n *entity.Notification) *model.Notification {
	if n == nil {
		return nil
	}

	var metadata datatypes.JSON
	if n.Metadata != nil {
		if raw, err := json.Marshal(n.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.Notification{
		Id:        n.Id,
		UserId:    n.UserId,
		TypeCode:  n.TypeCode,
		Message:   n.Message,
		Metadata:  metadata,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
