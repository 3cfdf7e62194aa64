package contract

import (
	"context"

	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	MarkAsRead(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
