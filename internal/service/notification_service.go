package service

import (
	"context"
	"time"

	"ai-career-counsel-be/internal/dto"
	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/pkg/logger"
	"ai-career-counsel-be/internal/repository/specification"
	"ai-career-counsel-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// NotificationDelivery pushes real-time updates to connected clients.
// Implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.NotificationResponse)
}

type INotificationService interface {
	// Notify persists a notification and pushes it to the user if
	// connected. Both steps are best effort; Notify never fails the
	// caller.
	Notify(ctx context.Context, userId uuid.UUID, typeCode string, message string, metadata map[string]interface{})
	GetNotifications(ctx context.Context, userId uuid.UUID, limit int, offset int) ([]*dto.NotificationResponse, error)
	GetUnreadCount(ctx context.Context, userId uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, delivery NotificationDelivery, sysLogger logger.ILogger) INotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		delivery:   delivery,
		logger:     sysLogger,
	}
}

func (s *notificationService) Notify(ctx context.Context, userId uuid.UUID, typeCode string, message string, metadata map[string]interface{}) {
	notification := entity.Notification{
		Id:        uuid.New(),
		UserId:    userId,
		TypeCode:  typeCode,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, &notification); err != nil {
		s.logger.Error("NotificationService", "Failed to save notification", map[string]interface{}{
			"error":     err.Error(),
			"user_id":   userId.String(),
			"type_code": typeCode,
		})
		// Still try the real-time push; an ephemeral warning beats none.
	}

	if s.delivery != nil {
		s.delivery.Send(userId, toNotificationDTO(&notification))
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userId uuid.UUID, limit int, offset int) ([]*dto.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notifications, err := uow.NotificationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		item := toNotificationDTO(n)
		response = append(response, &item)
	}
	return response, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, userId uuid.UUID) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.NotificationRepository().Count(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.UnreadOnly{},
	)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAsRead(ctx, userId, id)
}

func toNotificationDTO(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		Id:        n.Id,
		TypeCode:  n.TypeCode,
		Message:   n.Message,
		Metadata:  n.Metadata,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
