package service

import (
	"context"
	"sync"
	"testing"

	"ai-career-counsel-be/internal/constant"
	"ai-career-counsel-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingDelivery struct {
	mu   sync.Mutex
	sent []dto.NotificationResponse
}

func (d *capturingDelivery) Send(userID uuid.UUID, notification dto.NotificationResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, notification)
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	store := &fakeStore{}
	delivery := &capturingDelivery{}
	svc := NewNotificationService(&fakeFactory{store: store}, delivery, nopLogger{})

	userId := uuid.New()
	svc.Notify(context.Background(), userId, constant.NotificationGenerationFailed, constant.GenerationFailedWarning, map[string]interface{}{
		"session_id": uuid.New().String(),
	})

	require.Len(t, store.notifications, 1)
	assert.Equal(t, userId, store.notifications[0].UserId)
	assert.Equal(t, constant.NotificationGenerationFailed, store.notifications[0].TypeCode)
	assert.Equal(t, constant.GenerationFailedWarning, store.notifications[0].Message)
	assert.False(t, store.notifications[0].IsRead)

	require.Len(t, delivery.sent, 1)
	assert.Equal(t, store.notifications[0].Id, delivery.sent[0].Id)
}

func TestNotifyWithoutDelivery(t *testing.T) {
	store := &fakeStore{}
	svc := NewNotificationService(&fakeFactory{store: store}, nil, nopLogger{})

	svc.Notify(context.Background(), uuid.New(), constant.NotificationSessionDegraded, constant.HistoryLoadWarning, nil)
	require.Len(t, store.notifications, 1)
}

func TestGetUnreadCount(t *testing.T) {
	store := &fakeStore{}
	svc := NewNotificationService(&fakeFactory{store: store}, nil, nopLogger{})

	userId := uuid.New()
	svc.Notify(context.Background(), userId, constant.NotificationGenerationFailed, "a", nil)
	svc.Notify(context.Background(), userId, constant.NotificationGenerationFailed, "b", nil)

	count, err := svc.GetUnreadCount(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Count)
}
