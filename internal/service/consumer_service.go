package service

import (
	"context"
	"encoding/json"

	"ai-career-counsel-be/internal/dto"
	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/pkg/logger"
	"ai-career-counsel-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the background chat persistence worker. Writes are
// fire and forget: a failed write is logged and acked, never retried,
// so a slow or broken store can not stall the conversation loop.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Every outcome acks. Chat messages are never worth a redelivery
	// loop; the in-memory reply already reached the user.
	defer msg.Ack()

	var payload dto.PersistChatMessagePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal persist payload", map[string]interface{}{
			"error":      err.Error(),
			"message_id": msg.UUID,
		})
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatMessage := entity.ChatMessage{
		Id:            payload.MessageId,
		Content:       payload.Content,
		Sender:        payload.Sender,
		ChatSessionId: payload.ChatSessionId,
		CreatedAt:     payload.CreatedAt,
	}
	if err := uow.ChatMessageRepository().Create(ctx, &chatMessage); err != nil {
		cs.logger.Error("ConsumerService", "Failed to persist chat message", map[string]interface{}{
			"error":      err.Error(),
			"message_id": payload.MessageId.String(),
			"session_id": payload.ChatSessionId.String(),
		})
		return
	}

	cs.logger.Info("ConsumerService", "Chat message persisted", map[string]interface{}{
		"message_id": payload.MessageId.String(),
		"sender":     payload.Sender,
	})
}
