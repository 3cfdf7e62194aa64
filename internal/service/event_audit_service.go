package service

import (
	"context"
	"fmt"
	"strings"

	"ai-career-counsel-be/internal/pkg/logger"
	"ai-career-counsel-be/pkg/events"
	pktNats "ai-career-counsel-be/pkg/nats"
)

// EventAuditService consumes the domain event stream and writes an
// audit trail. Runs as a background worker with a durable consumer so
// events survive restarts.
type EventAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewEventAuditService(sub *pktNats.Subscriber, log logger.ILogger) *EventAuditService {
	return &EventAuditService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *EventAuditService) Start() {
	err := s.subscriber.Subscribe("events.>", "counsel-audit-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventAuditService", "Failed to start event audit subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("EventAuditService", "Event audit started, listening to events.>", nil)
}

func (s *EventAuditService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	s.logger.Info("EventAuditService", fmt.Sprintf("Event: %s", typeCode), event.Payload())
	return nil
}
