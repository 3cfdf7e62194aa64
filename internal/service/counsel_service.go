package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-career-counsel-be/internal/constant"
	"ai-career-counsel-be/internal/dto"
	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/pkg/logger"
	"ai-career-counsel-be/internal/pkg/serverutils"
	"ai-career-counsel-be/internal/repository/memory"
	"ai-career-counsel-be/internal/repository/specification"
	"ai-career-counsel-be/internal/repository/unitofwork"
	"ai-career-counsel-be/pkg/counsel"
	"ai-career-counsel-be/pkg/events"
	"ai-career-counsel-be/pkg/generator"
	pktNats "ai-career-counsel-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Submission guard outcomes. A rejected submission leaves every piece of
// state untouched.
var (
	ErrEmptyMessage     = serverutils.NewAppError(fiber.StatusUnprocessableEntity, "Message must not be empty")
	ErrConversationBusy = serverutils.NewAppError(fiber.StatusConflict, "A reply is still being generated for this conversation")
	ErrSessionNotFound  = serverutils.NewAppError(fiber.StatusNotFound, "Session not found or access denied")
)

// ICounselService defines the counseling conversation service interface
type ICounselService interface {
	ResolveSession(ctx context.Context, userId uuid.UUID, request *dto.ResolveSessionRequest) (*dto.ResolveSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.ChatMessageDTO, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type counselService struct {
	uowFactory       unitofwork.RepositoryFactory
	provider         generator.Provider
	publisherService IPublisherService
	notifications    INotificationService
	convRepo         *memory.ConversationRepository
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewCounselService(
	uowFactory unitofwork.RepositoryFactory,
	provider generator.Provider,
	publisherService IPublisherService,
	notifications INotificationService,
	convRepo *memory.ConversationRepository,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) ICounselService {
	return &counselService{
		uowFactory:       uowFactory,
		provider:         provider,
		publisherService: publisherService,
		notifications:    notifications,
		convRepo:         convRepo,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

// ResolveSession binds the caller to the newest session for the persona
// tuple, creating one when none exists. An existing session replays its
// history; an empty or fresh one is seeded with the greeting. Any store
// failure degrades to an unpersisted greeting with a warning instead of
// failing the request.
func (cs *counselService) ResolveSession(ctx context.Context, userId uuid.UUID, request *dto.ResolveSessionRequest) (*dto.ResolveSessionResponse, error) {
	personaType := counsel.PersonaType(request.PersonaType)
	_, greeting := counsel.Resolve(personaType, request.Path)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByPersonaTuple{PersonaType: request.PersonaType, Path: request.Path},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return cs.degradedSession(ctx, userId, request, greeting, err), nil
	}

	if session == nil {
		session = &entity.ChatSession{
			Id:          uuid.New(),
			UserId:      userId,
			PersonaType: request.PersonaType,
			Path:        request.Path,
			CreatedAt:   time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return cs.degradedSession(ctx, userId, request, greeting, err), nil
		}

		if cs.eventPublisher != nil {
			evt := events.NewSessionCreated(userId.String(), session.Id.String(), session.PersonaType, session.Path)
			if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
				cs.logger.Warn("CounselService", "Failed to publish session created event", map[string]interface{}{"error": err.Error()})
			}
		}

		greetingMsg := cs.seedGreeting(ctx, uow, session, greeting)
		cs.convRepo.Delete(session.Id.String())
		return &dto.ResolveSessionResponse{
			SessionId:   &session.Id,
			PersonaType: session.PersonaType,
			Path:        session.Path,
			Messages:    []dto.ChatMessageDTO{greetingMsg},
		}, nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return cs.degradedSession(ctx, userId, request, greeting, err), nil
	}

	cs.convRepo.Delete(session.Id.String())

	if len(messages) == 0 {
		// Existing but empty session: seed the greeting, do not
		// treat it as a replay.
		greetingMsg := cs.seedGreeting(ctx, uow, session, greeting)
		return &dto.ResolveSessionResponse{
			SessionId:   &session.Id,
			PersonaType: session.PersonaType,
			Path:        session.Path,
			Messages:    []dto.ChatMessageDTO{greetingMsg},
		}, nil
	}

	replayed := make([]dto.ChatMessageDTO, 0, len(messages))
	for _, m := range messages {
		replayed = append(replayed, toMessageDTO(m))
	}

	return &dto.ResolveSessionResponse{
		SessionId:   &session.Id,
		PersonaType: session.PersonaType,
		Path:        session.Path,
		Messages:    replayed,
		Replayed:    true,
	}, nil
}

// degradedSession keeps the conversation usable when the store is
// unreachable: an unpersisted greeting, no session binding, and a
// non-blocking warning. Saves are skipped while unbound.
func (cs *counselService) degradedSession(ctx context.Context, userId uuid.UUID, request *dto.ResolveSessionRequest, greeting string, cause error) *dto.ResolveSessionResponse {
	cs.logger.Error("CounselService", "Session resolution failed, continuing unpersisted", map[string]interface{}{
		"error":        cause.Error(),
		"user_id":      userId.String(),
		"persona_type": request.PersonaType,
		"path":         request.Path,
	})

	cs.notifications.Notify(ctx, userId, constant.NotificationSessionDegraded, constant.HistoryLoadWarning, nil)

	now := time.Now()
	return &dto.ResolveSessionResponse{
		PersonaType: request.PersonaType,
		Path:        request.Path,
		Messages: []dto.ChatMessageDTO{{
			Id:        uuid.New(),
			Content:   greeting,
			Sender:    constant.ChatMessageSenderAI,
			CreatedAt: &now,
		}},
		Warning: constant.HistoryLoadWarning,
	}
}

// seedGreeting appends the greeting as the first AI message. Persistence
// is best effort: a failed write is logged, never surfaced.
func (cs *counselService) seedGreeting(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, greeting string) dto.ChatMessageDTO {
	msg := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       greeting,
		Sender:        constant.ChatMessageSenderAI,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &msg); err != nil {
		cs.logger.Error("CounselService", "Failed to persist greeting", map[string]interface{}{
			"error":      err.Error(),
			"session_id": session.Id.String(),
		})
	}
	return toMessageDTO(&msg)
}

func (cs *counselService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.SessionSummaryResponse{
			Id:          s.Id,
			PersonaType: s.PersonaType,
			Path:        s.Path,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return response, nil
}

func (cs *counselService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.ChatMessageDTO, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]dto.ChatMessageDTO, 0, len(messages))
	for _, m := range messages {
		history = append(history, toMessageDTO(m))
	}
	return history, nil
}

// SendChat runs one full submission: guard, append+persist the user
// message, exactly one generation attempt, append+persist exactly one AI
// message. A generation failure is masked by the fallback reply and
// reported once as a transient warning; the log never shows a user
// message without an answer.
func (cs *counselService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	text := strings.TrimSpace(request.Chat)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	personaType := request.PersonaType
	path := request.Path
	sessionId := request.ChatSessionId

	if sessionId != nil {
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *sessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		// The session is the source of truth for the persona tuple.
		personaType = session.PersonaType
		path = session.Path
	}

	busyKey := conversationKey(userId, sessionId, personaType, path)
	if !cs.convRepo.TryAcquire(busyKey, userId.String()) {
		return nil, ErrConversationBusy
	}
	defer cs.convRepo.Release(busyKey)

	if conv, found := cs.convRepo.Get(busyKey); found {
		conv.LastMessage = text
		cs.convRepo.Save(conv)
	}

	contextString, _ := counsel.Resolve(counsel.PersonaType(personaType), path)

	userMsg := entity.ChatMessage{
		Id:        uuid.New(),
		Content:   text,
		Sender:    constant.ChatMessageSenderUser,
		CreatedAt: time.Now(),
	}
	if sessionId != nil {
		userMsg.ChatSessionId = *sessionId
	}
	cs.persistAsync(ctx, sessionId, &userMsg)

	var warning string
	reply, genErr := cs.provider.Generate(ctx, contextString, text)
	if genErr != nil {
		cs.logger.Error("CounselService", "Generation failed, masking with fallback", map[string]interface{}{
			"error":   genErr.Error(),
			"user_id": userId.String(),
		})
		reply = constant.FallbackReply
		warning = constant.GenerationFailedWarning
		cs.reportGenerationFailure(ctx, userId, sessionId, genErr)
	}

	aiMsg := entity.ChatMessage{
		Id:        uuid.New(),
		Content:   reply,
		Sender:    constant.ChatMessageSenderAI,
		CreatedAt: time.Now(),
	}
	if sessionId != nil {
		aiMsg.ChatSessionId = *sessionId
	}
	cs.persistAsync(ctx, sessionId, &aiMsg)

	return &dto.SendChatResponse{
		ChatSessionId: sessionId,
		Sent:          toMessageDTO(&userMsg),
		Reply:         toMessageDTO(&aiMsg),
		Warning:       warning,
	}, nil
}

// persistAsync hands the message to the background writer. Saves are
// silently skipped while no session is bound; a publish failure is
// logged and swallowed, never rolled back or surfaced.
func (cs *counselService) persistAsync(ctx context.Context, sessionId *uuid.UUID, msg *entity.ChatMessage) {
	if sessionId == nil {
		return
	}

	payload := dto.PersistChatMessagePayload{
		MessageId:     msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Content:       msg.Content,
		Sender:        msg.Sender,
		CreatedAt:     msg.CreatedAt,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		cs.logger.Error("CounselService", "Failed to marshal persist payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := cs.publisherService.Publish(ctx, payloadJson); err != nil {
		cs.logger.Error("CounselService", "Failed to enqueue message persistence", map[string]interface{}{
			"error":      err.Error(),
			"message_id": msg.Id.String(),
		})
	}
}

// reportGenerationFailure notifies the user exactly once per failed
// submission and emits a best-effort domain event.
func (cs *counselService) reportGenerationFailure(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID, genErr error) {
	metadata := map[string]interface{}{}
	sid := ""
	if sessionId != nil {
		sid = sessionId.String()
		metadata["session_id"] = sid
	}

	cs.notifications.Notify(ctx, userId, constant.NotificationGenerationFailed, constant.GenerationFailedWarning, metadata)

	if cs.eventPublisher != nil {
		kind := "unknown"
		if ge, ok := genErr.(*generator.GenerationError); ok {
			kind = ge.Kind
		}
		evt := events.NewGenerationFailed(userId.String(), sid, kind)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("CounselService", "Failed to publish generation failed event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func conversationKey(userId uuid.UUID, sessionId *uuid.UUID, personaType, path string) string {
	if sessionId != nil {
		return sessionId.String()
	}
	// Unbound (degraded) conversations are guarded per persona tuple.
	return userId.String() + ":" + personaType + ":" + path
}

func toMessageDTO(m *entity.ChatMessage) dto.ChatMessageDTO {
	created := m.CreatedAt
	return dto.ChatMessageDTO{
		Id:        m.Id,
		Content:   m.Content,
		Sender:    m.Sender,
		CreatedAt: &created,
	}
}
