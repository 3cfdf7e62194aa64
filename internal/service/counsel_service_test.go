package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"ai-career-counsel-be/internal/constant"
	"ai-career-counsel-be/internal/dto"
	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/repository/contract"
	"ai-career-counsel-be/internal/repository/memory"
	"ai-career-counsel-be/internal/repository/specification"
	"ai-career-counsel-be/internal/repository/unitofwork"
	"ai-career-counsel-be/pkg/generator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory fakes -------------------------------------------------

type fakeStore struct {
	mu            sync.Mutex
	sessions      []*entity.ChatSession
	messages      []*entity.ChatMessage
	notifications []*entity.Notification

	failSessions bool
	failMessages bool
}

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}
func (u *fakeUow) NotificationRepository() contract.NotificationRepository {
	return &fakeNotificationRepo{store: u.store}
}

type fakeFactory struct{ store *fakeStore }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

var errStoreDown = errors.New("store unavailable")

type fakeSessionRepo struct{ store *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failSessions {
		return errStoreDown
	}
	r.store.sessions = append(r.store.sessions, session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	matches, err := r.matchAll(specs)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return r.matchAll(specs)
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.matchAll(specs)
	return int64(len(matches)), err
}

// matchAll understands the specifications the counseling service
// actually issues.
func (r *fakeSessionRepo) matchAll(specs []specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failSessions {
		return nil, errStoreDown
	}

	var byID *uuid.UUID
	var owner *uuid.UUID
	var tuple *specification.ByPersonaTuple
	desc := false
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			byID = &id
		case specification.UserOwnedBy:
			uid := s.UserID
			owner = &uid
		case specification.ByPersonaTuple:
			t := s
			tuple = &t
		case specification.OrderBy:
			desc = s.Desc
		}
	}

	var matches []*entity.ChatSession
	for _, sess := range r.store.sessions {
		if byID != nil && sess.Id != *byID {
			continue
		}
		if owner != nil && sess.UserId != *owner {
			continue
		}
		if tuple != nil && (sess.PersonaType != tuple.PersonaType || sess.Path != tuple.Path) {
			continue
		}
		matches = append(matches, sess)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if desc {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failMessages {
		return errStoreDown
	}
	r.store.messages = append(r.store.messages, message)
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	matches, err := r.matchAll(specs)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return r.matchAll(specs)
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.matchAll(specs)
	return int64(len(matches)), err
}

func (r *fakeMessageRepo) matchAll(specs []specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failMessages {
		return nil, errStoreDown
	}

	var sessionID *uuid.UUID
	for _, spec := range specs {
		if s, ok := spec.(specification.ByChatSessionID); ok {
			id := s.ChatSessionID
			sessionID = &id
		}
	}

	var matches []*entity.ChatMessage
	for _, msg := range r.store.messages {
		if sessionID != nil && msg.ChatSessionId != *sessionID {
			continue
		}
		matches = append(matches, msg)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

type fakeNotificationRepo struct{ store *fakeStore }

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notifications = append(r.store.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return nil
}

func (r *fakeNotificationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.notifications, nil
}

func (r *fakeNotificationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.notifications)), nil
}

type capturingPublisher struct {
	mu       sync.Mutex
	payloads []dto.PersistChatMessagePayload
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	var parsed dto.PersistChatMessagePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return err
	}
	p.payloads = append(p.payloads, parsed)
	return nil
}

type capturingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *capturingNotifier) Notify(ctx context.Context, userId uuid.UUID, typeCode string, message string, metadata map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, typeCode)
}

func (n *capturingNotifier) GetNotifications(ctx context.Context, userId uuid.UUID, limit int, offset int) ([]*dto.NotificationResponse, error) {
	return nil, nil
}

func (n *capturingNotifier) GetUnreadCount(ctx context.Context, userId uuid.UUID) (*dto.UnreadCountResponse, error) {
	return nil, nil
}

func (n *capturingNotifier) MarkAsRead(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type serviceFixture struct {
	store     *fakeStore
	provider  *generator.MockProvider
	publisher *capturingPublisher
	notifier  *capturingNotifier
	convRepo  *memory.ConversationRepository
	service   ICounselService
}

func newFixture() *serviceFixture {
	store := &fakeStore{}
	provider := generator.NewMockProvider("Here is some advice.")
	publisher := &capturingPublisher{}
	notifier := &capturingNotifier{}
	convRepo := memory.NewConversationRepository()

	svc := NewCounselService(
		&fakeFactory{store: store},
		provider,
		publisher,
		notifier,
		convRepo,
		nil, // no NATS in unit tests
		nopLogger{},
	)

	return &serviceFixture{
		store:     store,
		provider:  provider,
		publisher: publisher,
		notifier:  notifier,
		convRepo:  convRepo,
		service:   svc,
	}
}

// --- ResolveSession --------------------------------------------------

func TestResolveSessionCreatesAndSeedsGreeting(t *testing.T) {
	f := newFixture()
	userId := uuid.New()

	res, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{
		PersonaType: "student",
		Path:        "Data Science",
	})
	require.NoError(t, err)

	require.NotNil(t, res.SessionId)
	assert.False(t, res.Replayed)
	assert.Empty(t, res.Warning)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, constant.ChatMessageSenderAI, res.Messages[0].Sender)
	assert.Contains(t, res.Messages[0].Content, "I see you're interested in Data Science")

	// The greeting is persisted, not just returned.
	require.Len(t, f.store.messages, 1)
	assert.Equal(t, *res.SessionId, f.store.messages[0].ChatSessionId)
	require.Len(t, f.store.sessions, 1)
	assert.Equal(t, userId, f.store.sessions[0].UserId)
}

func TestResolveSessionReplaysExistingHistory(t *testing.T) {
	f := newFixture()
	userId := uuid.New()

	first, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{
		PersonaType: "professional",
		Path:        "upgrade",
	})
	require.NoError(t, err)

	// Two more messages land in the session.
	base := time.Now()
	f.store.messages = append(f.store.messages,
		&entity.ChatMessage{Id: uuid.New(), Content: "How do I get promoted?", Sender: constant.ChatMessageSenderUser, ChatSessionId: *first.SessionId, CreatedAt: base.Add(time.Second)},
		&entity.ChatMessage{Id: uuid.New(), Content: "Start by ...", Sender: constant.ChatMessageSenderAI, ChatSessionId: *first.SessionId, CreatedAt: base.Add(2 * time.Second)},
	)

	second, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{
		PersonaType: "professional",
		Path:        "upgrade",
	})
	require.NoError(t, err)

	assert.Equal(t, *first.SessionId, *second.SessionId)
	assert.True(t, second.Replayed)
	require.Len(t, second.Messages, 3)
	// Chronological order, no duplicate greeting.
	assert.Contains(t, second.Messages[0].Content, "Welcome to your AI career counseling session!")
	assert.Equal(t, "How do I get promoted?", second.Messages[1].Content)
	assert.Equal(t, "Start by ...", second.Messages[2].Content)
	assert.Len(t, f.store.messages, 3, "a replay must not write new rows")
}

func TestResolveSessionDistinctTuplesGetDistinctSessions(t *testing.T) {
	f := newFixture()
	userId := uuid.New()

	a, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{PersonaType: "student", Path: "Design"})
	require.NoError(t, err)
	b, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{PersonaType: "student", Path: "Law"})
	require.NoError(t, err)

	assert.NotEqual(t, *a.SessionId, *b.SessionId)
	assert.Len(t, f.store.sessions, 2)
}

func TestResolveSessionDegradesOnStoreFailure(t *testing.T) {
	f := newFixture()
	f.store.failSessions = true
	userId := uuid.New()

	res, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{
		PersonaType: "student",
		Path:        "Design",
	})
	require.NoError(t, err, "a broken store must not fail the request")

	assert.Nil(t, res.SessionId, "degraded mode leaves the session unbound")
	assert.Equal(t, constant.HistoryLoadWarning, res.Warning)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, constant.ChatMessageSenderAI, res.Messages[0].Sender)
	assert.Empty(t, f.store.messages, "nothing may be persisted in degraded mode")
	assert.Equal(t, []string{constant.NotificationSessionDegraded}, f.notifier.calls)
}

// --- SendChat --------------------------------------------------------

func bindSession(t *testing.T, f *serviceFixture, userId uuid.UUID) uuid.UUID {
	t.Helper()
	res, err := f.service.ResolveSession(context.Background(), userId, &dto.ResolveSessionRequest{
		PersonaType: "student",
		Path:        "Software Engineering",
	})
	require.NoError(t, err)
	require.NotNil(t, res.SessionId)
	return *res.SessionId
}

func TestSendChatHappyPath(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	res, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Path:          "Software Engineering",
		Chat:          "  What languages should I learn?  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "What languages should I learn?", res.Sent.Content, "submission text is trimmed")
	assert.Equal(t, constant.ChatMessageSenderUser, res.Sent.Sender)
	assert.Equal(t, "Here is some advice.", res.Reply.Content)
	assert.Equal(t, constant.ChatMessageSenderAI, res.Reply.Sender)
	assert.Empty(t, res.Warning)
	assert.Equal(t, 1, f.provider.Calls, "exactly one generation attempt per submission")

	// Both sides of the exchange were queued for persistence.
	require.Len(t, f.publisher.payloads, 2)
	assert.Equal(t, constant.ChatMessageSenderUser, f.publisher.payloads[0].Sender)
	assert.Equal(t, constant.ChatMessageSenderAI, f.publisher.payloads[1].Sender)
	assert.Equal(t, sessionId, f.publisher.payloads[0].ChatSessionId)
}

func TestSendChatRejectsEmptySubmission(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	for _, chat := range []string{"", "   ", "\n\t "} {
		_, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
			ChatSessionId: &sessionId,
			PersonaType:   "student",
			Chat:          chat,
		})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Zero(t, f.provider.Calls, "an empty submission must not reach the generator")
	assert.Empty(t, f.publisher.payloads, "an empty submission must not persist anything")
}

func TestSendChatBusyConversationConflicts(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	require.True(t, f.convRepo.TryAcquire(sessionId.String(), userId.String()))

	_, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Chat:          "hello",
	})
	assert.ErrorIs(t, err, ErrConversationBusy)
	assert.Zero(t, f.provider.Calls)

	// After release the conversation accepts submissions again.
	f.convRepo.Release(sessionId.String())
	_, err = f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Chat:          "hello",
	})
	assert.NoError(t, err)
}

func TestSendChatReleasesBusyAfterCompletion(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	for i := 0; i < 3; i++ {
		_, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
			ChatSessionId: &sessionId,
			PersonaType:   "student",
			Chat:          "question",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.provider.Calls)
}

func TestSendChatRecordsLastAcceptedSubmission(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	_, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Chat:          "  What certifications matter?  ",
	})
	require.NoError(t, err)

	conv, found := f.convRepo.Get(sessionId.String())
	require.True(t, found)
	assert.Equal(t, "What certifications matter?", conv.LastMessage, "conversation state keeps the trimmed text of the last accepted submission")
	assert.False(t, conv.Busy, "busy flag is released after completion")
	assert.Equal(t, userId.String(), conv.UserID)
}

func TestSendChatMasksGenerationFailure(t *testing.T) {
	f := newFixture()
	f.provider.Err = &generator.GenerationError{Kind: generator.KindStatus, StatusCode: 500, Err: errors.New("upstream")}
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	res, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Chat:          "hello",
	})
	require.NoError(t, err, "a generation failure must not fail the submission")

	assert.Equal(t, constant.FallbackReply, res.Reply.Content)
	assert.Equal(t, constant.ChatMessageSenderAI, res.Reply.Sender)
	assert.Equal(t, constant.GenerationFailedWarning, res.Warning)
	assert.Equal(t, 1, f.provider.Calls, "no retry on failure")

	// The fallback is persisted like any AI reply: the log never shows
	// an unanswered user message.
	require.Len(t, f.publisher.payloads, 2)
	assert.Equal(t, constant.FallbackReply, f.publisher.payloads[1].Content)

	assert.Equal(t, []string{constant.NotificationGenerationFailed}, f.notifier.calls, "exactly one notification per failure")
}

func TestSendChatUnboundSessionSkipsPersistence(t *testing.T) {
	f := newFixture()
	userId := uuid.New()

	res, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: nil, // degraded mode
		PersonaType:   "professional",
		Path:          "switch",
		Chat:          "Should I move into product management?",
	})
	require.NoError(t, err)

	assert.Nil(t, res.ChatSessionId)
	assert.Equal(t, "Here is some advice.", res.Reply.Content)
	assert.Empty(t, f.publisher.payloads, "unbound conversations persist nothing")
	assert.Equal(t, 1, f.provider.Calls, "generation still runs while unbound")
}

func TestSendChatRejectsForeignSession(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	sessionId := bindSession(t, f, owner)

	intruder := uuid.New()
	_, err := f.service.SendChat(context.Background(), intruder, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Chat:          "hello",
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, f.provider.Calls)
}

func TestSendChatPublishFailureDoesNotBlockReply(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	f.publisher.err = errors.New("queue full")

	res, err := f.service.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: &sessionId,
		PersonaType:   "student",
		Chat:          "hello",
	})
	require.NoError(t, err, "persistence is fire and forget")
	assert.Equal(t, "Here is some advice.", res.Reply.Content)
}

// --- history & listing -----------------------------------------------

func TestGetChatHistoryOrdersAndGuardsOwnership(t *testing.T) {
	f := newFixture()
	userId := uuid.New()
	sessionId := bindSession(t, f, userId)

	base := time.Now()
	f.store.messages = append(f.store.messages,
		&entity.ChatMessage{Id: uuid.New(), Content: "second", Sender: constant.ChatMessageSenderUser, ChatSessionId: sessionId, CreatedAt: base.Add(2 * time.Second)},
		&entity.ChatMessage{Id: uuid.New(), Content: "first", Sender: constant.ChatMessageSenderUser, ChatSessionId: sessionId, CreatedAt: base.Add(time.Second)},
	)

	history, err := f.service.GetChatHistory(context.Background(), userId, sessionId)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[1].Content)
	assert.Equal(t, "second", history[2].Content)

	_, err = f.service.GetChatHistory(context.Background(), uuid.New(), sessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetAllSessionsNewestFirst(t *testing.T) {
	f := newFixture()
	userId := uuid.New()

	older := &entity.ChatSession{Id: uuid.New(), UserId: userId, PersonaType: "student", Path: "Law", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &entity.ChatSession{Id: uuid.New(), UserId: userId, PersonaType: "student", Path: "Design", CreatedAt: time.Now()}
	f.store.sessions = append(f.store.sessions, older, newer)

	sessions, err := f.service.GetAllSessions(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.Id, sessions[0].Id)
	assert.Equal(t, older.Id, sessions[1].Id)
}
