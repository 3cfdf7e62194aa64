package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-career-counsel-be/internal/entity"
	"ai-career-counsel-be/internal/repository/specification"
	"ai-career-counsel-be/internal/repository/unitofwork"
	"ai-career-counsel-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.NotificationRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Session and message round trip", func(t *testing.T) {
		ctx := context.Background()
		userId := uuid.New()

		session := &entity.ChatSession{
			Id:          uuid.New(),
			UserId:      userId,
			PersonaType: "student",
			Path:        "Integration Testing",
			CreatedAt:   time.Now(),
		}
		require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))

		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByPersonaTuple{PersonaType: "student", Path: "Integration Testing"},
			specification.OrderBy{Field: "created_at", Desc: true},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, session.Id, found.Id)

		msg := &entity.ChatMessage{
			Id:            uuid.New(),
			Content:       "integration hello",
			Sender:        "user",
			ChatSessionId: session.Id,
			CreatedAt:     time.Now(),
		}
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, msg))

		messages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "integration hello", messages[0].Content)
	})
}
