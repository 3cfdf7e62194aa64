package bootstrap

import (
	"context"
	"log"

	"ai-career-counsel-be/internal/config"
	"ai-career-counsel-be/internal/constant"
	"ai-career-counsel-be/internal/controller"
	"ai-career-counsel-be/internal/handler"
	"ai-career-counsel-be/internal/pkg/logger"
	"ai-career-counsel-be/internal/repository/memory"
	"ai-career-counsel-be/internal/repository/unitofwork"
	"ai-career-counsel-be/internal/service"
	"ai-career-counsel-be/internal/websocket"
	"ai-career-counsel-be/pkg/generator"
	pktNats "ai-career-counsel-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CounselController controller.ICounselController

	// Background Services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS is optional; the conversation loop works without it.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	geminiProvider := generator.NewGeminiProvider(generator.GeminiConfig{
		APIKey:  cfg.Keys.GoogleGemini,
		BaseURL: cfg.Ai.GeminiBaseURL,
		Model:   cfg.Ai.GeminiModel,
		Timeout: cfg.Ai.RequestTimeout,
	})
	log.Printf("[INFO] Using generation model: %s", cfg.Ai.GeminiModel)

	conversationRepo := memory.NewConversationRepository()

	publisherService := service.NewPublisherService(pubSub, constant.PersistChatMessageTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.PersistChatMessageTopic,
		uowFactory,
		sysLogger,
	)

	notificationService := service.NewNotificationService(uowFactory, wsHub, sysLogger)

	// Event audit worker (durable consumer on the event stream)
	if natsSub != nil {
		auditService := service.NewEventAuditService(natsSub, sysLogger)
		go auditService.Start()
	}

	counselService := service.NewCounselService(
		uowFactory,
		geminiProvider,
		publisherService,
		notificationService,
		conversationRepo,
		natsPub,
		sysLogger,
	)

	// 4. Handlers & Controllers
	notifHandler := handler.NewNotificationHandler(notificationService, wsHub, wsLogger)

	return &Container{
		CounselController:   controller.NewCounselController(counselService),
		ConsumerService:     consumerService,
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
