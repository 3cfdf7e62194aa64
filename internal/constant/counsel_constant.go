package constant

const (
	// Message senders. Fixed at creation, never mutated.
	ChatMessageSenderUser = "user"
	ChatMessageSenderAI   = "ai"

	// FallbackReply masks any generation failure so the conversation
	// never shows a dangling user message without an answer.
	FallbackReply = "I'm sorry, I encountered an error while processing your request. Please try again."

	// User-facing warning copy.
	GenerationFailedWarning = "Error connecting to the AI service. Please try again later."
	HistoryLoadWarning      = "Failed to load chat history"
)

// Notification type codes.
const (
	NotificationGenerationFailed = "GENERATION_FAILED"
	NotificationSessionDegraded  = "SESSION_DEGRADED"
)

// Watermill topic for the async message persistence pipeline.
const PersistChatMessageTopic = "PERSIST_CHAT_MESSAGE"
