package store

// Conversation is the active per-conversation state held in memory. Busy
// is the sole concurrency control for submissions: exactly one
// generation may be in flight per conversation.
type Conversation struct {
	Key    string `json:"key"` // session id, or owner tuple while unbound
	UserID string `json:"user_id"`
	Busy   bool   `json:"busy"`

	// Metadata for the last accepted submission
	LastMessage string `json:"last_message"`
}
