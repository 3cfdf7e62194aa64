package memory

import (
	"sync"
	"time"

	"ai-career-counsel-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ConversationRepository keeps transient conversation state in memory.
// Entries expire on their own so an instance crash mid-generation never
// wedges a conversation permanently.
type ConversationRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewConversationRepository() *ConversationRepository {
	// Default expiration 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Get(key string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

func (r *ConversationRepository) Save(conv *store.Conversation) {
	r.cache.Set(conv.Key, conv, cache.DefaultExpiration)
}

// TryAcquire marks the conversation busy. It returns false when a
// submission is already in flight; the caller must not proceed.
func (r *ConversationRepository) TryAcquire(key string, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, found := r.Get(key)
	if found && conv.Busy {
		return false
	}
	if !found {
		conv = &store.Conversation{Key: key, UserID: userID}
	}
	conv.Busy = true
	r.Save(conv)
	return true
}

// Release clears the busy flag. Runs on every exit path of a submission.
func (r *ConversationRepository) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, found := r.Get(key); found {
		conv.Busy = false
		r.Save(conv)
	}
}

func (r *ConversationRepository) Delete(key string) {
	r.cache.Delete(key)
}
