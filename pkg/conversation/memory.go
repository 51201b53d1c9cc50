package conversation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It backs tests
// and ephemeral runs where persistence across restarts is not needed.
// All methods copy on the way in and out so callers can never mutate
// stored state behind the store's back.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
	}
}

// Create persists a new conversation with its first exchange.
func (s *MemoryStore) Create(ctx context.Context, conv *Conversation, first Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyConversation(conv)
	stored.History = []Message{first.UserMessage, first.AssistantMessage}
	stored.Usage = copyUsage(first.Usage)
	stored.Costs = first.Costs
	stored.ResponseTime = first.ResponseTime

	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.conversations[stored.ID] = stored
	return nil
}

// Append commits one further exchange to an existing conversation.
func (s *MemoryStore) Append(ctx context.Context, id string, ex Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	conv.History = append(conv.History, ex.UserMessage, ex.AssistantMessage)
	conv.Usage = copyUsage(ex.Usage)
	conv.Costs = ex.Costs
	conv.ResponseTime = ex.ResponseTime
	conv.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of the conversation with its full history.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return copyConversation(conv), nil
}

// List returns copies of all conversations.
func (s *MemoryStore) List(ctx context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convs := make([]*Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, copyConversation(conv))
	}
	return convs, nil
}

// Delete removes the conversation and all its messages.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(s.conversations, id)
	return nil
}

// Count returns the number of stored conversations.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// copyConversation deep-copies a conversation record and its history.
func copyConversation(conv *Conversation) *Conversation {
	out := *conv

	if conv.History != nil {
		out.History = make([]Message, len(conv.History))
		copy(out.History, conv.History)
	}
	if conv.Hyperparameters != nil {
		out.Hyperparameters = make(map[string]any, len(conv.Hyperparameters))
		for k, v := range conv.Hyperparameters {
			out.Hyperparameters[k] = v
		}
	}
	out.Usage = copyUsage(conv.Usage)
	if conv.Costs != nil {
		costsCopy := *conv.Costs
		out.Costs = &costsCopy
	}

	return &out
}

// copyUsage copies a raw usage map.
func copyUsage(usage map[string]int) map[string]int {
	if usage == nil {
		return nil
	}
	out := make(map[string]int, len(usage))
	for k, v := range usage {
		out[k] = v
	}
	return out
}
