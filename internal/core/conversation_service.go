package core

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/llm"
)

type conversation struct {
	messages   []llm.Message
	lastAccess time.Time
}

// ConversationService keeps short-lived per-conversation history in process
// memory. State is lost on restart, which is accepted for single-instance
// deployments; durable history would be a separate store.
type ConversationService struct {
	mu               sync.Mutex
	conversations    map[string]*conversation
	maxHistoryLength int
	ttl              time.Duration
	now              func() time.Time
}

func NewConversationService(maxHistoryLength int, ttl time.Duration) *ConversationService {
	if maxHistoryLength <= 0 {
		maxHistoryLength = 6
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConversationService{
		conversations:    make(map[string]*conversation),
		maxHistoryLength: maxHistoryLength,
		ttl:              ttl,
		now:              time.Now,
	}
}

// GetHistory returns the conversation's messages oldest-first. An expired
// conversation is evicted here as well, so stale history never surfaces
// between sweeps.
func (s *ConversationService) GetHistory(conversationID string) []llm.Message {
	if conversationID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil
	}
	if s.now().Sub(conv.lastAccess) > s.ttl {
		delete(s.conversations, conversationID)
		return nil
	}

	history := make([]llm.Message, len(conv.messages))
	copy(history, conv.messages)
	return history
}

// AddMessage appends one entry, creating the conversation if needed, and
// truncates to the newest maxHistoryLength entries. Append and truncate
// happen under one lock so concurrent requests cannot interleave them.
func (s *ConversationService) AddMessage(conversationID, role, content string) {
	if conversationID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		conv = &conversation{}
		s.conversations[conversationID] = conv
	}

	conv.messages = append(conv.messages, llm.Message{Role: role, Content: content})
	conv.lastAccess = s.now()

	if len(conv.messages) > s.maxHistoryLength {
		conv.messages = conv.messages[len(conv.messages)-s.maxHistoryLength:]
	}
}

// Clear removes the conversation entirely.
func (s *ConversationService) Clear(conversationID string) {
	if conversationID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
}

// ActiveCount returns the number of conversations currently held.
func (s *ConversationService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Cleanup sweeps out every conversation idle longer than the TTL.
func (s *ConversationService) Cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conv := range s.conversations {
		if now.Sub(conv.lastAccess) > s.ttl {
			delete(s.conversations, id)
		}
	}
}

// StartCleanup runs the sweep on a ticker until the context is cancelled.
func (s *ConversationService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				before := s.ActiveCount()
				s.Cleanup()
				if removed := before - s.ActiveCount(); removed > 0 {
					log.Printf("Conversation cleanup removed %d expired conversations.", removed)
				}
			}
		}
	}()
}
