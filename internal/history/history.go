// Package history keeps chat conversation history for multi-turn chat.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/knoguchi/cohere/internal/cohere"
)

// Conversation holds the message history for one conversation.
type Conversation struct {
	Messages  []cohere.ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store provides in-memory conversation storage with size and age limits.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	maxMessages   int           // Max messages per conversation
	ttl           time.Duration // Time-to-live since last update
	now           func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store and starts its cleanup goroutine. Call Close to
// stop it.
func NewStore(maxMessages int, ttl time.Duration) *Store {
	s := newStore(maxMessages, ttl)
	go s.cleanupLoop(cleanupInterval(ttl))
	return s
}

func newStore(maxMessages int, ttl time.Duration) *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		maxMessages:   maxMessages,
		ttl:           ttl,
		now:           time.Now,
		stop:          make(chan struct{}),
	}
}

// NewConversation registers an empty conversation and returns its ID.
func (s *Store) NewConversation() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.conversations[id] = &Conversation{CreatedAt: now, UpdatedAt: now}
	return id
}

// AddUserMessage appends a user message to the conversation.
func (s *Store) AddUserMessage(id, message string) {
	s.add(id, cohere.UserMessage(message))
}

// AddChatbotMessage appends a model reply to the conversation.
func (s *Store) AddChatbotMessage(id, message string) {
	s.add(id, cohere.ChatbotMessage(message))
}

// AddTurn appends a user message and the reply it received.
func (s *Store) AddTurn(id, message, reply string) {
	s.add(id, cohere.UserMessage(message), cohere.ChatbotMessage(reply))
}

func (s *Store) add(id string, messages ...cohere.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv, exists := s.conversations[id]
	if !exists {
		conv = &Conversation{CreatedAt: now}
		s.conversations[id] = conv
	}

	conv.Messages = append(conv.Messages, messages...)
	conv.UpdatedAt = now

	// Keep only the most recent messages
	if s.maxMessages > 0 && len(conv.Messages) > s.maxMessages {
		conv.Messages = append([]cohere.ChatMessage(nil), conv.Messages[len(conv.Messages)-s.maxMessages:]...)
	}
}

// History returns a copy of the conversation's messages, or nil if the
// conversation does not exist.
func (s *Store) History(id string) []cohere.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[id]
	if !exists {
		return nil
	}

	messages := make([]cohere.ChatMessage, len(conv.Messages))
	copy(messages, conv.Messages)
	return messages
}

// Request builds a chat request for the next message of a conversation,
// carrying its history.
func (s *Store) Request(id, message string) *cohere.ChatRequest {
	return &cohere.ChatRequest{
		Message:     message,
		ChatHistory: s.History(id),
	}
}

// Clear removes a conversation.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}

// Close stops the cleanup goroutine.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := 5 * time.Minute
	if ttl > 0 && ttl/2 < interval {
		interval = ttl / 2
	}
	if interval <= 0 {
		interval = time.Second
	}
	return interval
}

// cleanupLoop periodically removes expired conversations.
func (s *Store) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) cleanup() {
	if s.ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, conv := range s.conversations {
		if now.Sub(conv.UpdatedAt) > s.ttl {
			delete(s.conversations, id)
		}
	}
}
