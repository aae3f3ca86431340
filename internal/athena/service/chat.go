package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/athena-forum/athena/internal/athena/ai"
)

const (
	defaultChatTTL        = 30 * time.Minute
	defaultChatMaxEntries = 1000
	maxChatMessageLen     = 2000
	// Turns kept per conversation; oldest are dropped first.
	maxConversationTurns = 60
)

// conversation is one user's companion chat, oldest message first.
type conversation struct {
	messages []ai.Message
	touched  time.Time
}

// ChatService runs the companion chat. Conversations live in a bounded
// in-memory cache: entries expire after a TTL of inactivity and the oldest
// conversation is evicted when the cache is full, so a busy process cannot
// grow without limit. State is per-process and lost on restart.
type ChatService struct {
	AI         *ai.Client
	TTL        time.Duration
	MaxEntries int

	mu    sync.Mutex
	cache map[string]*conversation
}

// Send appends the user's message to their conversation and returns the
// companion's reply. Upstream failure degrades to a canned reply, which is
// still recorded so the transcript stays coherent.
func (s *ChatService) Send(ctx context.Context, userTag, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrContentRequired
	}
	if len(message) > maxChatMessageLen {
		return "", ErrContentTooLong
	}

	history := s.snapshot(userTag)
	reply := s.AI.ChatReply(ctx, history, message)

	s.append(userTag,
		ai.Message{Role: ai.RoleUser, Content: message},
		ai.Message{Role: ai.RoleAssistant, Content: reply})
	return reply, nil
}

// History returns a copy of the user's conversation, oldest first.
func (s *ChatService) History(userTag string) []ai.Message {
	return s.snapshot(userTag)
}

// Clear drops the user's conversation.
func (s *ChatService) Clear(userTag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, userTag)
}

func (s *ChatService) snapshot(userTag string) []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.cache[userTag]
	if !ok || s.expired(conv) {
		return nil
	}
	out := make([]ai.Message, len(conv.messages))
	copy(out, conv.messages)
	return out
}

func (s *ChatService) append(userTag string, msgs ...ai.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		s.cache = make(map[string]*conversation)
	}
	s.sweepLocked()

	conv, ok := s.cache[userTag]
	if !ok || s.expired(conv) {
		conv = &conversation{}
		s.cache[userTag] = conv
	}

	conv.messages = append(conv.messages, msgs...)
	if len(conv.messages) > maxConversationTurns {
		conv.messages = conv.messages[len(conv.messages)-maxConversationTurns:]
	}
	conv.touched = time.Now()
}

// sweepLocked removes expired conversations and, if the cache is still at
// capacity, evicts the least recently touched one.
func (s *ChatService) sweepLocked() {
	for tag, conv := range s.cache {
		if s.expired(conv) {
			delete(s.cache, tag)
		}
	}

	max := s.MaxEntries
	if max <= 0 {
		max = defaultChatMaxEntries
	}
	for len(s.cache) >= max {
		oldestTag := ""
		var oldest time.Time
		for tag, conv := range s.cache {
			if oldestTag == "" || conv.touched.Before(oldest) {
				oldestTag, oldest = tag, conv.touched
			}
		}
		delete(s.cache, oldestTag)
	}
}

func (s *ChatService) expired(conv *conversation) bool {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultChatTTL
	}
	return time.Since(conv.touched) > ttl
}
