package chat

import (
	"sync"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
)

// Conversation is the append-only, ordered message list of one page.
type Conversation struct {
	mu       sync.RWMutex
	messages []chat.Message
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{messages: make([]chat.Message, 0, 16)}
}

// Append adds msg at the end. It is the only mutator.
func (c *Conversation) Append(msg chat.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// Messages returns a copy of all messages, oldest first.
func (c *Conversation) Messages() []chat.Message {
	return c.Since(0)
}

// Since returns a copy of the messages appended after the first n.
func (c *Conversation) Since(n int) []chat.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n >= len(c.messages) {
		return nil
	}

	copied := make([]chat.Message, len(c.messages)-n)
	copy(copied, c.messages[n:])
	return copied
}

// Len reports how many messages have been appended.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
