package chat

import (
	"sync"
	"time"
)

// Role identifies who authored a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is the history sent along with every message.
// It belongs to the caller; providers never keep their own copy.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	mu sync.Mutex // serializes messages and resets
}

// Reset clears the history so the next message starts a fresh conversation
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Turns = nil
	c.UpdatedAt = time.Now()
}

// History returns a copy of the turns
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.Turns))
	copy(out, c.Turns)
	return out
}

func (c *Conversation) append(message, reply string, at time.Time) {
	c.Turns = append(c.Turns,
		Turn{Role: RoleUser, Text: message},
		Turn{Role: RoleAssistant, Text: reply},
	)
	c.UpdatedAt = at
}
